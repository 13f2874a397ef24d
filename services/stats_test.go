package services

import (
	"testing"

	"newhouse-etl/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func sampleRecords() []*models.Record {
	return []*models.Record{
		{Name: "翡翠长安", Type: "住宅", District: "朝阳区", Area: floatPtr(90), TotalPrice: intPtr(400), UnitPrice: intPtr(50000)},
		{Name: "望京新城", Type: "住宅", District: "朝阳区", Area: floatPtr(110), TotalPrice: intPtr(600), UnitPrice: intPtr(60000)},
		{Name: "西山壹号", Type: "别墅", District: "海淀区", Area: floatPtr(200), TotalPrice: intPtr(1200), UnitPrice: intPtr(80000)},
		{Name: "通州万象", Type: "商业", District: "通州区", TotalPrice: intPtr(150)},
		{Name: "无价盘", Type: "住宅", District: "朝阳区"},
	}
}

func TestStatsCounts(t *testing.T) {
	svc := NewStatsService(newTestLogger())
	r := svc.Generate(sampleRecords())

	if r.TotalRecords != 5 {
		t.Errorf("TotalRecords: got %d, want 5", r.TotalRecords)
	}
	if r.TotalPriceParsed != 4 {
		t.Errorf("TotalPriceParsed: got %d, want 4", r.TotalPriceParsed)
	}
	if r.UnitPriceParsed != 3 {
		t.Errorf("UnitPriceParsed: got %d, want 3", r.UnitPriceParsed)
	}
	if r.AreaParsed != 3 {
		t.Errorf("AreaParsed: got %d, want 3", r.AreaParsed)
	}
}

func TestStatsPriceRange(t *testing.T) {
	svc := NewStatsService(newTestLogger())
	r := svc.Generate(sampleRecords())

	if r.MinTotalPrice != 150 {
		t.Errorf("MinTotalPrice: got %d, want 150", r.MinTotalPrice)
	}
	if r.MaxTotalPrice != 1200 {
		t.Errorf("MaxTotalPrice: got %d, want 1200", r.MaxTotalPrice)
	}
	wantAvg := 587.5 // (400+600+1200+150)/4
	if r.AvgTotalPrice != wantAvg {
		t.Errorf("AvgTotalPrice: got %.2f, want %.2f", r.AvgTotalPrice, wantAvg)
	}
}

func TestStatsDistrictGrouping(t *testing.T) {
	svc := NewStatsService(newTestLogger())
	r := svc.Generate(sampleRecords())

	if r.RecordsByDistrict["朝阳区"] != 3 {
		t.Errorf("朝阳区 count: got %d, want 3", r.RecordsByDistrict["朝阳区"])
	}

	// Absent prices are skipped, never counted as zero: the 朝阳区 average
	// uses only the two priced listings.
	if got := r.AvgUnitPriceByDistrict["朝阳区"]; got != 55000 {
		t.Errorf("朝阳区 avg unit price: got %.0f, want 55000", got)
	}
	if got := r.AvgTotalPriceByDistrict["海淀区"]; got != 1200 {
		t.Errorf("海淀区 avg total price: got %.0f, want 1200", got)
	}
	if _, ok := r.AvgUnitPriceByDistrict["通州区"]; ok {
		t.Error("通州区 has no unit prices and must not appear in the average map")
	}
}

func TestStatsTypeMatrix(t *testing.T) {
	svc := NewStatsService(newTestLogger())
	r := svc.Generate(sampleRecords())

	if got := r.AvgUnitPriceByType["别墅"]; got != 80000 {
		t.Errorf("别墅 avg unit price: got %.0f, want 80000", got)
	}
	if got := r.UnitPriceMatrix["朝阳区"]["住宅"]; got != 55000 {
		t.Errorf("matrix[朝阳区][住宅]: got %.0f, want 55000", got)
	}
	if _, ok := r.UnitPriceMatrix["通州区"]; ok {
		t.Error("matrix must not contain districts without unit prices")
	}
}

func TestStatsPriceBuckets(t *testing.T) {
	svc := NewStatsService(newTestLogger())
	r := svc.Generate(sampleRecords())

	if len(r.TotalPriceBuckets) != 13 { // max 1200 → buckets up to 1200+
		t.Fatalf("bucket count: got %d, want 13", len(r.TotalPriceBuckets))
	}

	var counted int
	for _, b := range r.TotalPriceBuckets {
		counted += b.Count
	}
	if counted != 4 {
		t.Errorf("bucketed rows: got %d, want 4 (absent prices skipped)", counted)
	}

	if r.TotalPriceBuckets[1].Count != 1 { // 150 lands in 100-200
		t.Errorf("bucket 100-200: got %d, want 1", r.TotalPriceBuckets[1].Count)
	}
	last := r.TotalPriceBuckets[len(r.TotalPriceBuckets)-1]
	if last.High != 0 || last.Count != 1 { // 1200 lands in the open-ended bucket
		t.Errorf("last bucket: got high=%d count=%d, want open-ended with count 1", last.High, last.Count)
	}
}

func TestStatsEmptyInput(t *testing.T) {
	svc := NewStatsService(newTestLogger())
	r := svc.Generate(nil)
	if r.TotalRecords != 0 {
		t.Errorf("expected 0 total records for empty input")
	}
	if len(r.TotalPriceBuckets) != 0 {
		t.Errorf("expected no buckets for empty input")
	}
}
