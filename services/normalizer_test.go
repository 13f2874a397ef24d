package services

import (
	"reflect"
	"testing"

	"newhouse-etl/models"
	"newhouse-etl/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func TestNormalizerTrimsStrings(t *testing.T) {
	n := NewNormalizer(newTestLogger(), 1)

	raw := []*models.RawRecord{
		{Name: "  翡翠长安  ", Type: " 住宅 "},
	}
	out := n.Normalize(raw)

	if out[0].Name != "翡翠长安" {
		t.Errorf("Name: got %q, want %q", out[0].Name, "翡翠长安")
	}
	if out[0].Type != "住宅" {
		t.Errorf("Type: got %q, want %q", out[0].Type, "住宅")
	}
}

func TestNormalizerLocationSplit(t *testing.T) {
	tests := []struct {
		name     string
		loc      models.TextList
		district string
		subdist  string
		locality string
	}{
		{"three-part list", models.TextList{" 朝阳区 ", "望京", " 阜荣街"}, "朝阳区", "望京", "阜荣街"},
		{"composite string", models.TextList{" 朝阳区 望京 阜荣街 "}, "朝阳区", "望京", "阜荣街"},
		{"two components", models.TextList{"海淀区", "西北旺"}, "海淀区", "西北旺", ""},
		{"one component", models.TextList{"通州区"}, "通州区", "", ""},
		{"empty", nil, "", "", ""},
		{"blank entry keeps its slot", models.TextList{"  ", "丰台区", "某街道"}, "", "丰台区", "某街道"},
		{"blank tail stays absent", models.TextList{"丰台区", "", "  "}, "丰台区", "", ""},
		{"extra components ignored", models.TextList{"朝阳区", "望京", "阜荣街", "16号"}, "朝阳区", "望京", "阜荣街"},
	}

	n := NewNormalizer(newTestLogger(), 1)
	for _, tt := range tests {
		out := n.Normalize([]*models.RawRecord{{Location: tt.loc}})
		r := out[0]
		if r.District != tt.district || r.Subdistrict != tt.subdist || r.Locality != tt.locality {
			t.Errorf("%s: got (%q, %q, %q), want (%q, %q, %q)",
				tt.name, r.District, r.Subdistrict, r.Locality,
				tt.district, tt.subdist, tt.locality)
		}
	}
}

func TestNormalizerAreaReduction(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		absent bool
	}{
		{"88-92", 90, false},
		{"建面 120-140㎡", 130, false},
		{"100㎡", 100, false},
		{"88", 88, false}, // single value passes through unchanged
		{"", 0, true},
		{"面积待定", 0, true},
	}

	n := NewNormalizer(newTestLogger(), 1)
	for _, tt := range tests {
		out := n.Normalize([]*models.RawRecord{{Area: models.Text(tt.raw)}})
		got := out[0].Area
		if tt.absent {
			if got != nil {
				t.Errorf("Area(%q): got %v, want absent", tt.raw, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("Area(%q): got absent, want %.1f", tt.raw, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("Area(%q): got %.1f, want %.1f", tt.raw, *got, tt.want)
		}
	}
}

func TestNormalizerRoomLayoutReduction(t *testing.T) {
	tests := []struct {
		name   string
		rooms  models.TextList
		want   int
		absent bool
	}{
		{"single layout", models.TextList{"2室1厅"}, 2, false}, // avg(2,1)=1.5, round to even
		{"layout list", models.TextList{"2室1厅", "3室2厅"}, 2, false},
		{"single number", models.TextList{"3室"}, 3, false},
		{"no numbers", models.TextList{"户型待定"}, 0, true},
		{"empty", nil, 0, true},
	}

	n := NewNormalizer(newTestLogger(), 1)
	for _, tt := range tests {
		out := n.Normalize([]*models.RawRecord{{Room: tt.rooms}})
		got := out[0].RoomLayout
		if tt.absent {
			if got != nil {
				t.Errorf("%s: got %d, want absent", tt.name, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("%s: got absent, want %d", tt.name, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, *got, tt.want)
		}
	}
}

func TestNormalizerPriceTruncation(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		absent bool
	}{
		{"350.0万", 350, false},
		{"总价255.8万", 255, false}, // truncates toward zero, never rounds up
		{"48000元/㎡", 48000, false},
		{"价格待定", 0, true},
		{"", 0, true},
	}

	n := NewNormalizer(newTestLogger(), 1)
	for _, tt := range tests {
		out := n.Normalize([]*models.RawRecord{{TotalPrice: models.Text(tt.raw)}})
		got := out[0].TotalPrice
		if tt.absent {
			if got != nil {
				t.Errorf("TotalPrice(%q): got %d, want absent", tt.raw, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("TotalPrice(%q): got absent, want %d", tt.raw, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("TotalPrice(%q): got %d, want %d", tt.raw, *got, tt.want)
		}
	}
}

func TestNormalizerKeepsRowCountAndOrder(t *testing.T) {
	raw := []*models.RawRecord{
		{Name: "A", TotalPrice: "350万"},
		{Name: "B", TotalPrice: "完全无法解析"},
		{Name: "C"},
	}

	n := NewNormalizer(newTestLogger(), 1)
	out := n.Normalize(raw)

	if len(out) != len(raw) {
		t.Fatalf("row count: got %d, want %d", len(out), len(raw))
	}
	for i, want := range []string{"A", "B", "C"} {
		if out[i].Name != want {
			t.Errorf("row %d: got name %q, want %q", i, out[i].Name, want)
		}
	}
}

func TestNormalizerMissingUnitPriceKeepsRow(t *testing.T) {
	raw := []*models.RawRecord{{
		Name:       "望京新城",
		Type:       "住宅",
		Location:   models.TextList{"朝阳区", "望京", "阜荣街"},
		Area:       "88-92",
		TotalPrice: "350.0万",
		// unit_price missing entirely
	}}

	n := NewNormalizer(newTestLogger(), 1)
	out := n.Normalize(raw)

	r := out[0]
	if r.UnitPrice != nil {
		t.Errorf("UnitPrice: got %d, want absent", *r.UnitPrice)
	}
	if r.Name == "" || r.District == "" || r.Area == nil || r.TotalPrice == nil {
		t.Error("other fields should still be populated")
	}
}

func TestNormalizerNoAutofill(t *testing.T) {
	n := NewNormalizer(newTestLogger(), 1)
	out := n.Normalize([]*models.RawRecord{{}})

	r := out[0]
	if r.Name != "" || r.Type != "" || r.District != "" || r.Subdistrict != "" || r.Locality != "" {
		t.Error("absent string fields must stay empty")
	}
	if r.RoomLayout != nil || r.Area != nil || r.TotalPrice != nil || r.UnitPrice != nil {
		t.Error("absent numeric fields must stay nil, never default to zero")
	}
}

func TestNormalizerEmptyInput(t *testing.T) {
	n := NewNormalizer(newTestLogger(), 1)
	out := n.Normalize(nil)
	if out == nil || len(out) != 0 {
		t.Errorf("empty input must yield an empty (non-nil) dataset, got %v", out)
	}
}

func TestNormalizerParallelMatchesSequential(t *testing.T) {
	raw := make([]*models.RawRecord, 0, 50)
	for i := 0; i < 50; i++ {
		raw = append(raw, &models.RawRecord{
			Name:       models.Text(string(rune('A' + i%26))),
			Type:       "住宅",
			Location:   models.TextList{"朝阳区 望京 阜荣街"},
			Area:       "88-92",
			TotalPrice: "350.0万",
			UnitPrice:  "48000元/㎡",
		})
	}

	seq := NewNormalizer(newTestLogger(), 1).Normalize(raw)
	par := NewNormalizer(newTestLogger(), 4).Normalize(raw)

	if !reflect.DeepEqual(seq, par) {
		t.Error("parallel normalization must produce the same ordered result as sequential")
	}
}
