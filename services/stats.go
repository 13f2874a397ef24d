package services

import (
	"fmt"
	"sort"
	"strings"

	"newhouse-etl/models"
	"newhouse-etl/utils"
)

// totalPriceBucketWidth is the histogram bin width over total price, 万元.
const totalPriceBucketWidth = 100

// StatsService computes the aggregate views downstream chart consumers
// build on: per-district and per-type price averages, the district × type
// unit-price matrix, and the total-price distribution.
type StatsService struct {
	logger *utils.Logger
}

func NewStatsService(logger *utils.Logger) *StatsService {
	return &StatsService{logger: logger}
}

// Generate aggregates the canonical dataset. Absent values are skipped per
// aggregate; they never contribute zeros.
func (s *StatsService) Generate(records []*models.Record) *models.StatsReport {
	report := &models.StatsReport{
		RecordsByDistrict:       make(map[string]int),
		AvgTotalPriceByDistrict: make(map[string]float64),
		AvgUnitPriceByDistrict:  make(map[string]float64),
		AvgUnitPriceByType:      make(map[string]float64),
		UnitPriceMatrix:         make(map[string]map[string]float64),
	}

	if len(records) == 0 {
		return report
	}

	report.TotalRecords = len(records)

	totalByDistrict := newGroupMean()
	unitByDistrict := newGroupMean()
	unitByType := newGroupMean()
	unitByDistrictType := make(map[string]*groupMean)

	var totalSum, unitSum float64
	maxTotal := 0

	for _, r := range records {
		if r.District != "" {
			report.RecordsByDistrict[r.District]++
		}
		if r.Area != nil {
			report.AreaParsed++
		}

		if r.TotalPrice != nil {
			tp := *r.TotalPrice
			if report.TotalPriceParsed == 0 || tp < report.MinTotalPrice {
				report.MinTotalPrice = tp
			}
			if report.TotalPriceParsed == 0 || tp > report.MaxTotalPrice {
				report.MaxTotalPrice = tp
			}
			report.TotalPriceParsed++
			totalSum += float64(tp)
			if tp > maxTotal {
				maxTotal = tp
			}
			if r.District != "" {
				totalByDistrict.add(r.District, float64(tp))
			}
		}

		if r.UnitPrice != nil {
			up := *r.UnitPrice
			if report.UnitPriceParsed == 0 || up < report.MinUnitPrice {
				report.MinUnitPrice = up
			}
			if report.UnitPriceParsed == 0 || up > report.MaxUnitPrice {
				report.MaxUnitPrice = up
			}
			report.UnitPriceParsed++
			unitSum += float64(up)
			if r.District != "" {
				unitByDistrict.add(r.District, float64(up))
				if r.Type != "" {
					gm, ok := unitByDistrictType[r.District]
					if !ok {
						gm = newGroupMean()
						unitByDistrictType[r.District] = gm
					}
					gm.add(r.Type, float64(up))
				}
			}
			if r.Type != "" {
				unitByType.add(r.Type, float64(up))
			}
		}
	}

	if report.TotalPriceParsed > 0 {
		report.AvgTotalPrice = round2(totalSum / float64(report.TotalPriceParsed))
	}
	if report.UnitPriceParsed > 0 {
		report.AvgUnitPrice = round2(unitSum / float64(report.UnitPriceParsed))
	}

	report.AvgTotalPriceByDistrict = totalByDistrict.means()
	report.AvgUnitPriceByDistrict = unitByDistrict.means()
	report.AvgUnitPriceByType = unitByType.means()
	for district, gm := range unitByDistrictType {
		report.UnitPriceMatrix[district] = gm.means()
	}

	report.TotalPriceBuckets = bucketTotalPrices(records, maxTotal)

	return report
}

// bucketTotalPrices builds a fixed-width histogram over total price. The
// last bucket is open-ended so outliers stay visible.
func bucketTotalPrices(records []*models.Record, maxTotal int) []models.PriceBucket {
	if maxTotal == 0 {
		return nil
	}

	n := maxTotal/totalPriceBucketWidth + 1
	buckets := make([]models.PriceBucket, n)
	for i := range buckets {
		buckets[i].Low = i * totalPriceBucketWidth
		if i < n-1 {
			buckets[i].High = (i + 1) * totalPriceBucketWidth
		}
	}

	for _, r := range records {
		if r.TotalPrice == nil {
			continue
		}
		idx := *r.TotalPrice / totalPriceBucketWidth
		if idx >= n {
			idx = n - 1
		}
		buckets[idx].Count++
	}
	return buckets
}

// Print renders the report to the terminal.
func (s *StatsService) Print(r *models.StatsReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 NEW-HOUSE DATASET REPORT\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Coverage
	fmt.Printf("\033[1;33m  Coverage\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Records                : \033[1m%d\033[0m\n", r.TotalRecords)
	fmt.Printf("  Total price parsed     : \033[1m%d\033[0m\n", r.TotalPriceParsed)
	fmt.Printf("  Unit price parsed      : \033[1m%d\033[0m\n", r.UnitPriceParsed)
	fmt.Printf("  Area parsed            : \033[1m%d\033[0m\n", r.AreaParsed)
	fmt.Println()

	// Price stats
	fmt.Printf("\033[1;33m  Price Statistics\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.TotalPriceParsed > 0 {
		fmt.Printf("  Total price (万元) : avg \033[1;32m%.1f\033[0m | min %d | max %d\n",
			r.AvgTotalPrice, r.MinTotalPrice, r.MaxTotalPrice)
	}
	if r.UnitPriceParsed > 0 {
		fmt.Printf("  Unit price (元/㎡) : avg \033[1;32m%.0f\033[0m | min %d | max %d\n",
			r.AvgUnitPrice, r.MinUnitPrice, r.MaxUnitPrice)
	}
	if r.TotalPriceParsed == 0 && r.UnitPriceParsed == 0 {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	// Per-district averages
	fmt.Printf("\033[1;33m  Average Unit Price by District (元/㎡)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	printRanked(r.AvgUnitPriceByDistrict, r.RecordsByDistrict)
	fmt.Println()

	// Per-type averages
	fmt.Printf("\033[1;33m  Average Unit Price by Type (元/㎡)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	printRanked(r.AvgUnitPriceByType, nil)
	fmt.Println()

	// Distribution
	fmt.Printf("\033[1;33m  Total Price Distribution (万元)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TotalPriceBuckets) == 0 {
		fmt.Printf("  No data\n")
	} else {
		for _, b := range r.TotalPriceBuckets {
			label := fmt.Sprintf("%d-%d", b.Low, b.High)
			if b.High == 0 {
				label = fmt.Sprintf("%d+", b.Low)
			}
			bar := strings.Repeat("█", b.Count)
			fmt.Printf("  %-12s %s (%d)\n", label, bar, b.Count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func printRanked(means map[string]float64, counts map[string]int) {
	if len(means) == 0 {
		fmt.Printf("  No data\n")
		return
	}

	type entry struct {
		key string
		avg float64
	}
	entries := make([]entry, 0, len(means))
	for k, v := range means {
		entries = append(entries, entry{k, v})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].avg > entries[j].avg
	})

	for _, e := range entries {
		if counts != nil {
			fmt.Printf("  %-20s \033[1;32m%10.0f\033[0m  (%d listings)\n", e.key, e.avg, counts[e.key])
		} else {
			fmt.Printf("  %-20s \033[1;32m%10.0f\033[0m\n", e.key, e.avg)
		}
	}
}

// groupMean accumulates per-key running sums for mean computation.
type groupMean struct {
	sums   map[string]float64
	counts map[string]int
}

func newGroupMean() *groupMean {
	return &groupMean{
		sums:   make(map[string]float64),
		counts: make(map[string]int),
	}
}

func (g *groupMean) add(key string, v float64) {
	g.sums[key] += v
	g.counts[key]++
}

func (g *groupMean) means() map[string]float64 {
	out := make(map[string]float64, len(g.sums))
	for k, sum := range g.sums {
		out[k] = round2(sum / float64(g.counts[k]))
	}
	return out
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
