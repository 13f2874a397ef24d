package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"newhouse-etl/models"
	"newhouse-etl/utils"
)

// numberRegexp captures integers and decimals inside free-form text,
// e.g. "88-92" → ["88", "92"], "350.0万" → ["350.0"].
var numberRegexp = regexp.MustCompile(`\d+\.?\d*`)

// Normalizer transforms RawRecords into canonical Records.
//
// Every row in equals one row out, in order: a field that cannot be parsed
// is left absent and the row is kept. Range-valued fields (room layout,
// area) reduce to their average; prices truncate toward zero when converted
// to integers.
type Normalizer struct {
	logger  *utils.Logger
	workers int
}

// NewNormalizer creates a Normalizer. workers > 1 enables parallel per-row
// processing; rows are independent so this only affects throughput.
func NewNormalizer(logger *utils.Logger, workers int) *Normalizer {
	if workers < 1 {
		workers = 1
	}
	return &Normalizer{logger: logger, workers: workers}
}

// Normalize processes raw records into canonical records, 1:1 and
// order-preserving.
func (n *Normalizer) Normalize(raw []*models.RawRecord) []*models.Record {
	result := make([]*models.Record, len(raw))

	if n.workers <= 1 {
		for i, r := range raw {
			result[i] = n.normalizeOne(r)
		}
	} else {
		pool := utils.NewWorkerPool(n.workers)
		for i, r := range raw {
			i, r := i, r
			pool.Submit(func() {
				result[i] = n.normalizeOne(r)
			})
		}
		pool.Wait()
	}

	n.logger.Info("[normalizer] Normalized %d records (workers: %d)", len(result), n.workers)
	return result
}

func (n *Normalizer) normalizeOne(r *models.RawRecord) *models.Record {
	rec := &models.Record{
		Name: strings.TrimSpace(string(r.Name)),
		Type: strings.TrimSpace(string(r.Type)),
	}

	rec.District, rec.Subdistrict, rec.Locality = splitLocation(r.Location)
	rec.RoomLayout = n.parseRoomLayout(r.Room)
	rec.Area = n.parseArea(string(r.Area))
	rec.TotalPrice = n.parsePrice(string(r.TotalPrice))
	rec.UnitPrice = n.parsePrice(string(r.UnitPrice))

	return rec
}

// splitLocation maps the raw location onto the three-level breakdown
// district / subdistrict / locality. List input maps strictly by index: a
// blank element leaves its slot empty and never shifts later components up.
// A single composite string is split on whitespace first. Missing
// components stay empty, never fabricated.
func splitLocation(loc models.TextList) (district, subdistrict, locality string) {
	parts := loc
	if len(loc) == 1 {
		parts = strings.Fields(loc[0])
	}

	fields := make([]string, 3)
	for i := 0; i < len(parts) && i < 3; i++ {
		fields[i] = strings.TrimSpace(parts[i])
	}
	return fields[0], fields[1], fields[2]
}

// parseRoomLayout reduces room-configuration text like "2室1厅" or a list of
// layouts to one representative value: the average of every number found,
// rounded half to even.
func (n *Normalizer) parseRoomLayout(rooms models.TextList) *int {
	var nums []float64
	for _, room := range rooms {
		nums = append(nums, extractNumbers(room)...)
	}
	if len(nums) == 0 {
		return nil
	}

	avg := mean(nums)
	v := int(math.RoundToEven(avg))
	return &v
}

// parseArea reduces area text to square meters. A range like "88-92"
// averages its two endpoints; a single value passes through unchanged.
func (n *Normalizer) parseArea(raw string) *float64 {
	nums := extractNumbers(raw)
	switch {
	case len(nums) >= 2:
		v := (nums[0] + nums[1]) / 2
		return &v
	case len(nums) == 1:
		v := nums[0]
		return &v
	}
	return nil
}

// parsePrice extracts the first numeric value and truncates it toward zero.
// Examples:
//
//	"350.0万"    → 350
//	"48000元/㎡" → 48000
//	"价格待定"    → absent
func (n *Normalizer) parsePrice(raw string) *int {
	nums := extractNumbers(raw)
	if len(nums) == 0 {
		return nil
	}
	v := int(nums[0])
	return &v
}

// extractNumbers returns every parseable number in the text, in order.
func extractNumbers(s string) []float64 {
	matches := numberRegexp.FindAllString(s, -1)
	nums := make([]float64, 0, len(matches))
	for _, m := range matches {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			nums = append(nums, f)
		}
	}
	return nums
}

func mean(nums []float64) float64 {
	var total float64
	for _, f := range nums {
		total += f
	}
	return total / float64(len(nums))
}
