package models

import "encoding/json"

// RawRecord holds one unprocessed listing as delivered by the scraping
// collaborator. Field types in the source JSON are unreliable: location and
// room may arrive as a single string or a list, any field may be null or
// missing entirely.
type RawRecord struct {
	Name       Text     `json:"name"`
	Type       Text     `json:"type"`
	Location   TextList `json:"location"`
	Room       TextList `json:"room"`
	Area       Text     `json:"area"`
	TotalPrice Text     `json:"total_price"`
	UnitPrice  Text     `json:"unit_price"`
}

// Text is a string field that tolerates null and non-string JSON values,
// decoding them as empty (absent).
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = ""
		return nil
	}
	*t = Text(s)
	return nil
}

// TextList accepts a JSON array of strings or a bare string. A non-string
// array element decodes as an empty placeholder so the remaining elements
// keep their positions; any other JSON shape decodes as empty.
type TextList []string

func (tl *TextList) UnmarshalJSON(data []byte) error {
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		out := make([]string, len(list))
		for i, el := range list {
			var s string
			if json.Unmarshal(el, &s) == nil {
				out[i] = s
			}
		}
		*tl = out
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*tl = []string{s}
		return nil
	}
	*tl = nil
	return nil
}

// Record is the canonical listing row. String fields are trimmed; an empty
// string means absent. Numeric fields are pointers so that an unparseable or
// missing raw value stays absent instead of collapsing to zero.
type Record struct {
	Name        string
	Type        string
	District    string
	Subdistrict string
	Locality    string
	RoomLayout  *int     // representative room count (average of raw layouts)
	Area        *float64 // square meters
	TotalPrice  *int     // 万元
	UnitPrice   *int     // 元/㎡
}

// StatsReport holds the aggregates computed over a canonical dataset.
type StatsReport struct {
	TotalRecords int

	TotalPriceParsed int
	UnitPriceParsed  int
	AreaParsed       int

	AvgTotalPrice float64
	MinTotalPrice int
	MaxTotalPrice int
	AvgUnitPrice  float64
	MinUnitPrice  int
	MaxUnitPrice  int

	RecordsByDistrict       map[string]int
	AvgTotalPriceByDistrict map[string]float64
	AvgUnitPriceByDistrict  map[string]float64
	AvgUnitPriceByType      map[string]float64

	// UnitPriceMatrix maps district → type → average unit price.
	UnitPriceMatrix map[string]map[string]float64

	// TotalPriceBuckets is a fixed-width histogram over total price (万元).
	TotalPriceBuckets []PriceBucket
}

// PriceBucket is one histogram bin over total price.
type PriceBucket struct {
	Low   int // inclusive
	High  int // exclusive; 0 means open-ended
	Count int
}
