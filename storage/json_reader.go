package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"newhouse-etl/models"
	"newhouse-etl/utils"
)

// JSONReader loads raw listing records from the scraped JSON file.
//
// The upstream collaborator writes UTF-8 with a BOM, so reads go through a
// BOM-stripping decoder. A malformed file is fatal: the caller gets an error
// and no downstream output is produced.
type JSONReader struct {
	logger *utils.Logger
}

func NewJSONReader(logger *utils.Logger) *JSONReader {
	return &JSONReader{logger: logger}
}

// Read parses the file at path into raw records. A single top-level object
// is accepted as a one-element dataset; array elements that are not objects
// are skipped with a warning.
func (r *JSONReader) Read(path string) ([]*models.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("json: open %q: %w", path, err)
	}
	defer f.Close()

	decoder := unicode.UTF8BOM.NewDecoder()
	data, err := io.ReadAll(transform.NewReader(f, decoder))
	if err != nil {
		return nil, fmt.Errorf("json: read %q: %w", path, err)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		// Not an array: tolerate a single top-level object.
		var single models.RawRecord
		if err2 := json.Unmarshal(data, &single); err2 != nil {
			return nil, fmt.Errorf("json: decode %q: %w", path, err)
		}
		return []*models.RawRecord{&single}, nil
	}

	records := make([]*models.RawRecord, 0, len(elements))
	for i, el := range elements {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(el, &probe); err != nil {
			r.logger.Warn("[json] Skipping non-object element at index %d", i)
			continue
		}
		var rec models.RawRecord
		if err := json.Unmarshal(el, &rec); err != nil {
			r.logger.Warn("[json] Skipping undecodable element at index %d: %v", i, err)
			continue
		}
		records = append(records, &rec)
	}

	r.logger.Info("[json] Loaded %d raw records from %s", len(records), path)
	return records, nil
}
