package storage

import "newhouse-etl/models"

// RecordWriter is the interface any canonical-record sink must satisfy.
type RecordWriter interface {
	Write(records []*models.Record) error
	Close() error
}

// RecordReader loads raw records from an input source.
type RecordReader interface {
	Read(path string) ([]*models.RawRecord, error)
}
