// Package core defines the Record Store contract shared by the document
// backends and the store facade.
package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"userdesk/pkg/domain"
)

// Driver identifies a concrete document backend implementation.
type Driver string

const (
	// DriverFile represents a JSON file on the local filesystem.
	DriverFile Driver = "file" // local JSON document (default)
	// DriverMemory represents an in-process document typically used in tests.
	DriverMemory Driver = "memory"
	// DriverSQLite represents a document row in an embedded sqlite file.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres represents a document row in PostgreSQL.
	DriverPostgres Driver = "postgres"
	// DriverS3 represents a document object in an S3 / MinIO compatible bucket.
	DriverS3 Driver = "s3"
)

// Store loads and saves the entire record collection as one document.
// Implementations do not coordinate concurrent callers.
type Store interface {
	// ReadAll returns the current collection. A missing document yields an
	// empty collection and no error.
	ReadAll(ctx context.Context) (domain.Collection, error)
	// WriteAll replaces the persisted collection. The durable state is either
	// the previous document or the new one, never a partial write.
	WriteAll(ctx context.Context, records domain.Collection) error
	Driver() Driver
}

// Encode renders the collection as the persisted document.
func Encode(records domain.Collection) ([]byte, error) {
	if records == nil {
		records = domain.Collection{}
	}
	b, err := json.MarshalIndent(domain.Document{Records: records}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

// Decode parses a persisted document. Empty input is an empty collection.
func Decode(b []byte) (domain.Collection, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return domain.Collection{}, nil
	}
	var doc domain.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc.Records == nil {
		return domain.Collection{}, nil
	}
	for i := range doc.Records {
		doc.Records[i].Normalize()
	}
	return doc.Records, nil
}
