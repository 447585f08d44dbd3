// Package store is the Record Store facade. It selects a document backend and
// wraps backend failures in IOError; other packages depend on the Store
// interface rather than on the infra backends.
package store

import (
	"context"
	"fmt"
	"io"

	"userdesk/internal/store/core"
	"userdesk/pkg/domain"
)

type (
	// Store is re-exported so callers can depend on this package alone.
	Store  = core.Store
	Driver = core.Driver
)

// Re-exported driver identifiers.
const (
	DriverFile     = core.DriverFile
	DriverMemory   = core.DriverMemory
	DriverSQLite   = core.DriverSQLite
	DriverPostgres = core.DriverPostgres
	DriverS3       = core.DriverS3
)

// IOError reports a read or write failure other than "document absent",
// for example a permission, disk, or network error.
type IOError struct {
	Op     string
	Driver Driver
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("store %s (%s): %v", e.Op, e.Driver, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// guarded wraps a backend so every failure surfaces as *IOError.
type guarded struct {
	Store
}

// Guard wraps s so its errors are reported as *IOError. Guarding twice is a no-op.
func Guard(s Store) Store {
	if g, ok := s.(guarded); ok {
		return g
	}
	return guarded{Store: s}
}

func (g guarded) ReadAll(ctx context.Context) (domain.Collection, error) {
	records, err := g.Store.ReadAll(ctx)
	if err != nil {
		return nil, &IOError{Op: "read", Driver: g.Store.Driver(), Err: err}
	}
	return records, nil
}

func (g guarded) WriteAll(ctx context.Context, records domain.Collection) error {
	if err := g.Store.WriteAll(ctx, records); err != nil {
		return &IOError{Op: "write", Driver: g.Store.Driver(), Err: err}
	}
	return nil
}

// Close releases the backend behind s when it holds resources such as a
// database handle. Backends without resources are left alone.
func Close(s Store) error {
	if g, ok := s.(guarded); ok {
		s = g.Store
	}
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
