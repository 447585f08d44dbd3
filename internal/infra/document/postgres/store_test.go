package postgres

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"userdesk/internal/infra/document/postgres/testutil"
	"userdesk/pkg/domain"
)

func newStubStore(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	store, err := New(context.Background(), "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store, conn
}

func TestNewEnsuresDocumentTable(t *testing.T) {
	_, conn := newStubStore(t)
	var sawDDL bool
	for _, stmt := range conn.Execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE IF NOT EXISTS DOCUMENTS") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("expected documents DDL, got %v", conn.Execs)
	}
}

func TestReadAllEmptyWithoutRow(t *testing.T) {
	store, _ := newStubStore(t)
	records, err := store.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty collection, got %+v", records)
	}
}

func TestWriteAllUpsertsSingleRow(t *testing.T) {
	ctx := context.Background()
	store, conn := newStubStore(t)
	if err := store.WriteAll(ctx, domain.Collection{{ID: "1"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.WriteAll(ctx, domain.Collection{{ID: "1"}, {ID: "2"}}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if len(conn.Documents) != 1 || conn.Documents[documentName] == nil {
		t.Fatalf("expected one document row, got %v", conn.Documents)
	}
	records, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 2 || records[1].ID != "2" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestWriteAllRollsBackOnExecFailure(t *testing.T) {
	store, conn := newStubStore(t)
	conn.FailExec = true
	if err := store.WriteAll(context.Background(), domain.Collection{{ID: "1"}}); err == nil {
		t.Fatalf("expected exec failure")
	}
	if conn.Rollbacks == 0 {
		t.Fatalf("expected rollback after failed upsert")
	}
}

func TestWriteAllReportsCommitFailure(t *testing.T) {
	ctx := context.Background()
	store, conn := newStubStore(t)
	if err := store.WriteAll(ctx, domain.Collection{{ID: "1"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.FailCommit = true
	if err := store.WriteAll(ctx, domain.Collection{{ID: "1"}, {ID: "2"}}); err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit error, got %v", err)
	}
	records, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected the previous document to survive, got %+v", records)
	}
}

func TestNewFailsWhenPingFails(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := New(context.Background(), "postgres://example"); err == nil {
		t.Fatalf("expected ping failure")
	}
}

func TestReadAllWrapsQueryFailure(t *testing.T) {
	store, conn := newStubStore(t)
	conn.FailQuery = true
	if _, err := store.ReadAll(context.Background()); err == nil || !strings.Contains(err.Error(), "select document") {
		t.Fatalf("expected select error, got %v", err)
	}
}
