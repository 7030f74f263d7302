package records

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/melkeydev/datadesk/databases/engine"
	"github.com/melkeydev/datadesk/databases/sqlite"
	"github.com/melkeydev/datadesk/types"
)

func setupService(t *testing.T) *Service {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "records-*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	gw, err := sqlite.NewSQLiteConnector(tmpFile.Name(), engine.PoolOptions{})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { gw.Close() })

	svc, err := NewService(gw, "")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if err := svc.EnsureTable(context.Background()); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	return svc
}

func TestInsertThenList(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if err := svc.Insert(ctx, "x", 5.0); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	records, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	found := false
	for _, r := range records {
		if r.Name == "x" && r.Value == 5.0 {
			found = true
			if r.ID == 0 {
				t.Error("record has no storage-assigned id")
			}
		}
	}
	if !found {
		t.Errorf("records = %+v, want one named x with value 5", records)
	}
}

func TestStats(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	for _, v := range []float64{1.0, 2.0, 3.0} {
		if err := svc.Insert(ctx, "v", v); err != nil {
			t.Fatalf("Insert(%v): %v", v, err)
		}
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Max == nil || *stats.Max != 3.0 {
		t.Errorf("max = %v, want 3", stats.Max)
	}
	if stats.Min == nil || *stats.Min != 1.0 {
		t.Errorf("min = %v, want 1", stats.Min)
	}
	if stats.Avg == nil || *stats.Avg != 2.0 {
		t.Errorf("avg = %v, want 2", stats.Avg)
	}
}

func TestStatsEmpty(t *testing.T) {
	svc := setupService(t)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Max != nil || stats.Min != nil || stats.Avg != nil {
		t.Errorf("stats = %+v, want all nil", stats)
	}
}

func TestListEmpty(t *testing.T) {
	svc := setupService(t)

	records, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("records = %#v, want empty non-nil slice", records)
	}
}

func TestInsertStorageError(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	missing, err := NewService(svc.db, "no_existe")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	var se *types.StorageError
	if err := missing.Insert(ctx, "x", 1); !errors.As(err, &se) {
		t.Errorf("Insert error = %v, want StorageError", err)
	}
	if _, err := missing.List(ctx); !errors.As(err, &se) {
		t.Errorf("List error = %v, want StorageError", err)
	}
}

func TestInsertKeepsGatewayError(t *testing.T) {
	svc := setupService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var se *types.StorageError
	err := svc.Insert(ctx, "x", 1)
	if !errors.As(err, &se) {
		t.Fatalf("Insert error = %v, want StorageError", err)
	}
	if se.Op != "acquire connection" {
		t.Errorf("Op = %q, want the gateway's own op", se.Op)
	}
	if _, ok := se.Err.(*types.StorageError); ok {
		t.Errorf("error %q wraps a StorageError twice", err)
	}
}

func TestNewServiceRejectsUnsafeTable(t *testing.T) {
	var ie *types.InvalidIdentifierError
	if _, err := NewService(nil, "registros;--"); !errors.As(err, &ie) {
		t.Errorf("error = %v, want InvalidIdentifierError", err)
	}
}
