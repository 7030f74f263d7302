package ingest

import (
	"context"
	"os"
	"testing"

	"github.com/melkeydev/datadesk/databases/engine"
	"github.com/melkeydev/datadesk/databases/sqlite"
)

func openTestDB(t *testing.T) *engine.Gateway {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "ingest-*.db")
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

	return gw
}

func mustDataset(t *testing.T, header []string, rows ...[]string) *Dataset {
	t.Helper()
	ds, err := NewDataset(header, rows)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	return ds
}

func countRows(t *testing.T, gw *engine.Gateway, table string) int64 {
	t.Helper()
	n, err := gw.CountRows(context.Background(), table)
	if err != nil {
		t.Fatalf("CountRows(%s): %v", table, err)
	}
	return n
}
