package sqlite

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/melkeydev/datadesk/databases/engine"
	"github.com/melkeydev/datadesk/types"
)

func setupTestDB(t *testing.T) *engine.Gateway {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	gw, err := NewSQLiteConnector(tmpFile.Name(), engine.PoolOptions{})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { gw.Close() })

	err = gw.WithConn(context.Background(), func(ctx context.Context, q engine.Execer) error {
		if _, err := q.ExecContext(ctx, `
			CREATE TABLE users (
				id INTEGER PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT
			)`); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `CREATE UNIQUE INDEX users_email ON users (email)`); err != nil {
			return err
		}
		for i, name := range []string{"Alice", "Bob", "Charlie"} {
			if _, err := q.ExecContext(ctx, "INSERT INTO users (id, name) VALUES (?, ?)", i+1, name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to create test data: %v", err)
	}

	return gw
}

func TestListTablesAndCount(t *testing.T) {
	gw := setupTestDB(t)
	ctx := context.Background()

	tables, err := gw.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if !slices.Equal(tables, []string{"users"}) {
		t.Errorf("tables = %v, want [users]", tables)
	}

	n, err := gw.CountRows(ctx, "users")
	if err != nil {
		t.Fatalf("CountRows: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestSample(t *testing.T) {
	gw := setupTestDB(t)

	rows, err := gw.Sample(context.Background(), "users", 2)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0]["name"] != "Alice" {
		t.Errorf("first row name = %#v, want Alice", rows[0]["name"])
	}
}

func TestDescribeTable(t *testing.T) {
	gw := setupTestDB(t)

	desc, err := gw.DescribeTable(context.Background(), "users")
	if err != nil {
		t.Fatalf("DescribeTable: %v", err)
	}

	if desc.RowCount != 3 || len(desc.SampleData) != 3 {
		t.Errorf("row count = %d, sample = %d", desc.RowCount, len(desc.SampleData))
	}
	if len(desc.Columns) != 3 || desc.Columns[1].Nullable {
		t.Errorf("columns = %+v", desc.Columns)
	}
	if !slices.Equal(desc.PrimaryKeys, []string{"id"}) {
		t.Errorf("primary keys = %v", desc.PrimaryKeys)
	}
	if len(desc.Indexes) != 1 || !desc.Indexes[0].Unique || desc.Indexes[0].Columns[0] != "email" {
		t.Errorf("indexes = %+v", desc.Indexes)
	}

	var nf *types.NotFoundError
	if _, err := gw.DescribeTable(context.Background(), "missing"); !errors.As(err, &nf) {
		t.Errorf("DescribeTable(missing) error = %v, want NotFoundError", err)
	}
}

func TestDropTable(t *testing.T) {
	gw := setupTestDB(t)
	ctx := context.Background()

	var nf *types.NotFoundError
	if err := gw.DropTable(ctx, "missing"); !errors.As(err, &nf) {
		t.Errorf("DropTable(missing) error = %v, want NotFoundError", err)
	}

	var ie *types.InvalidIdentifierError
	if err := gw.DropTable(ctx, "users; --"); !errors.As(err, &ie) {
		t.Errorf("DropTable(unsafe) error = %v, want InvalidIdentifierError", err)
	}

	if err := gw.DropTable(ctx, "users"); err != nil {
		t.Fatalf("DropTable: %v", err)
	}
	exists, err := gw.TableExists(ctx, "users")
	if err != nil {
		t.Fatalf("TableExists: %v", err)
	}
	if exists {
		t.Error("users still exists after drop")
	}
}

func TestWithTxRollsBack(t *testing.T) {
	gw := setupTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := gw.WithTx(ctx, func(ctx context.Context, q engine.Execer) error {
		if _, err := q.ExecContext(ctx, "INSERT INTO users (id, name) VALUES (10, 'Dave')"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx error = %v, want boom", err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic was swallowed")
			}
		}()
		_ = gw.WithTx(ctx, func(ctx context.Context, q engine.Execer) error {
			if _, err := q.ExecContext(ctx, "INSERT INTO users (id, name) VALUES (11, 'Eve')"); err != nil {
				return err
			}
			panic("unexpected")
		})
	}()

	n, err := gw.CountRows(ctx, "users")
	if err != nil {
		t.Fatalf("CountRows: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3 after rollbacks", n)
	}
}

func TestValidateIdent(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"registros", true},
		{"_tmp", true},
		{"Ventas2024", true},
		{"", false},
		{"2024ventas", false},
		{"ventas totales", false},
		{`ventas"`, false},
		{strings.Repeat("a", 64), true},
		{strings.Repeat("a", 65), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := engine.ValidateIdent(tt.name); (err == nil) != tt.ok {
				t.Errorf("ValidateIdent(%q) = %v, want ok=%v", tt.name, err, tt.ok)
			}
		})
	}
}
