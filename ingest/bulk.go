package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/melkeydev/datadesk/databases/engine"
	"github.com/melkeydev/datadesk/types"
)

// Loader inserts datasets into materialized tables.
type Loader struct {
	db     engine.Runner
	logger *slog.Logger
}

func NewLoader(db engine.Runner, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{db: db, logger: logger}
}

// InsertSQL is the parameterized single-row insert for the columns of ds.
func InsertSQL(d engine.Dialect, table string, columns []string) (string, error) {
	if err := engine.ValidateIdent(table); err != nil {
		return "", err
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		if err := engine.ValidateIdent(col); err != nil {
			return "", err
		}
		quoted[i] = d.QuoteIdent(col)
		placeholders[i] = d.Placeholder(i + 1)
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", ")), nil
}

// Load inserts every row of ds into plan.Table inside one transaction. When
// any row fails nothing is kept and the error names the failing row.
func (l *Loader) Load(ctx context.Context, plan *TablePlan, ds *Dataset) (int64, error) {
	if ds == nil || len(ds.Columns) == 0 {
		return 0, types.ErrEmptyDataset
	}
	if plan == nil {
		return 0, errors.New("nil table plan")
	}
	if err := ds.Validate(); err != nil {
		return 0, err
	}

	stmt, err := InsertSQL(l.db.Dialect(), plan.Table, ds.Names())
	if err != nil {
		return 0, err
	}

	var inserted int64
	err = l.db.WithTx(ctx, func(ctx context.Context, q engine.Execer) error {
		for i := range ds.Len() {
			if _, err := q.ExecContext(ctx, stmt, ds.Row(i)...); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, engine.StorageErr("load "+plan.Table, err)
	}

	l.logger.Info("rows loaded", "table", plan.Table, "rows", inserted)
	return inserted, nil
}
