package engine

import (
	"context"
	"regexp"

	"github.com/melkeydev/datadesk/types"
)

// Dialect covers everything that differs between the supported stores: how
// identifiers are quoted, how placeholders are written, which column types a
// plan renders to and how the catalog is read.
type Dialect interface {
	Name() string
	QuoteIdent(ident string) string
	Placeholder(n int) string
	ColumnType(t types.SQLType) string
	// AutoIncrementKey is the column definition of a surrogate integer key.
	AutoIncrementKey() string

	ListTables(ctx context.Context, q Execer) ([]string, error)
	TableExists(ctx context.Context, q Execer, table string) (bool, error)
	Columns(ctx context.Context, q Execer, table string) ([]types.Column, error)
	PrimaryKeys(ctx context.Context, q Execer, table string) ([]string, error)
	Indexes(ctx context.Context, q Execer, table string) ([]types.Index, error)
}

var safeIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// ValidateIdent rejects names that are not plain identifiers. Everything
// interpolated into generated SQL goes through here first.
func ValidateIdent(name string) error {
	if !safeIdent.MatchString(name) {
		return &types.InvalidIdentifierError{Name: name}
	}
	return nil
}
