package databases

import (
	"context"
	"fmt"

	"github.com/melkeydev/datadesk/databases/engine"
	"github.com/melkeydev/datadesk/databases/mysql"
	"github.com/melkeydev/datadesk/databases/postgres"
	"github.com/melkeydev/datadesk/databases/sqlite"
	"github.com/melkeydev/datadesk/types"
)

// Database is the storage gateway every other package talks to.
type Database interface {
	engine.Runner

	Ping(ctx context.Context) error
	ListTables(ctx context.Context) ([]string, error)
	TableExists(ctx context.Context, table string) (bool, error)
	DescribeTable(ctx context.Context, table string) (*types.TableDescription, error)
	CountRows(ctx context.Context, table string) (int64, error)
	Sample(ctx context.Context, table string, limit int) ([]map[string]any, error)
	DropTable(ctx context.Context, table string) error
	Close() error
}

var _ Database = (*engine.Gateway)(nil)

// NewConnector opens the gateway for dbType. connStr is a driver DSN, or a
// file path for sqlite.
func NewConnector(dbType, connStr string, pool engine.PoolOptions) (Database, error) {
	var (
		gw  *engine.Gateway
		err error
	)

	switch dbType {
	case "mysql":
		gw, err = mysql.NewMySQLConnector(connStr, pool)
	case "postgres":
		gw, err = postgres.NewPostgresConnector(connStr, pool)
	case "sqlite":
		gw, err = sqlite.NewSQLiteConnector(connStr, pool)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
	if err != nil {
		return nil, err
	}

	return gw, nil
}
