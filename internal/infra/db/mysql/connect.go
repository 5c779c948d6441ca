package mysql

import (
	"context"
	"database/sql"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	dbutil "github.com/bryanwahyu/ecosense/internal/infra/db"
)

// Connect opens the factor database at dsn. Timestamps are always read as
// UTC time.Time values whatever the DSN says.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	connector, err := gomysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	return dbutil.OpenPool(ctx, connector)
}
