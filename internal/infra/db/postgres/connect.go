package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	dbutil "github.com/bryanwahyu/ecosense/internal/infra/db"
)

// Connect opens the factor database described by a key=value DSN.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, err
	}
	return dbutil.OpenPool(ctx, connector)
}
