package adapter

import (
	"context"
	"database/sql"
	"time"

	"storefront-sync/internal/core/database"
	"storefront-sync/internal/core/logger"

	"go.uber.org/zap"
)

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return nullTime(*t)
}

// execRetry runs a single-statement write and repeats it once after a deadlock or lock wait timeout.
// MySQL rolls the statement back in both cases, so the second attempt starts clean.
func execRetry(ctx context.Context, db *sql.DB, query string, args ...interface{}) (sql.Result, error) {
	result, err := db.ExecContext(ctx, query, args...)
	if !database.IsDeadlock(err) {
		return result, err
	}

	logger.Named("mysql").Warn("Retrying write after lock conflict", zap.Error(err))
	return db.ExecContext(ctx, query, args...)
}
