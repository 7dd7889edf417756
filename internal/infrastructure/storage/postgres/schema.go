package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"backoffice/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// ApplySchema creates missing tables and indexes.
func ApplySchema(ctx context.Context, pool *Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Info(ctx, "database schema applied")
	return nil
}
