package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// CopyThreshold is the row count from which COPY beats a multi-row INSERT.
const CopyThreshold = 32

// BatchInserter bulk-loads ledger rows with the COPY protocol.
type BatchInserter struct {
	txManager *TxManager
}

// NewBatchInserter creates a new batch inserter.
func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice copies rows into table. It must run inside a transaction so
// that a failed commit leaves no rows behind.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	pgTx := b.txManager.getTx(ctx)
	if pgTx == nil {
		return 0, fmt.Errorf("copy into %s requires transaction context", table)
	}
	return pgTx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}
