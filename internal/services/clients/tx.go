// internal/services/clients/tx.go
package clients

import (
	"context"
	"database/sql"

	"advisor-ai/internal/common/database"
	"advisor-ai/internal/repository"
)

// PostgresTx runs import batches in one Postgres transaction.
func PostgresTx(db *sql.DB, repo *repository.ClientRepository) TxFunc {
	return func(ctx context.Context, fn func(Repository) error) error {
		return database.WithTx(ctx, db, func(tx *sql.Tx) error {
			return fn(repo.WithTx(tx))
		})
	}
}
