package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Adham-Emam/Forge-Api/internal/models"
)

type TransactionRepo struct {
	pool *pgxpool.Pool
}

func NewTransactionRepo(pool *pgxpool.Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// CreateTx appends a ledger record inside the caller's transaction.
func (r *TransactionRepo) CreateTx(ctx context.Context, tx pgx.Tx, t *models.Transaction) error {
	return tx.QueryRow(ctx, `
		INSERT INTO transactions (id, user_id, currency, type, amount, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, t.ID, t.UserID, t.Currency, t.Type, t.Amount, t.Description).Scan(&t.CreatedAt)
}

// ListByUser returns the user's ledger, optionally filtered by type
// ("received" or "payment"), newest first.
func (r *TransactionRepo) ListByUser(ctx context.Context, userID uuid.UUID, txType string) ([]*models.Transaction, error) {
	q := `SELECT id, user_id, currency, type, amount, description, created_at
		FROM transactions WHERE user_id = $1`
	args := []any{userID}
	if txType == models.TransactionReceived || txType == models.TransactionPayment {
		q += ` AND type = $2`
		args = append(args, txType)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Currency, &t.Type, &t.Amount, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
