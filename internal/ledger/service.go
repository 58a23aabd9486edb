// Package ledger records currency movement. Every spark or ember
// change elsewhere in the system must append a row here inside the
// same transaction that moves the balance.
package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Adham-Emam/Forge-Api/internal/models"
)

// TransactionStore is the repository subset the ledger needs.
type TransactionStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, t *models.Transaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, txType string) ([]*models.Transaction, error)
}

type Service interface {
	RecordSparkPayment(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, description string) error
	RecordEmberReceipt(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, description string) error
	ListByUser(ctx context.Context, userID uuid.UUID, txType string) ([]*models.Transaction, error)
}

type service struct {
	store TransactionStore
}

func NewService(store TransactionStore) Service {
	return &service{store: store}
}

var _ Service = (*service)(nil)

// RecordSparkPayment appends a spark debit entry in the caller's
// transaction so the entry commits or rolls back with the balance move.
func (s *service) RecordSparkPayment(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, description string) error {
	txType := models.TransactionPayment
	return s.store.CreateTx(ctx, tx, &models.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Currency:    models.CurrencySpark,
		Type:        &txType,
		Amount:      amount,
		Description: &description,
	})
}

// RecordEmberReceipt appends an ember credit entry in the caller's
// transaction.
func (s *service) RecordEmberReceipt(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, description string) error {
	txType := models.TransactionReceived
	return s.store.CreateTx(ctx, tx, &models.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Currency:    models.CurrencyEmber,
		Type:        &txType,
		Amount:      amount,
		Description: &description,
	})
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, txType string) ([]*models.Transaction, error) {
	return s.store.ListByUser(ctx, userID, txType)
}
