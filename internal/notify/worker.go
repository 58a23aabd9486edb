// Package notify is the notification sink. Producers enqueue delivery
// jobs (transactionally, when part of a commit sequence) and a River
// worker persists the notification rows asynchronously; callers never
// wait for delivery.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"github.com/Adham-Emam/Forge-Api/internal/models"
)

// DeliverArgs is the payload of a notification delivery job.
type DeliverArgs struct {
	UserID  uuid.UUID `json:"user_id"`
	Type    string    `json:"type"`
	URL     string    `json:"url"`
	Message string    `json:"message"`
}

func (DeliverArgs) Kind() string { return "deliver_notification" }

// Enqueuer inserts delivery jobs, either standalone or inside the
// caller's transaction so the enqueue commits or rolls back with it.
type Enqueuer interface {
	Enqueue(ctx context.Context, args DeliverArgs) error
	EnqueueTx(ctx context.Context, tx pgx.Tx, args DeliverArgs) error
}

// RiverEnqueuer implements Enqueuer over a River client.
type RiverEnqueuer struct {
	Client *river.Client[pgx.Tx]
}

func (e *RiverEnqueuer) Enqueue(ctx context.Context, args DeliverArgs) error {
	_, err := e.Client.Insert(ctx, args, nil)
	return err
}

func (e *RiverEnqueuer) EnqueueTx(ctx context.Context, tx pgx.Tx, args DeliverArgs) error {
	_, err := e.Client.InsertTx(ctx, tx, args, nil)
	return err
}

// NotificationStore persists delivered notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

type DeliverWorker struct {
	river.WorkerDefaults[DeliverArgs]
	store NotificationStore
	log   *slog.Logger
}

func NewDeliverWorker(store NotificationStore, log *slog.Logger) *DeliverWorker {
	if log == nil {
		log = slog.Default()
	}
	return &DeliverWorker{store: store, log: log}
}

func (w *DeliverWorker) Work(ctx context.Context, job *river.Job[DeliverArgs]) error {
	args := job.Args
	n := &models.Notification{
		ID:      uuid.New(),
		UserID:  args.UserID,
		Type:    args.Type,
		URL:     args.URL,
		Message: args.Message,
	}
	if err := w.store.Create(ctx, n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}
	w.log.Info("notification delivered", "user_id", args.UserID, "type", args.Type)
	return nil
}
