package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Adham-Emam/Forge-Api/internal/models"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func (r *NotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, type, url, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, n.ID, n.UserID, n.Type, n.URL, n.Message).Scan(&n.CreatedAt)
}

// ListUnread returns the user's unread notifications, newest first.
func (r *NotificationRepo) ListUnread(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, type, url, message, is_read, created_at
		FROM notifications WHERE user_id = $1 AND NOT is_read ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.URL, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

// MarkRead flags the notification read if it belongs to the user.
// Returns the number of rows updated (0 when not found).
func (r *NotificationRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2 AND NOT is_read
	`, notificationID, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
