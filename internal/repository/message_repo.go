package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Adham-Emam/Forge-Api/internal/models"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, m *models.Message) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, message)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, m.ID, m.SenderID, m.ReceiverID, m.Message).Scan(&m.CreatedAt)
}

// ListConversation returns the messages between two users in either
// direction, oldest first.
func (r *MessageRepo) ListConversation(ctx context.Context, userID, otherID uuid.UUID) ([]*models.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sender_id, receiver_id, message, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at
	`, userID, otherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
