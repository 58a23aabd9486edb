package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Adham-Emam/Forge-Api/internal/models"
)

type SubscriberRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriberRepo(pool *pgxpool.Pool) *SubscriberRepo {
	return &SubscriberRepo{pool: pool}
}

func (r *SubscriberRepo) Create(ctx context.Context, s *models.Subscriber) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO subscribers (id, email) VALUES ($1, $2)`, s.ID, s.Email)
	return err
}

func (r *SubscriberRepo) List(ctx context.Context) ([]*models.Subscriber, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email FROM subscribers ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Subscriber
	for rows.Next() {
		var s models.Subscriber
		if err := rows.Scan(&s.ID, &s.Email); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// DeleteByEmail removes the subscriber and reports how many rows
// matched (0 when the email was never subscribed).
func (r *SubscriberRepo) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subscribers WHERE email = $1`, email)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
