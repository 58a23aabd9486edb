package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Adham-Emam/Forge-Api/internal/models"
)

const bidColumns = `
	b.id, b.project_id, b.user_id, b.proposal, b.amount, b.duration, b.created_at,
	u.first_name, u.last_name, p.title, p.description`

const bidFrom = ` FROM bids b JOIN users u ON u.id = b.user_id JOIN projects p ON p.id = b.project_id`

// BidListItem is a bid annotated with the bidder and project display
// fields exposed in list responses.
type BidListItem struct {
	models.Bid
	BidderFirstName    string `json:"bidder_first_name"`
	BidderLastName     string `json:"bidder_last_name"`
	ProjectTitle       string `json:"project_title"`
	ProjectDescription string `json:"project_description"`
}

type BidRepo struct {
	pool *pgxpool.Pool
}

func NewBidRepo(pool *pgxpool.Pool) *BidRepo {
	return &BidRepo{pool: pool}
}

// CreateTx inserts the bid inside the caller's transaction. The
// (project_id, user_id) unique constraint is the authoritative
// duplicate signal; callers translate 23505 into the conflict error.
func (r *BidRepo) CreateTx(ctx context.Context, tx pgx.Tx, b *models.Bid) error {
	return tx.QueryRow(ctx, `
		INSERT INTO bids (id, project_id, user_id, proposal, amount, duration)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, b.ID, b.ProjectID, b.UserID, b.Proposal, b.Amount, b.Duration).Scan(&b.CreatedAt)
}

// ExistsForUser reports whether the user already bid on the project.
// Pre-check only; the unique constraint closes the race.
func (r *BidRepo) ExistsForUser(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bids WHERE project_id = $1 AND user_id = $2)`,
		projectID, userID).Scan(&exists)
	return exists, err
}

func (r *BidRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*BidListItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT`+bidColumns+bidFrom+` WHERE b.project_id = $1 ORDER BY b.created_at DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBidItems(rows)
}

// ListForUserView returns bids for the dashboard views: open (the
// user's bids on open projects), in_progress (bids on projects assigned
// to the user), owner (bids received on the user's own open projects),
// anything else = the user's bids on non-completed projects.
func (r *BidRepo) ListForUserView(ctx context.Context, userID uuid.UUID, view string) ([]*BidListItem, error) {
	var where string
	switch view {
	case "open":
		where = `b.user_id = $1 AND p.status = 'open'`
	case "in_progress":
		where = `p.status = 'in_progress' AND p.assigned_to = $1`
	case "owner":
		where = `p.owner_id = $1 AND p.status = 'open' AND p.assigned_to IS NULL`
	default:
		where = `b.user_id = $1 AND p.status IN ('open', 'in_progress', 'closed')`
	}
	rows, err := r.pool.Query(ctx,
		`SELECT`+bidColumns+bidFrom+` WHERE `+where+` ORDER BY b.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBidItems(rows)
}

func scanBidItems(rows pgx.Rows) ([]*BidListItem, error) {
	var list []*BidListItem
	for rows.Next() {
		var it BidListItem
		err := rows.Scan(
			&it.ID, &it.ProjectID, &it.UserID, &it.Proposal, &it.Amount, &it.Duration, &it.CreatedAt,
			&it.BidderFirstName, &it.BidderLastName, &it.ProjectTitle, &it.ProjectDescription,
		)
		if err != nil {
			return nil, err
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}
