package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Adham-Emam/Forge-Api/internal/catalog"
	"github.com/Adham-Emam/Forge-Api/internal/models"
)

// projectColumns is the select list shared by every project query:
// the project row, the owner display fields, and the two derived
// aggregates the filter pipeline and the serializers need.
const projectColumns = `
	p.id, p.title, p.description, p.skills_needed, p.budget, p.duration, p.bid_amount,
	p.status, p.type, p.exchange_for, p.experience_level, p.owner_id, p.assigned_to,
	p.created_at, p.updated_at,
	u.username, u.first_name, u.last_name, u.user_title, u.country,
	(SELECT count(*) FROM bids b WHERE b.project_id = p.id) AS bid_count,
	(SELECT count(*) FROM projects q WHERE q.owner_id = p.owner_id AND q.status = 'completed') AS completed_count`

const projectFrom = ` FROM projects p JOIN users u ON u.id = p.owner_id`

// ProjectListItem is a project annotated with owner display fields and
// the aggregates exposed in list responses.
type ProjectListItem struct {
	models.Project
	OwnerUsername  string  `json:"owner_username"`
	OwnerFirstName string  `json:"owner_first_name"`
	OwnerLastName  string  `json:"owner_last_name"`
	OwnerTitle     *string `json:"owner_title,omitempty"`
	OwnerCountry   *string `json:"owner_location,omitempty"`
	BidCount       int     `json:"bids"`
	OwnerCompleted int     `json:"-"`
}

// Facts adapts the item to the catalog's in-memory filter input.
func (it *ProjectListItem) Facts() catalog.ProjectFacts {
	country := ""
	if it.OwnerCountry != nil {
		country = *it.OwnerCountry
	}
	return catalog.ProjectFacts{
		Project:        it.Project,
		OwnerCountry:   country,
		BidCount:       it.BidCount,
		OwnerCompleted: it.OwnerCompleted,
	}
}

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

func (r *ProjectRepo) Create(ctx context.Context, p *models.Project) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO projects (id, title, description, skills_needed, budget, duration, bid_amount, status, type, exchange_for, experience_level, owner_id, assigned_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`, p.ID, p.Title, p.Description, p.SkillsNeeded, p.Budget, p.Duration, p.BidAmount, p.Status, p.Type, p.ExchangeFor, p.ExperienceLevel, p.OwnerID, p.AssignedTo).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*ProjectListItem, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+projectColumns+projectFrom+` WHERE p.id = $1`, id)
	return scanProjectItem(row)
}

func (r *ProjectRepo) Update(ctx context.Context, p *models.Project) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE projects SET title = $2, description = $3, skills_needed = $4, budget = $5, duration = $6, bid_amount = $7, status = $8, type = $9, exchange_for = $10, experience_level = $11, assigned_to = $12, updated_at = now()
		WHERE id = $1
	`, p.ID, p.Title, p.Description, p.SkillsNeeded, p.Budget, p.Duration, p.BidAmount, p.Status, p.Type, p.ExchangeFor, p.ExperienceLevel, p.AssignedTo)
	return err
}

func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM projects WHERE id = $1", id)
	return err
}

// ListFiltered returns the catalog narrowed by the spec, newest first.
func (r *ProjectRepo) ListFiltered(ctx context.Context, spec *catalog.Spec) ([]*ProjectListItem, error) {
	where, args := spec.SQL(0)
	rows, err := r.pool.Query(ctx,
		`SELECT`+projectColumns+projectFrom+` WHERE `+where+` ORDER BY p.created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjectItems(rows)
}

// ListSavedFiltered returns the user's saved projects narrowed by the
// spec, newest first.
func (r *ProjectRepo) ListSavedFiltered(ctx context.Context, userID uuid.UUID, spec *catalog.Spec) ([]*ProjectListItem, error) {
	where, args := spec.SQL(1)
	args = append([]any{userID}, args...)
	rows, err := r.pool.Query(ctx,
		`SELECT`+projectColumns+projectFrom+`
		JOIN saved_projects sp ON sp.project_id = p.id AND sp.user_id = $1
		WHERE `+where+` ORDER BY p.created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjectItems(rows)
}

// ListOpen returns every open project with aggregates, newest first.
// The match selector narrows these in memory.
func (r *ProjectRepo) ListOpen(ctx context.Context) ([]*ProjectListItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT`+projectColumns+projectFrom+` WHERE p.status = 'open' ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjectItems(rows)
}

// ListForOwnerView returns a user's projects for the dashboard views:
// open (own, unassigned), in_progress (assigned to the user),
// my_in_progress (own), closed (own), anything else = all own projects.
func (r *ProjectRepo) ListForOwnerView(ctx context.Context, userID uuid.UUID, view string) ([]*ProjectListItem, error) {
	var where string
	switch view {
	case "open":
		where = `p.owner_id = $1 AND p.status = 'open' AND p.assigned_to IS NULL`
	case "in_progress":
		where = `p.status = 'in_progress' AND p.assigned_to = $1`
	case "my_in_progress":
		where = `p.owner_id = $1 AND p.status = 'in_progress'`
	case "closed":
		where = `p.owner_id = $1 AND p.status = 'closed'`
	default:
		where = `p.owner_id = $1`
	}
	rows, err := r.pool.Query(ctx,
		`SELECT`+projectColumns+projectFrom+` WHERE `+where+` ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjectItems(rows)
}

// ToggleSaved flips membership of a project in the user's saved set and
// reports whether it was added. Read-then-write without an isolating
// transaction: concurrent toggles are last-write-wins.
func (r *ProjectRepo) ToggleSaved(ctx context.Context, userID, projectID uuid.UUID) (added bool, err error) {
	var exists bool
	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM saved_projects WHERE user_id = $1 AND project_id = $2)`,
		userID, projectID).Scan(&exists)
	if err != nil {
		return false, err
	}
	if exists {
		_, err = r.pool.Exec(ctx,
			`DELETE FROM saved_projects WHERE user_id = $1 AND project_id = $2`, userID, projectID)
		return false, err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO saved_projects (user_id, project_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, projectID)
	return true, err
}

func scanProjectItem(row pgx.Row) (*ProjectListItem, error) {
	var it ProjectListItem
	err := row.Scan(
		&it.ID, &it.Title, &it.Description, &it.SkillsNeeded, &it.Budget, &it.Duration, &it.BidAmount,
		&it.Status, &it.Type, &it.ExchangeFor, &it.ExperienceLevel, &it.OwnerID, &it.AssignedTo,
		&it.CreatedAt, &it.UpdatedAt,
		&it.OwnerUsername, &it.OwnerFirstName, &it.OwnerLastName, &it.OwnerTitle, &it.OwnerCountry,
		&it.BidCount, &it.OwnerCompleted,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func scanProjectItems(rows pgx.Rows) ([]*ProjectListItem, error) {
	var list []*ProjectListItem
	for rows.Next() {
		it, err := scanProjectItem(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, it)
	}
	return list, rows.Err()
}
