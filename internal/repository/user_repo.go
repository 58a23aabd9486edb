package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Adham-Emam/Forge-Api/internal/models"
)

const userColumns = `
	id, username, email, password_hash, first_name, last_name, user_title, description,
	gender, phone, country_code, country, state, birth_date, skills, interests,
	credits, sparks, created_at, updated_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, sparks)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING credits, created_at, updated_at
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.Sparks).Scan(&u.Credits, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getWhere(ctx, `id = $1`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getWhere(ctx, `email = $1`, email)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getWhere(ctx, `username = $1`, username)
}

func (r *UserRepo) getWhere(ctx context.Context, where string, arg any) (*models.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+userColumns+` FROM users WHERE `+where, arg)
	return scanUser(row)
}

// UpdateProfile writes the mutable profile fields. Username, email,
// credits, and sparks are read-only here: credits and sparks move only
// through ledger-producing operations.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *models.User) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET first_name = $2, last_name = $3, user_title = $4, description = $5,
			gender = $6, phone = $7, country_code = $8, country = $9, state = $10,
			birth_date = $11, skills = $12, interests = $13, updated_at = now()
		WHERE id = $1
	`, u.ID, u.FirstName, u.LastName, u.UserTitle, u.Description,
		u.Gender, u.Phone, u.CountryCode, u.Country, u.State,
		u.BirthDate, u.Skills, u.Interests)
	return err
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	return err
}

// DebitSparksTx atomically deducts amount if the balance covers it.
// Returns pgx.ErrNoRows when the balance is insufficient.
func (r *UserRepo) DebitSparksTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int) (newBalance int, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE users SET sparks = sparks - $1, updated_at = now()
		WHERE id = $2 AND sparks >= $1
		RETURNING sparks
	`, amount, id).Scan(&newBalance)
	return newBalance, err
}

// ListContacts returns the users this user worked with through project
// assignment, in either direction, optionally narrowed by a
// case-insensitive name search.
func (r *UserRepo) ListContacts(ctx context.Context, userID uuid.UUID, search string) ([]*models.User, error) {
	q := `SELECT` + userColumns + ` FROM users WHERE id IN (
			SELECT assigned_to FROM projects WHERE owner_id = $1 AND assigned_to IS NOT NULL
			UNION
			SELECT owner_id FROM projects WHERE assigned_to = $1
		)`
	args := []any{userID}
	if search != "" {
		q += ` AND (first_name ILIKE $2 OR last_name ILIKE $2)`
		args = append(args, "%"+search+"%")
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.UserTitle, &u.Description, &u.Gender, &u.Phone, &u.CountryCode, &u.Country,
		&u.State, &u.BirthDate, &u.Skills, &u.Interests, &u.Credits, &u.Sparks,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
