// Package bids implements the bid lifecycle: gated placement, the
// atomic spark debit, and the list views.
package bids

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Adham-Emam/Forge-Api/internal/ledger"
	"github.com/Adham-Emam/Forge-Api/internal/models"
	"github.com/Adham-Emam/Forge-Api/internal/notify"
	"github.com/Adham-Emam/Forge-Api/internal/repository"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrSelfBid             = errors.New("cannot bid on your own project")
	ErrInsufficientSparks  = errors.New("insufficient sparks")
	ErrDurationOutOfRange  = errors.New("duration must be between 1 and 365 days")
	ErrAmountNotPositive   = errors.New("amount must be greater than zero")
	ErrAmountExceedsBudget = errors.New("amount cannot exceed the project budget")
	ErrDuplicateBid        = errors.New("you already placed a bid on this project")
)

// TxBeginner starts the transaction the placement commits under.
// *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ProjectGetter loads the target project with its owner display fields.
type ProjectGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repository.ProjectListItem, error)
}

// BidStore is the repository subset placement and listing need.
type BidStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, b *models.Bid) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*repository.BidListItem, error)
	ListForUserView(ctx context.Context, userID uuid.UUID, view string) ([]*repository.BidListItem, error)
}

// SparkDebiter deducts the placement fee inside the transaction.
type SparkDebiter interface {
	DebitSparksTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int) (int, error)
}

type Service struct {
	db       TxBeginner
	projects ProjectGetter
	bids     BidStore
	users    SparkDebiter
	ledger   ledger.Service
	enqueuer notify.Enqueuer
}

func NewService(db TxBeginner, projects ProjectGetter, bids BidStore, users SparkDebiter, ledger ledger.Service, enqueuer notify.Enqueuer) *Service {
	return &Service{db: db, projects: projects, bids: bids, users: users, ledger: ledger, enqueuer: enqueuer}
}

// PlaceInput is a bid as submitted by the acting user.
type PlaceInput struct {
	ProjectID uuid.UUID
	Proposal  *string
	Amount    int
	Duration  int
}

// Place runs the placement gates in order and, if all pass, commits the
// bid, the spark debit, the ledger entry, and the owner notification in
// one transaction. The gates are checked against a snapshot; the unique
// constraint and the guarded debit close the races at commit time.
func (s *Service) Place(ctx context.Context, actor *models.User, in PlaceInput) (*models.Bid, error) {
	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if project.OwnerID == actor.ID {
		return nil, ErrSelfBid
	}
	if actor.Sparks < project.BidAmount {
		return nil, ErrInsufficientSparks
	}
	if in.Duration < models.MinDuration || in.Duration > models.MaxDuration {
		return nil, ErrDurationOutOfRange
	}
	if in.Amount <= 0 {
		return nil, ErrAmountNotPositive
	}
	if in.Amount > project.Budget {
		return nil, ErrAmountExceedsBudget
	}

	bid := &models.Bid{
		ID:        uuid.New(),
		ProjectID: in.ProjectID,
		UserID:    actor.ID,
		Proposal:  in.Proposal,
		Amount:    in.Amount,
		Duration:  in.Duration,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.bids.CreateTx(ctx, tx, bid); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateBid
		}
		return nil, err
	}
	if project.BidAmount > 0 {
		if _, err := s.users.DebitSparksTx(ctx, tx, actor.ID, project.BidAmount); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrInsufficientSparks
			}
			return nil, err
		}
		if err := s.ledger.RecordSparkPayment(ctx, tx, actor.ID, project.BidAmount, "Bid on project"); err != nil {
			return nil, err
		}
	}
	if err := s.enqueuer.EnqueueTx(ctx, tx, notify.DeliverArgs{
		UserID:  project.OwnerID,
		Type:    models.NotificationBid,
		URL:     bidNotificationURL(&project.Project),
		Message: fmt.Sprintf("%s has submitted a bid on your project.", actor.FullName()),
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return bid, nil
}

func (s *Service) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*repository.BidListItem, error) {
	return s.bids.ListByProject(ctx, projectID)
}

func (s *Service) ListForUserView(ctx context.Context, userID uuid.UUID, view string) ([]*repository.BidListItem, error) {
	return s.bids.ListForUserView(ctx, userID, view)
}

func bidNotificationURL(p *models.Project) string {
	q := url.Values{}
	q.Set("title", p.Title)
	q.Set("description", p.Description)
	return fmt.Sprintf("/dashboard/projects/%s?%s", p.ID, q.Encode())
}
