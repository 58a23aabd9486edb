// Package projects implements the catalog surface: filtered listing,
// the match selector, the saved set, and project CRUD.
package projects

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Adham-Emam/Forge-Api/internal/catalog"
	"github.com/Adham-Emam/Forge-Api/internal/models"
	"github.com/Adham-Emam/Forge-Api/internal/notify"
	"github.com/Adham-Emam/Forge-Api/internal/repository"
)

var (
	ErrNotFound            = errors.New("project not found")
	ErrNotOwner            = errors.New("only the project owner may do this")
	ErrMissingFields       = errors.New("title, description, skills_needed and type are required")
	ErrInvalidType         = errors.New("type must be exchange or freelancer")
	ErrInvalidExperience   = errors.New("experience_level must be beginner, intermediate or expert")
	ErrBudgetNotPositive   = errors.New("budget must be greater than zero")
	ErrDurationOutOfRange  = errors.New("duration must be between 1 and 365 days")
	ErrBidAmountOutOfRange = errors.New("bid_amount must be between 0 and 40 sparks")
	ErrInsufficientEmbers  = errors.New("insufficient embers to fund this budget")
	ErrDuplicateTitle      = errors.New("you already have a project with this title")
)

// ProjectStore is the repository subset the service needs.
type ProjectStore interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.ProjectListItem, error)
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListFiltered(ctx context.Context, spec *catalog.Spec) ([]*repository.ProjectListItem, error)
	ListSavedFiltered(ctx context.Context, userID uuid.UUID, spec *catalog.Spec) ([]*repository.ProjectListItem, error)
	ListOpen(ctx context.Context) ([]*repository.ProjectListItem, error)
	ListForOwnerView(ctx context.Context, userID uuid.UUID, view string) ([]*repository.ProjectListItem, error)
	ToggleSaved(ctx context.Context, userID, projectID uuid.UUID) (bool, error)
}

type Service struct {
	store    ProjectStore
	matcher  catalog.Matcher
	enqueuer notify.Enqueuer
}

func NewService(store ProjectStore, matcher catalog.Matcher, enqueuer notify.Enqueuer) *Service {
	if matcher == nil {
		matcher = catalog.SkillIntersect{}
	}
	return &Service{store: store, matcher: matcher, enqueuer: enqueuer}
}

// List returns the catalog narrowed by the filters, newest first. A
// poisoned spec short-circuits to an empty result without a query.
func (s *Service) List(ctx context.Context, params catalog.Params) ([]*repository.ProjectListItem, error) {
	spec := catalog.ParseSpec(params)
	if spec.Empty() {
		return []*repository.ProjectListItem{}, nil
	}
	return s.store.ListFiltered(ctx, &spec)
}

// Matches returns open projects whose required skills intersect the
// user's skills or interests, excluding the user's own projects, then
// narrows by the remaining filters in memory. The candidate set is
// already loaded, so a second round trip would buy nothing.
func (s *Service) Matches(ctx context.Context, user *models.User, params catalog.Params) ([]*repository.ProjectListItem, error) {
	spec := catalog.ParseSpec(params)
	if spec.Empty() {
		return []*repository.ProjectListItem{}, nil
	}
	open, err := s.store.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	matched := []*repository.ProjectListItem{}
	for _, it := range open {
		if it.OwnerID == user.ID {
			continue
		}
		if !s.matcher.Matches(it.SkillsNeeded, user.Skills, user.Interests) {
			continue
		}
		facts := it.Facts()
		if !spec.Match(&facts) {
			continue
		}
		matched = append(matched, it)
	}
	return matched, nil
}

// Saved returns the user's saved projects narrowed by the filters. The
// saved view has no free-text search box, so the search dimension is
// ignored here.
func (s *Service) Saved(ctx context.Context, userID uuid.UUID, params catalog.Params) ([]*repository.ProjectListItem, error) {
	params.Search = ""
	spec := catalog.ParseSpec(params)
	if spec.Empty() {
		return []*repository.ProjectListItem{}, nil
	}
	return s.store.ListSavedFiltered(ctx, userID, &spec)
}

// ToggleSaved flips saved membership and reports "added" or "removed".
func (s *Service) ToggleSaved(ctx context.Context, userID, projectID uuid.UUID) (string, error) {
	if _, err := s.store.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	added, err := s.store.ToggleSaved(ctx, userID, projectID)
	if err != nil {
		return "", err
	}
	if added {
		return "added", nil
	}
	return "removed", nil
}

// CreateInput is a project as submitted by its owner.
type CreateInput struct {
	Title           string
	Description     string
	SkillsNeeded    []string
	Budget          int
	Duration        int
	BidAmount       int
	Type            string
	ExchangeFor     *string
	ExperienceLevel *string
}

// Create validates the fields against the catalog bounds and the
// owner's ember balance, persists the project, and enqueues the
// owner's confirmation notification.
func (s *Service) Create(ctx context.Context, owner *models.User, in CreateInput) (*models.Project, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || strings.TrimSpace(in.Description) == "" || len(in.SkillsNeeded) == 0 || in.Type == "" {
		return nil, ErrMissingFields
	}
	if !models.ValidProjectType(in.Type) {
		return nil, ErrInvalidType
	}
	if in.ExperienceLevel != nil && !models.ValidExperienceLevel(*in.ExperienceLevel) {
		return nil, ErrInvalidExperience
	}
	if err := validateBounds(in.Budget, in.Duration, in.BidAmount); err != nil {
		return nil, err
	}
	if owner.Credits < in.Budget {
		return nil, ErrInsufficientEmbers
	}

	p := &models.Project{
		ID:              uuid.New(),
		Title:           in.Title,
		Description:     in.Description,
		SkillsNeeded:    in.SkillsNeeded,
		Budget:          in.Budget,
		Duration:        in.Duration,
		BidAmount:       in.BidAmount,
		Status:          models.ProjectStatusOpen,
		Type:            in.Type,
		ExchangeFor:     in.ExchangeFor,
		ExperienceLevel: in.ExperienceLevel,
		OwnerID:         owner.ID,
	}
	if err := s.store.Create(ctx, p); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateTitle
		}
		return nil, err
	}
	if s.enqueuer != nil {
		if err := s.enqueuer.Enqueue(ctx, notify.DeliverArgs{
			UserID:  owner.ID,
			Type:    models.NotificationProject,
			URL:     "/dashboard/projects/" + p.ID.String(),
			Message: "Your project \"" + p.Title + "\" is now live.",
		}); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.ProjectListItem, error) {
	it, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

// UpdateInput carries the mutable project fields.
type UpdateInput struct {
	Title           string
	Description     string
	SkillsNeeded    []string
	Budget          int
	Duration        int
	BidAmount       int
	Status          string
	Type            string
	ExchangeFor     *string
	ExperienceLevel *string
	AssignedTo      *uuid.UUID
}

// Update rewrites a project the acting user owns, re-validating the
// numeric bounds so out-of-range values are never persisted.
func (s *Service) Update(ctx context.Context, actor *models.User, id uuid.UUID, in UpdateInput) (*models.Project, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.OwnerID != actor.ID {
		return nil, ErrNotOwner
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || strings.TrimSpace(in.Description) == "" || len(in.SkillsNeeded) == 0 || in.Type == "" {
		return nil, ErrMissingFields
	}
	if !models.ValidProjectType(in.Type) {
		return nil, ErrInvalidType
	}
	if in.ExperienceLevel != nil && !models.ValidExperienceLevel(*in.ExperienceLevel) {
		return nil, ErrInvalidExperience
	}
	if err := validateBounds(in.Budget, in.Duration, in.BidAmount); err != nil {
		return nil, err
	}

	p := current.Project
	p.Title = in.Title
	p.Description = in.Description
	p.SkillsNeeded = in.SkillsNeeded
	p.Budget = in.Budget
	p.Duration = in.Duration
	p.BidAmount = in.BidAmount
	if in.Status != "" {
		p.Status = in.Status
	}
	p.Type = in.Type
	p.ExchangeFor = in.ExchangeFor
	p.ExperienceLevel = in.ExperienceLevel
	p.AssignedTo = in.AssignedTo
	if err := s.store.Update(ctx, &p); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateTitle
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.OwnerID != actor.ID {
		return ErrNotOwner
	}
	return s.store.Delete(ctx, id)
}

// OwnerView returns the acting user's dashboard project lists.
func (s *Service) OwnerView(ctx context.Context, userID uuid.UUID, view string) ([]*repository.ProjectListItem, error) {
	return s.store.ListForOwnerView(ctx, userID, view)
}

func validateBounds(budget, duration, bidAmount int) error {
	if budget <= 0 {
		return ErrBudgetNotPositive
	}
	if duration < models.MinDuration || duration > models.MaxDuration {
		return ErrDurationOutOfRange
	}
	if bidAmount < 0 || bidAmount > models.MaxBidAmount {
		return ErrBidAmountOutOfRange
	}
	return nil
}
