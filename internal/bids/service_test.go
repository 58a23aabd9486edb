package bids

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Adham-Emam/Forge-Api/internal/ledger"
	"github.com/Adham-Emam/Forge-Api/internal/models"
	"github.com/Adham-Emam/Forge-Api/internal/notify"
	"github.com/Adham-Emam/Forge-Api/internal/repository"
)

// ---------------------------------------------------------------------------
// In-memory mocks. They ignore the transaction handle, so the beginner
// hands out a no-op tx whose only job is to Commit and Rollback cleanly.
// ---------------------------------------------------------------------------

type noopTx struct{ pgx.Tx }

func (noopTx) Commit(context.Context) error   { return nil }
func (noopTx) Rollback(context.Context) error { return nil }

type noopBeginner struct{}

func (noopBeginner) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }

type mockProjects struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*repository.ProjectListItem
}

func newMockProjects(items ...*repository.ProjectListItem) *mockProjects {
	m := &mockProjects{projects: make(map[uuid.UUID]*repository.ProjectListItem)}
	for _, it := range items {
		cp := *it
		m.projects[it.ID] = &cp
	}
	return m
}

func (m *mockProjects) GetByID(_ context.Context, id uuid.UUID) (*repository.ProjectListItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

type mockBids struct {
	mu   sync.Mutex
	bids []*models.Bid
}

func (m *mockBids) CreateTx(_ context.Context, _ pgx.Tx, b *models.Bid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.bids {
		if existing.ProjectID == b.ProjectID && existing.UserID == b.UserID {
			return &pgconn.PgError{Code: "23505", ConstraintName: "bids_project_id_user_id_key"}
		}
	}
	cp := *b
	m.bids = append(m.bids, &cp)
	return nil
}

func (m *mockBids) ListByProject(context.Context, uuid.UUID) ([]*repository.BidListItem, error) {
	return nil, nil
}

func (m *mockBids) ListForUserView(context.Context, uuid.UUID, string) ([]*repository.BidListItem, error) {
	return nil, nil
}

func (m *mockBids) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bids)
}

type mockSparks struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int
	debits   int
}

func newMockSparks() *mockSparks {
	return &mockSparks{balances: make(map[uuid.UUID]int)}
}

func (m *mockSparks) DebitSparksTx(_ context.Context, _ pgx.Tx, id uuid.UUID, amount int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[id] < amount {
		return 0, pgx.ErrNoRows
	}
	m.balances[id] -= amount
	m.debits++
	return m.balances[id], nil
}

func (m *mockSparks) balance(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[id]
}

type mockTransactions struct {
	mu      sync.Mutex
	entries []*models.Transaction
}

func (m *mockTransactions) CreateTx(_ context.Context, _ pgx.Tx, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockTransactions) ListByUser(context.Context, uuid.UUID, string) ([]*models.Transaction, error) {
	return nil, nil
}

func (m *mockTransactions) all() []*models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Transaction, len(m.entries))
	copy(out, m.entries)
	return out
}

type mockEnqueuer struct {
	mu   sync.Mutex
	sent []notify.DeliverArgs
}

func (m *mockEnqueuer) Enqueue(_ context.Context, args notify.DeliverArgs) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, args)
	return nil
}

func (m *mockEnqueuer) EnqueueTx(ctx context.Context, _ pgx.Tx, args notify.DeliverArgs) error {
	return m.Enqueue(ctx, args)
}

func (m *mockEnqueuer) all() []notify.DeliverArgs {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notify.DeliverArgs, len(m.sent))
	copy(out, m.sent)
	return out
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

type fixture struct {
	svc      *Service
	projects *mockProjects
	bids     *mockBids
	sparks   *mockSparks
	ledger   *mockTransactions
	enqueuer *mockEnqueuer
}

func newFixture(items ...*repository.ProjectListItem) *fixture {
	f := &fixture{
		projects: newMockProjects(items...),
		bids:     &mockBids{},
		sparks:   newMockSparks(),
		ledger:   &mockTransactions{},
		enqueuer: &mockEnqueuer{},
	}
	f.svc = NewService(noopBeginner{}, f.projects, f.bids, f.sparks, ledger.NewService(f.ledger), f.enqueuer)
	return f
}

func openProject(ownerID uuid.UUID, budget, bidAmount int) *repository.ProjectListItem {
	return &repository.ProjectListItem{
		Project: models.Project{
			ID:          uuid.New(),
			Title:       "Build a CLI",
			Description: "Small tool",
			Budget:      budget,
			Duration:    30,
			BidAmount:   bidAmount,
			Status:      models.ProjectStatusOpen,
			Type:        models.ProjectTypeFreelancer,
			OwnerID:     ownerID,
		},
	}
}

func bidder(sparks int) *models.User {
	return &models.User{
		ID:        uuid.New(),
		Username:  "casey",
		FirstName: "Casey",
		LastName:  "Ray",
		Sparks:    sparks,
	}
}

// ---------------------------------------------------------------------------
// Placement
// ---------------------------------------------------------------------------

func TestPlace_Success(t *testing.T) {
	owner := uuid.New()
	project := openProject(owner, 500, 15)
	f := newFixture(project)
	actor := bidder(100)
	f.sparks.balances[actor.ID] = 100

	ctx := context.Background()
	bid, err := f.svc.Place(ctx, actor, PlaceInput{ProjectID: project.ID, Amount: 300, Duration: 14})
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if bid.ProjectID != project.ID || bid.UserID != actor.ID {
		t.Error("bid should reference the project and the acting user")
	}

	// The debit is the project's bid_amount, not the bid's amount.
	if got := f.sparks.balance(actor.ID); got != 85 {
		t.Errorf("spark balance after placement: got %d, want 85", got)
	}

	entries := f.ledger.all()
	if len(entries) != 1 {
		t.Fatalf("ledger entries: got %d, want 1", len(entries))
	}
	e := entries[0]
	if e.UserID != actor.ID || e.Currency != models.CurrencySpark || e.Amount != 15 {
		t.Errorf("ledger entry: got user=%s currency=%s amount=%d", e.UserID, e.Currency, e.Amount)
	}
	if e.Type == nil || *e.Type != models.TransactionPayment {
		t.Error("ledger entry should be a payment")
	}
	if e.Description == nil || *e.Description != "Bid on project" {
		t.Error("ledger entry should carry the placement description")
	}

	sent := f.enqueuer.all()
	if len(sent) != 1 {
		t.Fatalf("notifications: got %d, want 1", len(sent))
	}
	n := sent[0]
	if n.UserID != owner {
		t.Error("notification should target the project owner")
	}
	if n.Type != models.NotificationBid {
		t.Errorf("notification type: got %q", n.Type)
	}
	if !strings.Contains(n.Message, "Casey Ray") {
		t.Errorf("notification message should name the bidder, got %q", n.Message)
	}
	if !strings.Contains(n.URL, project.ID.String()) {
		t.Errorf("notification URL should point at the project, got %q", n.URL)
	}
}

func TestPlace_FreePlacement(t *testing.T) {
	project := openProject(uuid.New(), 500, 0)
	f := newFixture(project)
	actor := bidder(0)

	_, err := f.svc.Place(context.Background(), actor, PlaceInput{ProjectID: project.ID, Amount: 100, Duration: 7})
	if err != nil {
		t.Fatalf("Place with zero fee: %v", err)
	}
	if f.sparks.debits != 0 {
		t.Error("zero-fee placement should not touch spark balances")
	}
	if len(f.ledger.all()) != 0 {
		t.Error("zero-fee placement should not write a ledger entry")
	}
	if len(f.enqueuer.all()) != 1 {
		t.Error("owner should still be notified")
	}
}

func TestPlace_SelfBid(t *testing.T) {
	actor := bidder(100)
	project := openProject(actor.ID, 500, 10)
	f := newFixture(project)

	_, err := f.svc.Place(context.Background(), actor, PlaceInput{ProjectID: project.ID, Amount: 100, Duration: 7})
	if !errors.Is(err, ErrSelfBid) {
		t.Fatalf("expected ErrSelfBid, got: %v", err)
	}
	if f.bids.count() != 0 || len(f.enqueuer.all()) != 0 {
		t.Error("rejected placement must leave no side effects")
	}
}

func TestPlace_InsufficientSparks(t *testing.T) {
	project := openProject(uuid.New(), 500, 25)
	f := newFixture(project)
	actor := bidder(10)
	f.sparks.balances[actor.ID] = 10

	_, err := f.svc.Place(context.Background(), actor, PlaceInput{ProjectID: project.ID, Amount: 100, Duration: 7})
	if !errors.Is(err, ErrInsufficientSparks) {
		t.Fatalf("expected ErrInsufficientSparks, got: %v", err)
	}
	if f.bids.count() != 0 {
		t.Error("rejected placement must not persist a bid")
	}
}

func TestPlace_StaleSnapshotDebitStillGuarded(t *testing.T) {
	// The actor's loaded balance passes the gate but the store balance
	// has since dropped. The guarded debit catches it at commit time.
	project := openProject(uuid.New(), 500, 25)
	f := newFixture(project)
	actor := bidder(100)
	f.sparks.balances[actor.ID] = 5

	_, err := f.svc.Place(context.Background(), actor, PlaceInput{ProjectID: project.ID, Amount: 100, Duration: 7})
	if !errors.Is(err, ErrInsufficientSparks) {
		t.Fatalf("expected ErrInsufficientSparks, got: %v", err)
	}
	if len(f.ledger.all()) != 0 || len(f.enqueuer.all()) != 0 {
		t.Error("failed debit must leave no ledger entry or notification")
	}
}

func TestPlace_ValidationGates(t *testing.T) {
	owner := uuid.New()
	project := openProject(owner, 500, 10)

	tests := []struct {
		name    string
		input   PlaceInput
		wantErr error
	}{
		{"duration too short", PlaceInput{Amount: 100, Duration: 0}, ErrDurationOutOfRange},
		{"duration too long", PlaceInput{Amount: 100, Duration: 366}, ErrDurationOutOfRange},
		{"zero amount", PlaceInput{Amount: 0, Duration: 7}, ErrAmountNotPositive},
		{"negative amount", PlaceInput{Amount: -5, Duration: 7}, ErrAmountNotPositive},
		{"amount over budget", PlaceInput{Amount: 501, Duration: 7}, ErrAmountExceedsBudget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(project)
			actor := bidder(100)
			f.sparks.balances[actor.ID] = 100
			tt.input.ProjectID = project.ID
			_, err := f.svc.Place(context.Background(), actor, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got: %v", tt.wantErr, err)
			}
			if f.bids.count() != 0 {
				t.Error("rejected placement must not persist a bid")
			}
		})
	}
}

func TestPlace_Duplicate(t *testing.T) {
	project := openProject(uuid.New(), 500, 10)
	f := newFixture(project)
	actor := bidder(100)
	f.sparks.balances[actor.ID] = 100

	ctx := context.Background()
	if _, err := f.svc.Place(ctx, actor, PlaceInput{ProjectID: project.ID, Amount: 100, Duration: 7}); err != nil {
		t.Fatalf("first placement: %v", err)
	}
	_, err := f.svc.Place(ctx, actor, PlaceInput{ProjectID: project.ID, Amount: 200, Duration: 10})
	if !errors.Is(err, ErrDuplicateBid) {
		t.Fatalf("expected ErrDuplicateBid, got: %v", err)
	}

	// Only the first placement's effects survive.
	if got := f.sparks.balance(actor.ID); got != 90 {
		t.Errorf("spark balance: got %d, want 90", got)
	}
	if len(f.ledger.all()) != 1 {
		t.Errorf("ledger entries: got %d, want 1", len(f.ledger.all()))
	}
	if len(f.enqueuer.all()) != 1 {
		t.Errorf("notifications: got %d, want 1", len(f.enqueuer.all()))
	}
}

func TestPlace_ProjectNotFound(t *testing.T) {
	f := newFixture()
	actor := bidder(100)
	_, err := f.svc.Place(context.Background(), actor, PlaceInput{ProjectID: uuid.New(), Amount: 10, Duration: 7})
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got: %v", err)
	}
}
