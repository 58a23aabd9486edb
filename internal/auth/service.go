package auth

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/Adham-Emam/Forge-Api/internal/models"
	"github.com/Adham-Emam/Forge-Api/internal/notify"
)

var (
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore is the repository subset the auth service needs.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// SubscriberAdder lets registration add the new user to the newsletter
// list. A duplicate email there is not an error.
type SubscriberAdder interface {
	Create(ctx context.Context, s *models.Subscriber) error
}

type Service interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	UserFromToken(ctx context.Context, token string) (*models.User, error)
}

type service struct {
	users       UserStore
	subscribers SubscriberAdder
	enqueuer    notify.Enqueuer
	secret      []byte
}

func NewService(users UserStore, subscribers SubscriberAdder, enqueuer notify.Enqueuer) *service {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "forge-dev-secret"
	}
	return &service{users: users, subscribers: subscribers, enqueuer: enqueuer, secret: []byte(secret)}
}

var _ Service = (*service)(nil)

type claims struct {
	jwt.RegisteredClaims
}

// Register creates a user with the starting spark balance, subscribes
// the email to the newsletter, and enqueues the welcome notification.
func (s *service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Sparks:       models.NewUserSparks,
		Skills:       []string{},
		Interests:    []string{},
	}
	if err := s.users.Create(ctx, u); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return nil, ErrDuplicateEmail
			}
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	if s.subscribers != nil {
		err := s.subscribers.Create(ctx, &models.Subscriber{ID: uuid.New(), Email: email})
		var pgErr *pgconn.PgError
		if err != nil && !(errors.As(err, &pgErr) && pgErr.Code == "23505") {
			return nil, err
		}
	}
	if s.enqueuer != nil {
		err := s.enqueuer.Enqueue(ctx, notify.DeliverArgs{
			UserID:  u.ID,
			Type:    models.NotificationWelcome,
			URL:     "/dashboard",
			Message: "Welcome to Forge! You start with " + strconv.Itoa(models.NewUserSparks) + " sparks.",
		})
		if err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issueToken(u.ID)
}

func (s *service) issueToken(userID uuid.UUID) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}

// UserFromToken validates the token and loads the acting user.
func (s *service) UserFromToken(ctx context.Context, token string) (*models.User, error) {
	tok, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}
