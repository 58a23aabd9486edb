// Package users exposes the user directory: the profile, lookups, the
// contact list derived from assignments, and direct messages.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Adham-Emam/Forge-Api/internal/middleware"
	"github.com/Adham-Emam/Forge-Api/internal/models"
)

// UserStore is the repository subset the directory needs.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListContacts(ctx context.Context, userID uuid.UUID, search string) ([]*models.User, error)
}

// MessageStore persists direct messages.
type MessageStore interface {
	Create(ctx context.Context, m *models.Message) error
	ListConversation(ctx context.Context, userID, otherID uuid.UUID) ([]*models.Message, error)
}

type Handler struct {
	users    UserStore
	messages MessageStore
	log      *slog.Logger
}

func NewHandler(users UserStore, messages MessageStore, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{users: users, messages: messages, log: log}
}

// Me handles GET /api/v1/users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type profileRequest struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	UserTitle   *string    `json:"user_title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Gender      *string    `json:"gender,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	CountryCode *string    `json:"country_code,omitempty"`
	Country     *string    `json:"country,omitempty"`
	State       *string    `json:"state,omitempty"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Skills      []string   `json:"skills"`
	Interests   []string   `json:"interests"`
}

// UpdateMe handles PATCH /api/v1/users/me.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg, ok := validateProfile(&req); !ok {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	u := *user
	u.FirstName = req.FirstName
	u.LastName = req.LastName
	u.UserTitle = req.UserTitle
	u.Description = req.Description
	u.Gender = req.Gender
	u.Phone = req.Phone
	u.CountryCode = req.CountryCode
	u.Country = req.Country
	u.State = req.State
	u.BirthDate = req.BirthDate
	if req.Skills != nil {
		u.Skills = req.Skills
	}
	if req.Interests != nil {
		u.Interests = req.Interests
	}
	if err := h.users.UpdateProfile(r.Context(), &u); err != nil {
		h.log.Error("update profile", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, &u)
}

// validateProfile enforces the profile shape rules: a known gender
// value, non-empty skill and interest entries, and a birth date that is
// not in the future.
func validateProfile(req *profileRequest) (string, bool) {
	if req.Gender != nil {
		ok := false
		for _, g := range models.GenderOptions {
			if *req.Gender == g {
				ok = true
				break
			}
		}
		if !ok {
			return "gender must be one of: " + strings.Join(models.GenderOptions, ", "), false
		}
	}
	for _, s := range req.Skills {
		if strings.TrimSpace(s) == "" {
			return "skills must be non-empty strings", false
		}
	}
	for _, s := range req.Interests {
		if strings.TrimSpace(s) == "" {
			return "interests must be non-empty strings", false
		}
	}
	if req.BirthDate != nil && req.BirthDate.After(time.Now()) {
		return "birth date cannot be in the future", false
	}
	return "", true
}

// DeleteMe handles DELETE /api/v1/users/me.
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.users.Delete(r.Context(), user.ID); err != nil {
		h.log.Error("delete user", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /api/v1/users/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			jsonError(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error("get user", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type lookupRequest struct {
	Email string `json:"email"`
}

// UsernameByEmail handles POST /api/v1/users/lookup. Used by the
// password-reset flow on the client.
func (h *Handler) UsernameByEmail(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Email == "" {
		jsonError(w, http.StatusBadRequest, "email is required")
		return
	}
	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			jsonError(w, http.StatusNotFound, "no user with this email")
			return
		}
		h.log.Error("lookup user", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"username": u.Username})
}

// Contacts handles GET /api/v1/contacts?search=.
func (h *Handler) Contacts(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.users.ListContacts(r.Context(), user.ID, r.URL.Query().Get("search"))
	if err != nil {
		h.log.Error("list contacts", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []*models.User{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Conversation handles GET /api/v1/messages?with={id}.
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	otherID, err := uuid.Parse(r.URL.Query().Get("with"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "valid 'with' user id is required")
		return
	}
	list, err := h.messages.ListConversation(r.Context(), user.ID, otherID)
	if err != nil {
		h.log.Error("list conversation", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []*models.Message{}
	}
	writeJSON(w, http.StatusOK, list)
}

type sendMessageRequest struct {
	Receiver uuid.UUID `json:"receiver"`
	Message  string    `json:"message"`
}

// SendMessage handles POST /api/v1/messages.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Receiver == uuid.Nil || strings.TrimSpace(req.Message) == "" {
		jsonError(w, http.StatusBadRequest, "receiver and message are required")
		return
	}
	if _, err := h.users.GetByID(r.Context(), req.Receiver); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			jsonError(w, http.StatusNotFound, "receiver not found")
			return
		}
		h.log.Error("resolve receiver", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	m := &models.Message{
		ID:         uuid.New(),
		SenderID:   user.ID,
		ReceiverID: req.Receiver,
		Message:    req.Message,
	}
	if err := h.messages.Create(r.Context(), m); err != nil {
		h.log.Error("send message", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
