package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Adham-Emam/Forge-Api/internal/middleware"
	"github.com/Adham-Emam/Forge-Api/internal/models"
)

// NotificationReader is the repository subset the handler needs.
type NotificationReader interface {
	ListUnread(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (int64, error)
}

// SubscriberStore manages the newsletter list.
type SubscriberStore interface {
	Create(ctx context.Context, s *models.Subscriber) error
	DeleteByEmail(ctx context.Context, email string) (int64, error)
}

type Handler struct {
	notifications NotificationReader
	subscribers   SubscriberStore
	log           *slog.Logger
}

func NewHandler(notifications NotificationReader, subscribers SubscriberStore, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{notifications: notifications, subscribers: subscribers, log: log}
}

// List handles GET /api/v1/notifications — the acting user's unread
// notifications.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	list, err := h.notifications.ListUnread(r.Context(), user.ID)
	if err != nil {
		h.log.Error("list notifications", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}

// MarkRead handles POST /api/v1/notifications/{id}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid notification id"}`, http.StatusBadRequest)
		return
	}
	affected, err := h.notifications.MarkRead(r.Context(), user.ID, id)
	if err != nil {
		h.log.Error("mark notification read", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.Error(w, `{"error":"notification not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "notification marked as read"})
}

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe handles POST /api/v1/subscribe (public).
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		http.Error(w, `{"error":"email is required"}`, http.StatusBadRequest)
		return
	}
	sub := &models.Subscriber{ID: uuid.New(), Email: req.Email}
	if err := h.subscribers.Create(r.Context(), sub); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			http.Error(w, `{"error":"this email is already subscribed"}`, http.StatusBadRequest)
			return
		}
		h.log.Error("subscribe", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// Unsubscribe handles DELETE /api/v1/subscribe (public).
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		http.Error(w, `{"error":"email is required for unsubscribing"}`, http.StatusBadRequest)
		return
	}
	affected, err := h.subscribers.DeleteByEmail(r.Context(), req.Email)
	if err != nil {
		h.log.Error("unsubscribe", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if affected == 0 {
		http.Error(w, `{"error":"subscriber with this email not found"}`, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
