package bids

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Adham-Emam/Forge-Api/internal/middleware"
	"github.com/Adham-Emam/Forge-Api/internal/repository"
)

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

type placeRequest struct {
	Proposal *string `json:"proposal,omitempty"`
	Amount   int     `json:"amount"`
	Duration int     `json:"duration"`
}

// Place handles POST /api/v1/projects/{id}/bids.
func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid project id"}`, http.StatusBadRequest)
		return
	}
	var req placeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	bid, err := h.svc.Place(r.Context(), user, PlaceInput{
		ProjectID: projectID,
		Proposal:  req.Proposal,
		Amount:    req.Amount,
		Duration:  req.Duration,
	})
	if err != nil {
		h.writePlaceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bid)
}

func (h *Handler) writePlaceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProjectNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSelfBid):
		jsonError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrDuplicateBid):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInsufficientSparks),
		errors.Is(err, ErrDurationOutOfRange),
		errors.Is(err, ErrAmountNotPositive),
		errors.Is(err, ErrAmountExceedsBudget):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("place bid", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// ListByProject handles GET /api/v1/projects/{id}/bids.
func (h *Handler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, `{"error":"invalid project id"}`, http.StatusBadRequest)
		return
	}
	list, err := h.svc.ListByProject(r.Context(), projectID)
	if err != nil {
		h.log.Error("list project bids", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []*repository.BidListItem{}
	}
	writeJSON(w, http.StatusOK, list)
}

// ListMine handles GET /api/v1/bids/mine?view=open|in_progress|owner.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	list, err := h.svc.ListForUserView(r.Context(), user.ID, r.URL.Query().Get("view"))
	if err != nil {
		h.log.Error("list user bids", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []*repository.BidListItem{}
	}
	writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
