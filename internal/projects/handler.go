package projects

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/Adham-Emam/Forge-Api/internal/catalog"
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

// paramsFromQuery maps the filter query string onto the catalog's
// raw parameter set.
func paramsFromQuery(q url.Values) catalog.Params {
	return catalog.Params{
		Search:          q.Get("search"),
		ProjectType:     q.Get("project_type"),
		ExperienceLevel: q.Get("experience_level"),
		Budget:          q.Get("budget"),
		Country:         q.Get("country"),
		Proposals:       q.Get("proposals"),
		ProjectLength:   q.Get("project_length"),
		ClientHistory:   q.Get("client_history"),
	}
}

// List handles GET /api/v1/projects with the filter query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), paramsFromQuery(r.URL.Query()))
	if err != nil {
		h.log.Error("list projects", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeItems(w, list)
}

// Matches handles GET /api/v1/projects/matches.
func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.svc.Matches(r.Context(), user, paramsFromQuery(r.URL.Query()))
	if err != nil {
		h.log.Error("match projects", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeItems(w, list)
}

// Saved handles GET /api/v1/projects/saved.
func (h *Handler) Saved(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.svc.Saved(r.Context(), user.ID, paramsFromQuery(r.URL.Query()))
	if err != nil {
		h.log.Error("list saved projects", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeItems(w, list)
}

// Mine handles GET /api/v1/projects/mine?view=....
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.svc.OwnerView(r.Context(), user.ID, r.URL.Query().Get("view"))
	if err != nil {
		h.log.Error("list own projects", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeItems(w, list)
}

// ToggleSaved handles POST /api/v1/projects/{id}/save.
func (h *Handler) ToggleSaved(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	action, err := h.svc.ToggleSaved(r.Context(), user.ID, projectID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			jsonError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("toggle saved project", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": action})
}

type projectRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	SkillsNeeded    []string   `json:"skills_needed"`
	Budget          int        `json:"budget"`
	Duration        int        `json:"duration"`
	BidAmount       int        `json:"bid_amount"`
	Status          string     `json:"status,omitempty"`
	Type            string     `json:"type"`
	ExchangeFor     *string    `json:"exchange_for,omitempty"`
	ExperienceLevel *string    `json:"experience_level,omitempty"`
	AssignedTo      *uuid.UUID `json:"assigned_to,omitempty"`
}

// Create handles POST /api/v1/projects.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	p, err := h.svc.Create(r.Context(), user, CreateInput{
		Title:           req.Title,
		Description:     req.Description,
		SkillsNeeded:    req.SkillsNeeded,
		Budget:          req.Budget,
		Duration:        req.Duration,
		BidAmount:       req.BidAmount,
		Type:            req.Type,
		ExchangeFor:     req.ExchangeFor,
		ExperienceLevel: req.ExperienceLevel,
	})
	if err != nil {
		h.writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Get handles GET /api/v1/projects/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	it, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			jsonError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("get project", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// Update handles PUT /api/v1/projects/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	p, err := h.svc.Update(r.Context(), user, id, UpdateInput{
		Title:           req.Title,
		Description:     req.Description,
		SkillsNeeded:    req.SkillsNeeded,
		Budget:          req.Budget,
		Duration:        req.Duration,
		BidAmount:       req.BidAmount,
		Status:          req.Status,
		Type:            req.Type,
		ExchangeFor:     req.ExchangeFor,
		ExperienceLevel: req.ExperienceLevel,
		AssignedTo:      req.AssignedTo,
	})
	if err != nil {
		h.writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/v1/projects/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	if err := h.svc.Delete(r.Context(), user, id); err != nil {
		h.writeProjectError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeProjectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotOwner):
		jsonError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrDuplicateTitle):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrInvalidExperience),
		errors.Is(err, ErrBudgetNotPositive),
		errors.Is(err, ErrDurationOutOfRange),
		errors.Is(err, ErrBidAmountOutOfRange),
		errors.Is(err, ErrInsufficientEmbers):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("project operation", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeItems(w http.ResponseWriter, list []*repository.ProjectListItem) {
	if list == nil {
		list = []*repository.ProjectListItem{}
	}
	writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
