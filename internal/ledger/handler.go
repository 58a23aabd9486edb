package ledger

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Adham-Emam/Forge-Api/internal/middleware"
	"github.com/Adham-Emam/Forge-Api/internal/models"
)

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// List handles GET /api/v1/transactions?type=received|payment — the
// acting user's ledger, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	list, err := h.svc.ListByUser(r.Context(), user.ID, r.URL.Query().Get("type"))
	if err != nil {
		h.log.Error("list transactions", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Transaction{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}
