package router

import (
	"net/http"

	"github.com/Adham-Emam/Forge-Api/internal/auth"
	"github.com/Adham-Emam/Forge-Api/internal/bids"
	"github.com/Adham-Emam/Forge-Api/internal/ledger"
	"github.com/Adham-Emam/Forge-Api/internal/middleware"
	"github.com/Adham-Emam/Forge-Api/internal/notify"
	"github.com/Adham-Emam/Forge-Api/internal/projects"
	"github.com/Adham-Emam/Forge-Api/internal/users"
)

// Handlers collects the per-domain HTTP handlers the router wires up.
type Handlers struct {
	Auth     *auth.Handler
	Projects *projects.Handler
	Bids     *bids.Handler
	Users    *users.Handler
	Ledger   *ledger.Handler
	Notify   *notify.Handler
}

// New returns an http.Handler serving the API under /api/v1. Routes
// other than auth, the public catalog reads, and the newsletter pair
// require a valid bearer token.
func New(h Handlers, validator middleware.TokenValidator) http.Handler {
	authRequired := middleware.JWTAuth(validator)
	protect := func(fn http.HandlerFunc) http.Handler {
		return authRequired(fn)
	}

	mux := http.NewServeMux()
	base := "/api/v1"

	mux.HandleFunc("POST "+base+"/auth/register", h.Auth.Register)
	mux.HandleFunc("POST "+base+"/auth/login", h.Auth.Login)

	mux.HandleFunc("GET "+base+"/projects", h.Projects.List)
	mux.Handle("POST "+base+"/projects", protect(h.Projects.Create))
	mux.Handle("GET "+base+"/projects/matches", protect(h.Projects.Matches))
	mux.Handle("GET "+base+"/projects/saved", protect(h.Projects.Saved))
	mux.Handle("GET "+base+"/projects/mine", protect(h.Projects.Mine))
	mux.HandleFunc("GET "+base+"/projects/{id}", h.Projects.Get)
	mux.Handle("PUT "+base+"/projects/{id}", protect(h.Projects.Update))
	mux.Handle("DELETE "+base+"/projects/{id}", protect(h.Projects.Delete))
	mux.Handle("POST "+base+"/projects/{id}/save", protect(h.Projects.ToggleSaved))

	mux.HandleFunc("GET "+base+"/projects/{id}/bids", h.Bids.ListByProject)
	mux.Handle("POST "+base+"/projects/{id}/bids", protect(h.Bids.Place))
	mux.Handle("GET "+base+"/bids/mine", protect(h.Bids.ListMine))

	mux.Handle("GET "+base+"/users/me", protect(h.Users.Me))
	mux.Handle("PATCH "+base+"/users/me", protect(h.Users.UpdateMe))
	mux.Handle("DELETE "+base+"/users/me", protect(h.Users.DeleteMe))
	mux.HandleFunc("POST "+base+"/users/lookup", h.Users.UsernameByEmail)
	mux.Handle("GET "+base+"/users/{id}", protect(h.Users.Get))
	mux.Handle("GET "+base+"/contacts", protect(h.Users.Contacts))
	mux.Handle("GET "+base+"/messages", protect(h.Users.Conversation))
	mux.Handle("POST "+base+"/messages", protect(h.Users.SendMessage))

	mux.Handle("GET "+base+"/transactions", protect(h.Ledger.List))
	mux.Handle("GET "+base+"/notifications", protect(h.Notify.List))
	mux.Handle("POST "+base+"/notifications/{id}/read", protect(h.Notify.MarkRead))
	mux.HandleFunc("POST "+base+"/subscribe", h.Notify.Subscribe)
	mux.HandleFunc("DELETE "+base+"/subscribe", h.Notify.Unsubscribe)

	return mux
}
