package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tasktab/internal/tasktab/service"
	"github.com/aussiebroadwan/tasktab/internal/tasktab/store"
	"github.com/aussiebroadwan/tasktab/pkg/httpx"
	"github.com/aussiebroadwan/tasktab/pkg/jwtx"
	"github.com/aussiebroadwan/tasktab/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	AuthService *service.AuthService
	TaskService *service.TaskService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTasks()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	handler := &AuthHandler{AuthService: r.AuthService}

	// Credential endpoints sit behind the strict per-IP limit to slow
	// down password guessing and bulk account creation.
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(http.HandlerFunc(handler.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(handler.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
}

func (r *Router) registerTasks() {
	handler := &TasksHandler{TaskService: r.TaskService}

	authed := func(h http.HandlerFunc) http.Handler {
		return httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("POST /api/tasks", authed(handler.HandleCreate))
	r.Mux.Handle("GET /api/tasks", authed(handler.HandleList))
	r.Mux.Handle("PUT /api/tasks/{id}", authed(handler.HandleUpdate))
	r.Mux.Handle("DELETE /api/tasks/{id}", authed(handler.HandleDelete))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
	r.Mux.Handle("GET /api/health", LivezHandler(r.startTime, r.buildVersion))
}
