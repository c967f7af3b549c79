package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hireloop-ats/hireloop/internal/activity"
	"github.com/hireloop-ats/hireloop/internal/analytics"
	"github.com/hireloop-ats/hireloop/internal/auth"
	"github.com/hireloop-ats/hireloop/internal/candidates"
	"github.com/hireloop-ats/hireloop/internal/matches"
	"github.com/hireloop-ats/hireloop/internal/observability"
	"github.com/hireloop-ats/hireloop/internal/openings"
	"github.com/hireloop-ats/hireloop/internal/rbac"
	"github.com/hireloop-ats/hireloop/internal/realtime"
	"github.com/hireloop-ats/hireloop/internal/screening"
	"github.com/hireloop-ats/hireloop/internal/users"
	"github.com/hireloop-ats/hireloop/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	AuthService        *auth.Service
	AuthHandler        *auth.Handler
	CandidatesHandler  *candidates.Handler
	MatchesHandler     *matches.Handler
	OpeningsHandler    *openings.Handler
	ScreeningHandler   *screening.Handler
	AnalyticsHandler   *analytics.Handler
	ActivityHandler    *activity.Handler
	UsersHandler       *users.Handler
	PermissionsHandler *rbac.PermissionsHandler
	RealtimeHandler    *realtime.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Hireloop defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Auth:    params.AuthService,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.PermissionsHandler != nil {
			params.PermissionsHandler.MountRoutes(r)
		}
		if params.CandidatesHandler != nil {
			r.Route("/candidates", params.CandidatesHandler.MountRoutes)
			r.Route("/blacklist", params.CandidatesHandler.MountBlacklistRoutes)
			r.Route("/comments", params.CandidatesHandler.MountCommentRoutes)
			r.Route("/notes", params.CandidatesHandler.MountNoteRoutes)
		}
		if params.MatchesHandler != nil {
			r.Route("/match", params.MatchesHandler.MountRoutes)
		}
		if params.OpeningsHandler != nil {
			r.Route("/jobs", params.OpeningsHandler.MountRoutes)
		}
		if params.ScreeningHandler != nil {
			r.Route("/screening", params.ScreeningHandler.MountRoutes)
		}
		if params.AnalyticsHandler != nil {
			r.Route("/analytics", params.AnalyticsHandler.MountRoutes)
		}
		if params.ActivityHandler != nil {
			r.Route("/activity", params.ActivityHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/queue", params.JobHandler.MountRoutes)
		}
	})

	if params.RealtimeHandler != nil {
		r.Method(http.MethodGet, "/ws", params.RealtimeHandler)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
