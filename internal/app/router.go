package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/forecourt-hq/forecourt/internal/ap"
	"github.com/forecourt-hq/forecourt/internal/ar"
	"github.com/forecourt-hq/forecourt/internal/auth"
	"github.com/forecourt-hq/forecourt/internal/customers"
	"github.com/forecourt-hq/forecourt/internal/expenses"
	"github.com/forecourt-hq/forecourt/internal/inventory"
	"github.com/forecourt-hq/forecourt/internal/observability"
	"github.com/forecourt-hq/forecourt/internal/pos"
	"github.com/forecourt-hq/forecourt/internal/reports"
	"github.com/forecourt-hq/forecourt/internal/settings"
	"github.com/forecourt-hq/forecourt/internal/shared"
	"github.com/forecourt-hq/forecourt/internal/suppliers"
	"github.com/forecourt-hq/forecourt/internal/users"
	"github.com/forecourt-hq/forecourt/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthMiddleware auth.Middleware

	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	CustomersHandler *customers.Handler
	SuppliersHandler *suppliers.Handler
	POSHandler       *pos.Handler
	InventoryHandler *inventory.Handler
	ARHandler        *ar.Handler
	APHandler        *ap.Handler
	ExpensesHandler  *expenses.Handler
	ReportsHandler   *reports.Handler
	SettingsHandler  *settings.Handler
	JobsHandler      *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/auth", params.AuthHandler.MountRoutes)

	cashier := params.AuthMiddleware.RequireRole(auth.RoleCashier)
	manager := params.AuthMiddleware.RequireRole(auth.RoleManager)
	admin := params.AuthMiddleware.RequireRole(auth.RoleAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(cashier)
			r.Route("/pos", params.POSHandler.MountRoutes)
		})
		r.Group(func(r chi.Router) {
			r.Use(manager)
			r.Route("/customers", params.CustomersHandler.MountRoutes)
			r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
			r.Route("/inventory", params.InventoryHandler.MountRoutes)
			r.Route("/ar", params.ARHandler.MountRoutes)
			r.Route("/ap", params.APHandler.MountRoutes)
			r.Route("/expenses", params.ExpensesHandler.MountRoutes)
			r.Route("/reports", params.ReportsHandler.MountRoutes)
		})
		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Route("/users", params.UsersHandler.MountRoutes)
			r.Route("/settings", params.SettingsHandler.MountRoutes)
			if params.JobsHandler != nil {
				r.Route("/jobs", params.JobsHandler.MountRoutes)
			}
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
