package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/comercia-pos/comercia-pos/internal/billing"
	"github.com/comercia-pos/comercia-pos/internal/catalog"
	"github.com/comercia-pos/comercia-pos/internal/dashboard"
	"github.com/comercia-pos/comercia-pos/internal/expense"
	"github.com/comercia-pos/comercia-pos/internal/loans"
	"github.com/comercia-pos/comercia-pos/internal/notify"
	"github.com/comercia-pos/comercia-pos/internal/partner"
	"github.com/comercia-pos/comercia-pos/internal/purchases"
	"github.com/comercia-pos/comercia-pos/internal/sales"
	"github.com/comercia-pos/comercia-pos/internal/trade"
	"github.com/comercia-pos/comercia-pos/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	CatalogHandler   *catalog.Handler
	PartnerHandler   *partner.Handler
	UsersHandler     *users.Handler
	SalesHandler     *sales.Handler
	PurchasesHandler *purchases.Handler
	LoansHandler     *loans.Handler
	TradeHandler     *trade.Handler
	ExpenseHandler   *expense.Handler
	BillingHandler   *billing.Handler
	DashboardHandler *dashboard.Handler
	NotifyHandler    *notify.Handler
}

// NewRouter constructs the chi.Router with Comercia defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.CatalogHandler != nil {
		params.CatalogHandler.MountRoutes(r)
	}
	if params.PartnerHandler != nil {
		params.PartnerHandler.MountRoutes(r)
	}
	if params.UsersHandler != nil {
		params.UsersHandler.MountRoutes(r)
	}
	if params.SalesHandler != nil {
		params.SalesHandler.MountRoutes(r)
	}
	if params.PurchasesHandler != nil {
		params.PurchasesHandler.MountRoutes(r)
	}
	if params.LoansHandler != nil {
		params.LoansHandler.MountRoutes(r)
	}
	if params.TradeHandler != nil {
		params.TradeHandler.MountRoutes(r)
	}
	if params.ExpenseHandler != nil {
		params.ExpenseHandler.MountRoutes(r)
	}
	if params.BillingHandler != nil {
		params.BillingHandler.MountRoutes(r)
	}
	if params.DashboardHandler != nil {
		params.DashboardHandler.MountRoutes(r)
	}
	if params.NotifyHandler != nil {
		params.NotifyHandler.MountRoutes(r)
	}

	return r
}
