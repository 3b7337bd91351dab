package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tabsplit/tabsplit/internal/service"
)

// Server bundles the application services behind an HTTP router.
type Server struct {
	groups      *service.GroupService
	expenses    *service.ExpenseService
	settlements *service.SettlementService
	balances    *service.BalanceService
}

func New(
	groups *service.GroupService,
	expenses *service.ExpenseService,
	settlements *service.SettlementService,
	balances *service.BalanceService,
) *Server {
	return &Server{
		groups:      groups,
		expenses:    expenses,
		settlements: settlements,
		balances:    balances,
	}
}

// Router builds the chi router for the API.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/groups", func(r chi.Router) {
			r.Post("/", s.createGroup)
			r.Get("/", s.listGroups)
			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", s.getGroup)
				r.Put("/", s.updateGroup)
				r.Delete("/", s.deleteGroup)
				r.Post("/members", s.addMembers)

				r.Get("/expenses", s.listExpenses)
				r.Post("/expenses", s.createExpense)

				r.Get("/settlements", s.listSettlements)
				r.Post("/settlements", s.recordSettlement)
				r.Post("/settlements/suggest", s.suggestSettlement)

				r.Get("/balances", s.getBalances)
				r.Get("/balances/reconciled", s.getReconciledBalances)
			})
		})

		r.Route("/expenses/{expenseID}", func(r chi.Router) {
			r.Get("/", s.getExpense)
			r.Put("/", s.updateExpense)
			r.Delete("/", s.deleteExpense)
		})

		r.Route("/settlements/{settlementID}", func(r chi.Router) {
			r.Get("/", s.getSettlement)
			r.Delete("/", s.deleteSettlement)
		})
	})

	return router
}
