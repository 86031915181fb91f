package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	courtcontroller "arena/internal/court/controller"
	"arena/internal/health"
	productcontroller "arena/internal/product/controller"
	reportcontroller "arena/internal/report/controller"
	stockcontroller "arena/internal/stock/controller"
	tabcontroller "arena/internal/tab/controller"
)

type Controllers struct {
	Health    *health.Controller
	Courts    *courtcontroller.CourtController
	Tabs      *tabcontroller.TabController
	Products  *productcontroller.ProductController
	Movements *stockcontroller.MovementController
	Reports   *reportcontroller.ReportController
}

func NewRouter(c Controllers, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:       []string{"Accept", "Content-Type"},
		MaxAge:               300,
		OptionsSuccessStatus: http.StatusNoContent,
	}))

	r.Get("/health", c.Health.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/db", c.Health.Database)

		r.Get("/quadras", c.Courts.ListCourts)
		r.Get("/agendamentos", c.Courts.ListBookings)
		r.Post("/agendamentos", c.Courts.CreateBooking)
		r.Delete("/agendamentos/{id}", c.Courts.CancelBooking)

		r.Route("/comandas", func(r chi.Router) {
			r.Get("/", c.Tabs.List)
			r.Post("/", c.Tabs.Open)
			r.Get("/proximo-numero", c.Tabs.NextNumber)
			r.Get("/{id}", c.Tabs.Get)
			r.Patch("/{id}", c.Tabs.ChangeStatus)
			r.Post("/{id}/itens", c.Tabs.AddItem)
			r.Delete("/{id}/itens/{itemId}", c.Tabs.RemoveItem)
		})

		r.Route("/produtos", func(r chi.Router) {
			r.Get("/", c.Products.List)
			r.Post("/", c.Products.Create)
			r.Get("/{id}", c.Products.Get)
			r.Patch("/{id}", c.Products.Patch)
		})

		r.Get("/movimentacoes", c.Movements.List)
		r.Post("/movimentacoes", c.Movements.Record)

		r.Get("/relatorios/financeiro", c.Reports.Financial)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
