package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"restoledger/internal/config"
	"restoledger/internal/http/handlers"
	middlewarex "restoledger/internal/http/middleware"
	"restoledger/internal/services/payouts"
	"restoledger/internal/store/repositories"
)

// RouterDependencies holds everything the HTTP layer wires together.
type RouterDependencies struct {
	Config     config.Cfg
	Store      repositories.Store
	EventCache handlers.EventCache
	Runner     *payouts.Runner
}

func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middlewarex.Prometheus())

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/processor/events", handlers.ProcessEvent(deps.Store, deps.EventCache))
		r.Get("/restaurants/{restaurantID}/balance", handlers.GetBalance(deps.Store))
		r.Post("/payouts/run", handlers.RunPayouts(deps.Runner))
		r.Get("/payouts/{payoutID}", handlers.GetPayout(deps.Store))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middlewarex.AdminAuth(deps.Config.Sec.AdminToken))
		r.Post("/payouts", handlers.AdminCreatePayout(deps.Store))
	})

	return r
}
