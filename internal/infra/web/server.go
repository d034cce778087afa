package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"isp-subscription-billing/internal/domain/ports"
	"isp-subscription-billing/internal/infra/logging"
	"isp-subscription-billing/internal/usecase"
)

// Server exposes the ops API: subscription lifecycle operations, the staff
// dashboard view, and metrics snapshots.
type Server struct {
	subUC   usecase.SubscriptionUseCase
	statsUC usecase.StatsUseCase
	pkgUC   usecase.PackageUseCase
	auth    *AuthManager
	clock   ports.Clock
	log     *zerolog.Logger
}

func NewServer(
	subUC usecase.SubscriptionUseCase,
	statsUC usecase.StatsUseCase,
	pkgUC usecase.PackageUseCase,
	auth *AuthManager,
	clock ports.Clock,
	logger *zerolog.Logger,
) *Server {
	webLog := logger.With().Str("component", "Web").Logger()
	return &Server{
		subUC:   subUC,
		statsUC: statsUC,
		pkgUC:   pkgUC,
		auth:    auth,
		clock:   clock,
		log:     &webLog,
	}
}

// Router builds the chi mux. The prometheus and health endpoints are open;
// everything under /api/v1 requires a staff token.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()
			if id := middleware.GetReqID(ctx); id != "" {
				ctx = logging.WithRequestID(ctx, id)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.auth.Middleware)

		r.Route("/subscriptions", func(r chi.Router) {
			r.Post("/", s.handleCreateSubscription)
			r.Put("/{id}", s.handleUpdateSubscription)
			r.Delete("/{id}", s.handleDeleteSubscription)
			r.Post("/{id}/renew", s.handleRenewSubscription)
			r.Post("/{id}/extend", s.handleExtendExpiry)
		})

		r.Route("/packages", func(r chi.Router) {
			r.Get("/", s.handleListPackages)
			r.Post("/", s.handleCreatePackage)
			r.Put("/{id}", s.handleUpdatePackage)
			r.Delete("/{id}", s.handleDeletePackage)
		})

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/users/{id}/payments", s.handleUserPayments)
		r.Get("/stats", s.handleStats)
	})

	return r
}
