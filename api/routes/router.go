package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CodeX93/freshbox-backend/api/controllers"
	"github.com/CodeX93/freshbox-backend/api/middleware"
	"github.com/CodeX93/freshbox-backend/internal/cart"
	checkoutsvc "github.com/CodeX93/freshbox-backend/internal/checkout"
	"github.com/CodeX93/freshbox-backend/internal/coverage"
	"github.com/CodeX93/freshbox-backend/internal/orders"
	"github.com/CodeX93/freshbox-backend/internal/schedule"
	"github.com/CodeX93/freshbox-backend/internal/submission"
	"github.com/CodeX93/freshbox-backend/pkg/config"
	"github.com/CodeX93/freshbox-backend/pkg/db"
	"github.com/CodeX93/freshbox-backend/pkg/logger"
	"github.com/CodeX93/freshbox-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	matcher *coverage.Matcher,
	catalog *cart.Catalog,
	allocator *schedule.Allocator,
	checkoutService *checkoutsvc.Service,
	coordinator *submission.Coordinator,
	ordersService *orders.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/coverage", controllers.CoverageCheck(matcher, logg))
		r.Get("/services", controllers.ServicesList(catalog))

		r.Route("/schedule", func(r chi.Router) {
			r.Get("/dates", controllers.ScheduleDates(allocator, logg))
			r.Get("/slots", controllers.ScheduleSlots())
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/sessions", controllers.SessionStart(checkoutService, logg))

			r.Route("/sessions/{token}", func(r chi.Router) {
				r.Use(middleware.SessionContext(logg))
				r.Get("/", controllers.SessionFetch(checkoutService, logg))
				r.Post("/advance", controllers.SessionAdvance(checkoutService, logg))
				r.Post("/retreat", controllers.SessionRetreat(checkoutService, logg))
				r.Post("/pay", controllers.SessionPay(checkoutService, logg))
			})

			r.Get("/confirm", controllers.CheckoutConfirm(cfg.Checkout, coordinator, logg))
			r.With(middleware.SessionContext(logg)).
				Post("/confirm/{token}/retry", controllers.CheckoutRetry(coordinator, logg))
		})

		r.Get("/orders/{orderId}", controllers.OrderDetail(ordersService, logg))
	})

	return r
}
