package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cableflow/cableflow-backend/api/controllers"
	cablecontrollers "github.com/cableflow/cableflow-backend/api/controllers/cables"
	cartcontrollers "github.com/cableflow/cableflow-backend/api/controllers/cart"
	ordercontrollers "github.com/cableflow/cableflow-backend/api/controllers/orders"
	"github.com/cableflow/cableflow-backend/api/middleware"
	"github.com/cableflow/cableflow-backend/internal/cables"
	"github.com/cableflow/cableflow-backend/internal/cart"
	checkoutsvc "github.com/cableflow/cableflow-backend/internal/checkout"
	"github.com/cableflow/cableflow-backend/internal/orders"
	"github.com/cableflow/cableflow-backend/internal/projects"
	"github.com/cableflow/cableflow-backend/internal/users"
	"github.com/cableflow/cableflow-backend/pkg/config"
	"github.com/cableflow/cableflow-backend/pkg/enums"
	"github.com/cableflow/cableflow-backend/pkg/logger"
	"github.com/cableflow/cableflow-backend/pkg/metrics"
	"github.com/cableflow/cableflow-backend/pkg/redis"
)

// Dependencies are the services and stores the API is built from.
type Dependencies struct {
	DB      controllers.Pinger
	Redis   controllers.Pinger
	Storage controllers.Pinger

	Revocations redis.RevocationStore
	Idempotency redis.IdempotencyStore
	RateLimiter middleware.RateLimiterStore

	Users    users.Service
	Cables   cables.Service
	Cart     cart.Service
	Checkout checkoutsvc.Service
	Orders   orders.Service
	Projects projects.Service

	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.Origins()),
		deps.Metrics.Middleware,
	)

	quotePolicy := middleware.NewRateLimitPolicy("quote", cfg.Quotes.RequestWindow, cfg.Quotes.RequestLimit)
	maxUpload := cfg.Files.MaxUploadBytes()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":      deps.DB,
			"redis":   deps.Redis,
			"storage": deps.Storage,
		}))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Revocations, deps.Users, logg))
		r.Use(middleware.Idempotency(deps.Idempotency, logg))

		r.Route("/cables", func(r chi.Router) {
			r.Get("/", cablecontrollers.List(deps.Cables, logg))
			r.With(middleware.RateLimit(quotePolicy, deps.RateLimiter, logg)).
				Post("/", cablecontrollers.Create(deps.Cables, maxUpload, logg))
			r.Get("/{cableId}", cablecontrollers.Detail(deps.Cables, logg))
			r.Delete("/{cableId}", cablecontrollers.Delete(deps.Cables, logg))
			r.Post("/{cableId}/requote", cablecontrollers.Requote(deps.Cables, logg))
			r.Get("/{cableId}/files/{kind}", cablecontrollers.File(deps.Cables, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(deps.Cart, logg))
			r.Post("/", cartcontrollers.CartAdd(deps.Cart, logg))
			r.Get("/count", cartcontrollers.CartCount(deps.Cart, logg))
			r.Delete("/{itemId}", cartcontrollers.CartRemove(deps.Cart, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(deps.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", controllers.ProjectList(deps.Projects, logg))
			r.Post("/", controllers.ProjectCreate(deps.Projects, logg))
			r.Put("/{projectId}", controllers.ProjectUpdate(deps.Projects, logg))
			r.Delete("/{projectId}", controllers.ProjectDelete(deps.Projects, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", controllers.UserMe(deps.Users, logg))
			r.Put("/me", controllers.UserUpdateMe(deps.Users, logg))
			r.Post("/logout", controllers.UserLogout(deps.Users, logg))
			r.With(middleware.RequireRole(enums.UserRoleAdmin, logg)).Get("/", controllers.UserList(deps.Users, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
			r.Post("/cables/{cableId}/quote", cablecontrollers.AdminPublishQuote(deps.Cables, logg))
			r.Post("/cables/{cableId}/status", cablecontrollers.AdminSetStatus(deps.Cables, logg))
			r.Put("/cables/{cableId}/files/{kind}", cablecontrollers.AdminReviseFile(deps.Cables, maxUpload, logg))
		})
	})

	return r
}
