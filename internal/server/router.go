package server

import (
	"net/http"

	"github.com/dailyyield/apiserver/config"
	"github.com/dailyyield/apiserver/internal/handlers"
	"github.com/dailyyield/apiserver/internal/logging"
	"github.com/dailyyield/apiserver/internal/metrics"
	"github.com/dailyyield/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// Repositories are the persistence backends the services run on.
type Repositories struct {
	Users     services.UserRepository
	Packages  services.PackageRepository
	Purchases services.PurchaseRepository
}

// Services is the set of use-cases exposed over HTTP and the CLI.
type Services struct {
	Tokens    *services.TokenIssuer
	Users     *services.UserService
	Packages  *services.PackageService
	Purchases *services.PurchaseService
	Wallets   *services.WalletService
	Reports   *services.ReportService
}

// NewServices builds the services. publisher and uploader may be nil.
func NewServices(
	cfg config.Config,
	repos Repositories,
	publisher services.EventPublisher,
	uploader services.ReportUploader,
	logger logrus.FieldLogger,
) Services {
	tokens := services.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	return Services{
		Tokens:    tokens,
		Users:     services.NewUserService(repos.Users, tokens, cfg.Signup, logger),
		Packages:  services.NewPackageService(repos.Packages),
		Purchases: services.NewPurchaseService(repos.Purchases, publisher, logger),
		Wallets:   services.NewWalletService(repos.Purchases, repos.Users, publisher, logger),
		Reports:   services.NewReportService(repos.Purchases, uploader, logger),
	}
}

// NewRouter mounts every route with the shared middleware stack. limiter may
// be nil to disable throttling of signup and login.
func NewRouter(cfg config.Config, svc Services, limiter *handlers.RateLimiter, logger logrus.FieldLogger) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.RequestLogger(logger),
		middleware.Recoverer,
	)
	if cfg.Metrics.Enabled {
		router.Use(metrics.InstrumentHandler)
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if cfg.Server.RequestTimeout > 0 {
		router.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}

	router.Get("/healthz", handlers.Healthz)
	if cfg.Metrics.Enabled {
		router.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	var limit func(http.Handler) http.Handler
	if limiter != nil {
		limit = limiter.Handler
	}
	authMiddleware := handlers.RequireAuth(svc.Tokens)

	handlers.AuthRouter(router, svc.Users, limit, logger)
	handlers.UserRouter(router, svc.Users, authMiddleware, logger)
	handlers.PackageRouter(router, svc.Packages, svc.Purchases, authMiddleware, logger)
	handlers.AdminRouter(router, handlers.AdminServices{
		Users:     svc.Users,
		Packages:  svc.Packages,
		Purchases: svc.Purchases,
		Wallets:   svc.Wallets,
		Reports:   svc.Reports,
	}, authMiddleware, logger)

	return router
}
