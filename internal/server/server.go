package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dailyyield/apiserver/config"
	"github.com/dailyyield/apiserver/internal/db"
	"github.com/dailyyield/apiserver/internal/events"
	"github.com/dailyyield/apiserver/internal/handlers"
	"github.com/dailyyield/apiserver/internal/mq"
	"github.com/dailyyield/apiserver/internal/scheduler"
	"github.com/dailyyield/apiserver/internal/services"
	"github.com/dailyyield/apiserver/internal/storage"
	"github.com/dailyyield/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const limiterCleanupInterval = 10 * time.Minute

// Server wraps the HTTP server, its router and the resources it owns.
type Server struct {
	httpServer  *http.Server
	router      *chi.Mux
	db          *sql.DB
	mq          *mq.MQ
	storage     *storage.Storage
	scheduler   *scheduler.Scheduler
	limiterStop chan struct{}
	logger      logrus.FieldLogger
}

// New opens every configured backend and wires the API on top of them.
func New(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (*Server, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		db:          dbConn,
		limiterStop: make(chan struct{}),
		logger:      logger,
	}

	s.mq, err = mq.Open(ctx, cfg.MQ)
	if err != nil {
		s.closeResources()
		return nil, fmt.Errorf("open mq: %w", err)
	}
	s.storage, err = storage.Open(ctx, cfg.Storage)
	if err != nil {
		s.closeResources()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	// Typed nil pointers must not leak into the interfaces below.
	var publisher services.EventPublisher
	if s.mq != nil {
		publisher = events.NewPublisher(s.mq, cfg.MQ.Channel, logger)
	}
	var uploader services.ReportUploader
	if s.storage != nil {
		uploader = s.storage
	}

	svc := NewServices(cfg, Repositories{
		Users:     store.NewUserRepository(dbConn),
		Packages:  store.NewPackageRepository(dbConn),
		Purchases: store.NewPurchaseRepository(dbConn),
	}, publisher, uploader, logger)

	if cfg.Accrual.Enabled {
		s.scheduler, err = scheduler.New(cfg.Accrual, svc.Wallets, logger)
		if err != nil {
			s.closeResources()
			return nil, err
		}
	}

	limiter := handlers.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)
	limiter.StartCleanup(limiterCleanupInterval, s.limiterStop)
	s.router = NewRouter(cfg, svc, limiter, logger)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start launches the accrual scheduler and serves HTTP until Shutdown.
func (s *Server) Start() error {
	if s.scheduler != nil {
		s.scheduler.Start()
	}
	s.logger.WithField("addr", s.httpServer.Addr).Info("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and the running accrual, then releases
// the backends.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if s.scheduler != nil {
		if err := s.scheduler.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("scheduler stop: %w", err))
		}
	}
	errs = append(errs, s.closeResources())
	return errors.Join(errs...)
}

func (s *Server) closeResources() error {
	var errs []error
	select {
	case <-s.limiterStop:
	default:
		close(s.limiterStop)
	}
	if s.mq != nil {
		if err := s.mq.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close mq: %w", err))
		}
	}
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	return errors.Join(errs...)
}
