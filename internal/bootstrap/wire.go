package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/lanehart/authd/internal/application/auth"
	"github.com/lanehart/authd/internal/audit"
	"github.com/lanehart/authd/internal/config"
	"github.com/lanehart/authd/internal/infrastructure/db/postgres"
	"github.com/lanehart/authd/internal/infrastructure/email"
	"github.com/lanehart/authd/internal/infrastructure/memory"
	"github.com/lanehart/authd/internal/infrastructure/messaging/rabbitmq"
	"github.com/lanehart/authd/internal/infrastructure/redis"
	"github.com/lanehart/authd/internal/infrastructure/security"
	"github.com/lanehart/authd/internal/logger"
	"github.com/lanehart/authd/internal/transport/http/handlers"
	"github.com/lanehart/authd/internal/transport/http/middleware"
	"github.com/lanehart/authd/internal/transport/http/response"
	"github.com/lanehart/authd/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing.
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(ctx context.Context, dsn string) (*sql.DB, error)

	NewRedis func(addr, password string, db int) RedisClient

	NewNotifier func(cfg *config.Config) (auth.Notifier, func(), error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

// Core bundles what the CLI needs without an HTTP server.
type Core struct {
	Cfg     *config.Config
	DB      *sql.DB
	Service *auth.Service
}

/*
========================
 Core bootstrap logic
========================
*/

// NewCore wires config, postgres, the notifier, and the auth service.
// Redis is skipped: CLI invocations are short-lived and one-time
// tokens issued from them would be useless anyway.
func NewCore(ctx context.Context) (*Core, func(), error) {
	deps := defaultDeps()

	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := deps.NewDB(ctx, cfg.DBAddr)
	if err != nil {
		return nil, nil, err
	}
	cleanupFns := []func(){func() { _ = db.Close() }}

	notifier, closeNotifier, err := deps.NewNotifier(cfg)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}
	cleanupFns = append(cleanupFns, closeNotifier)

	svc := buildService(cfg, postgres.NewUserRepo(db), memory.NewOneTimeTokenStore(), notifier)
	cleanup := func() { runCleanup(cleanupFns) }
	return &Core{Cfg: cfg, DB: db, Service: svc}, cleanup, nil
}

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 1) db
	db, err := deps.NewDB(context.Background(), cfg.DBAddr)
	if err != nil {
		return nil, nil, err
	}

	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	userRepo := postgres.NewUserRepo(db)

	// 2) redis. The in-memory fallback is dev-only: in-process tokens
	// do not survive restarts and cannot serve more than one replica,
	// so prod refuses to start without a reachable redis.
	var redisCli RedisClient
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := c.Ping(ctx); err != nil {
			_ = c.Close()
			if cfg.Env == "prod" {
				runCleanup(cleanupFns)
				return nil, nil, fmt.Errorf("redis unreachable at %s: %w", cfg.RedisAddr, err)
			}
			logger.Logger.Warn().Err(err).Msg("redis unavailable; in-memory fallbacks active")
		} else {
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 3) one-time token store
	var ottStore auth.OneTimeTokenStore
	if redisCli != nil {
		ottStore = redis.NewOneTimeTokenStore(redisCli.(*redis.Client))
	} else {
		ottStore = memory.NewOneTimeTokenStore()
	}

	// 4) notifier
	notifier, closeNotifier, err := deps.NewNotifier(cfg)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}
	cleanupFns = append(cleanupFns, closeNotifier)

	// 5) service
	authSvc := buildService(cfg, userRepo, ottStore, notifier)

	// 6) handlers + middleware
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer)
	authH := handlers.NewAuthHandler(authSvc)
	healthH := handlers.NewHealthHandler(db)

	routerDeps := router.Deps{
		Auth:             authH,
		Health:           healthH,
		RequireAuth:      middleware.RequireAuth(signer, authSvc, response.WriteError),
		RequireSuperuser: middleware.RequireSuperuser(response.WriteError),
	}
	if redisCli != nil {
		routerDeps.Limiter = redis.NewFixedWindowLimiter(redisCli.(*redis.Client))
	}

	// 7) router
	mux, err := deps.NewRouter(routerDeps)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

func buildService(cfg *config.Config, users auth.UserRepo, ott auth.OneTimeTokenStore, notifier auth.Notifier) *auth.Service {
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer)

	svc := auth.NewService(users, hasher, signer, ott, notifier, auth.Config{
		AccessTTL:             cfg.AccessTokenTTL,
		VerifyEmailBaseURL:    cfg.VerifyEmailBaseURL,
		PasswordResetBaseURL:  cfg.PasswordResetBaseURL,
		VerifyEmailTokenTTL:   cfg.VerifyEmailTokenTTL,
		PasswordResetTokenTTL: cfg.PasswordResetTokenTTL,
	})
	return svc.WithAudit(audit.New(logger.Logger).Event)
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewNotifier: newNotifier,
		NewRouter: func(d router.Deps) (http.Handler, error) {
			return router.New(d), nil
		},
	}
}

func newNotifier(cfg *config.Config) (auth.Notifier, func(), error) {
	switch cfg.Notifier {
	case config.NotifierRabbit:
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			if cfg.Env == "dev" {
				logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using log notifier")
				return memory.NewLogNotifier(), func() {}, nil
			}
			return nil, nil, err
		}
		return pub, func() { _ = pub.Close() }, nil
	case config.NotifierSMTP:
		sender := email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			Insecure: cfg.SMTP.Insecure,
		}, logger.Logger)
		return sender, func() {}, nil
	default:
		return memory.NewLogNotifier(), func() {}, nil
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
