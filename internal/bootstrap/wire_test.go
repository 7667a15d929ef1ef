package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/lanehart/authd/internal/application/auth"
	"github.com/lanehart/authd/internal/config"
	"github.com/lanehart/authd/internal/infrastructure/memory"
	"github.com/lanehart/authd/internal/transport/http/router"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:                   "dev",
		HTTPAddr:              ":0",
		JWTSecret:             "test-secret",
		JWTIssuer:             "authd-test",
		AccessTokenTTL:        time.Hour,
		BcryptCost:            4,
		DBAddr:                "postgres://ignored",
		Notifier:              config.NotifierLog,
		HTTPReadTimeout:       10 * time.Second,
		HTTPWriteTimeout:      30 * time.Second,
		HTTPIdleTimeout:       time.Minute,
		VerifyEmailBaseURL:    "http://localhost:8080/api/v1/auth/verify-email/",
		PasswordResetBaseURL:  "http://localhost:3000/reset-password/",
		VerifyEmailTokenTTL:   24 * time.Hour,
		PasswordResetTokenTTL: 30 * time.Minute,
	}
}

func testDeps(t *testing.T, notifierClosed *bool) Deps {
	t.Helper()

	return Deps{
		LoadConfig: func() (*config.Config, error) { return testConfig(), nil },
		NewDB: func(ctx context.Context, dsn string) (*sql.DB, error) {
			db, _, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock: %v", err)
			}
			return db, nil
		},
		NewNotifier: func(cfg *config.Config) (auth.Notifier, func(), error) {
			return memory.NewLogNotifier(), func() {
				if notifierClosed != nil {
					*notifierClosed = true
				}
			}, nil
		},
		NewRouter: func(d router.Deps) (http.Handler, error) {
			return router.New(d), nil
		},
	}
}

func TestNewServerWithDeps_BuildsAndCleansUp(t *testing.T) {
	var notifierClosed bool
	srv, cleanup, err := NewServerWithDeps(testDeps(t, &notifierClosed))
	if err != nil {
		t.Fatalf("NewServerWithDeps: %v", err)
	}
	if srv == nil || srv.Handler == nil {
		t.Fatal("server or handler is nil")
	}
	if srv.ReadTimeout != 10*time.Second || srv.WriteTimeout != 30*time.Second {
		t.Fatalf("timeouts not applied: %v %v", srv.ReadTimeout, srv.WriteTimeout)
	}

	cleanup()
	if !notifierClosed {
		t.Fatal("cleanup did not close the notifier")
	}
}

type deadRedis struct{}

func (deadRedis) Ping(ctx context.Context) error { return errors.New("connection refused") }
func (deadRedis) Close() error                   { return nil }

func TestNewServerWithDeps_RedisDownInProdFails(t *testing.T) {
	deps := testDeps(t, nil)
	deps.LoadConfig = func() (*config.Config, error) {
		cfg := testConfig()
		cfg.Env = "prod"
		cfg.RedisAddr = "localhost:6379"
		return cfg, nil
	}
	deps.NewRedis = func(addr, pass string, db int) RedisClient { return deadRedis{} }

	if _, _, err := NewServerWithDeps(deps); err == nil {
		t.Fatal("expected startup failure when redis is unreachable in prod")
	}
}

func TestNewServerWithDeps_RedisDownInDevFallsBack(t *testing.T) {
	deps := testDeps(t, nil)
	deps.LoadConfig = func() (*config.Config, error) {
		cfg := testConfig()
		cfg.RedisAddr = "localhost:6379"
		return cfg, nil
	}
	deps.NewRedis = func(addr, pass string, db int) RedisClient { return deadRedis{} }

	srv, cleanup, err := NewServerWithDeps(deps)
	if err != nil {
		t.Fatalf("dev should fall back to memory stores: %v", err)
	}
	defer cleanup()
	if srv == nil {
		t.Fatal("no server built")
	}
}

func TestNewServerWithDeps_ConfigErrorPropagates(t *testing.T) {
	deps := testDeps(t, nil)
	deps.LoadConfig = func() (*config.Config, error) {
		return nil, errors.New("bad env")
	}
	if _, _, err := NewServerWithDeps(deps); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewServerWithDeps_DBErrorPropagates(t *testing.T) {
	deps := testDeps(t, nil)
	deps.NewDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
		return nil, errors.New("db down")
	}
	if _, _, err := NewServerWithDeps(deps); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewServerWithDeps_NotifierErrorAborts(t *testing.T) {
	deps := testDeps(t, nil)
	deps.NewNotifier = func(cfg *config.Config) (auth.Notifier, func(), error) {
		return nil, nil, errors.New("smtp misconfigured")
	}
	if _, _, err := NewServerWithDeps(deps); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewServerWithDeps_ServesHealthz(t *testing.T) {
	srv, cleanup, err := NewServerWithDeps(testDeps(t, nil))
	if err != nil {
		t.Fatalf("NewServerWithDeps: %v", err)
	}
	defer cleanup()

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}
