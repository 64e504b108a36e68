package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cpf-signin/internal/customer"
	"cpf-signin/internal/identity"
	"cpf-signin/internal/observability"
	"cpf-signin/internal/signin"
)

type Options struct {
	LoadDotEnv bool
}

type Config struct {
	UserPoolID     string
	ClientID       string
	ClientSecret   string
	BackendURL     string
	SharedPassword string
	Cognito        identity.CognitoConfig
	SentryDSN      string
	Environment    string
	Release        string
	LogLevel       string
	RateLimitMax   int
	RateLimitWin   time.Duration
}

type Runtime struct {
	Handler http.Handler
	SignIn  *signin.Handler
	Logger  *observability.Logger
	Close   func() error
}

// LoadConfig reads the environment once; the result is not modified afterwards.
func LoadConfig() (Config, error) {
	cfg := Config{
		ClientSecret: strings.TrimSpace(os.Getenv("CLIENT_SECRET")),
		Cognito: identity.CognitoConfig{
			Region:          strings.TrimSpace(os.Getenv("AWS_REGION")),
			Endpoint:        strings.TrimSpace(os.Getenv("COGNITO_ENDPOINT")),
			AccessKeyID:     strings.TrimSpace(os.Getenv("COGNITO_ACCESS_KEY_ID")),
			SecretAccessKey: strings.TrimSpace(os.Getenv("COGNITO_SECRET_ACCESS_KEY")),
		},
		SentryDSN:    os.Getenv("SENTRY_DSN"),
		Environment:  envOrDefault("APP_ENV", "development"),
		Release:      strings.TrimSpace(os.Getenv("APP_RELEASE")),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		RateLimitMax: envIntOrDefault("LOGIN_RATE_LIMIT_MAX", 10),
		RateLimitWin: envSecondsOrDefault("LOGIN_RATE_LIMIT_WINDOW_SECONDS", 60),
	}

	var err error
	if cfg.UserPoolID, err = mustEnv("USER_POOL_ID"); err != nil {
		return Config{}, err
	}
	if cfg.ClientID, err = mustEnv("CLIENT_ID"); err != nil {
		return Config{}, err
	}
	if cfg.BackendURL, err = mustEnv("BACKEND_URL"); err != nil {
		return Config{}, err
	}
	// Not trimmed: the password is used verbatim.
	if cfg.SharedPassword = os.Getenv("SHARED_PASSWORD"); cfg.SharedPassword == "" {
		return Config{}, fmt.Errorf("missing required env: SHARED_PASSWORD")
	}

	return cfg, nil
}

func Build(options Options) (*Runtime, error) {
	if options.LoadDotEnv {
		_ = godotenv.Load()
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	return BuildWithConfig(context.Background(), cfg)
}

func BuildWithConfig(ctx context.Context, cfg Config) (*Runtime, error) {
	logger := observability.NewLogger()
	logger.SetLevel(cfg.LogLevel)

	if err := observability.InitSentry(observability.SentryConfig{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
	}); err != nil {
		logger.Error("init_sentry_failed", map[string]any{"error": err.Error()})
	}

	cognito, err := identity.NewCognitoClient(ctx, cfg.Cognito)
	if err != nil {
		return nil, fmt.Errorf("init cognito client: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	signInHandler := signin.NewHandler(
		customer.NewDirectory(cfg.BackendURL, &http.Client{}),
		identity.NewProvisioner(cognito, cfg.UserPoolID, cfg.SharedPassword),
		identity.NewExchanger(cognito, cfg.ClientID, cfg.ClientSecret, cfg.SharedPassword).WithLogger(logger),
		logger,
		metrics,
	)

	limiter := signin.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWin)

	mux := http.NewServeMux()
	mux.Handle("POST /auth/signin", limiter.Middleware(signInHandler))
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	handler := observability.RequestIDMiddleware(
		observability.RecoverMiddleware(logger, observability.RequestLoggingMiddleware(logger, mux)),
	)

	return &Runtime{
		Handler: handler,
		SignIn:  signInHandler,
		Logger:  logger,
		Close: func() error {
			observability.FlushSentry()
			return nil
		},
	}, nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

func mustEnv(name string) (string, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return "", fmt.Errorf("missing required env: %s", name)
	}
	return value, nil
}

func envOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envIntOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envSecondsOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Second
}
