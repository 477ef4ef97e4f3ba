package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"shopauth/internal/config"
	"shopauth/internal/eventlog"
	"shopauth/internal/observability/logging"
	"shopauth/internal/observability/metrics"
	obsmw "shopauth/internal/observability/middleware"
	impl "shopauth/internal/service/impl"
	"shopauth/internal/store"
	httpx "shopauth/internal/transport/http"
	"shopauth/pkg/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "shopauth",
		Environment: env,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	cfg := config.Load()
	metrics.MustRegister("shopauth")

	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		logger.Error("auto migrate", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)
	events := eventlog.New(st, logger)

	verifier := impl.NewSecureVerifier()
	repair := impl.NewRepairService(st, events)
	recovery := impl.NewRecoveryEngine(repair, events,
		impl.KnownBadOverride{
			HashDigest:     cfg.KnownBadHashSHA256,
			PasswordDigest: cfg.KnownBadPasswordSHA256,
		},
		impl.EmergencyPolicy{
			AdminEmail:      cfg.EmergencyAdminEmail,
			PasswordDigests: cfg.EmergencyPasswordSHA256s,
		},
	)

	// No break-glass key means the gated recovery strategies stay
	// unreachable for the life of the process.
	var breakGlass *impl.BreakGlassVerifier
	if cfg.BreakGlassKey != "" {
		breakGlass, err = impl.NewBreakGlassVerifier([]byte(cfg.BreakGlassKey), cfg.BreakGlassIssuer, cfg.BreakGlassAudience, cfg.BreakGlassMaxTTL)
		if err != nil {
			logger.Error("break-glass verifier", "error", err)
			os.Exit(1)
		}
		logger.Warn("break-glass recovery gate is configured")
	}

	auth := impl.NewAuthServiceImpl(st, verifier, recovery, breakGlass, events, cfg.BcryptCost)

	router := httpx.NewRouter(auth, repair, httpx.RouterConfig{
		AdminToken:     cfg.AdminToken,
		LoginRateLimit: cfg.LoginRateLimit,
	})
	handler := obsmw.WithRequestID(router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("shopauth listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
