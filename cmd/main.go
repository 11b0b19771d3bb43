package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/grindstone/internal/adapters/repository"
	app "github.com/okian/grindstone/internal/app"
	"github.com/okian/grindstone/internal/config"
	"github.com/okian/grindstone/internal/domain/types"
	"github.com/okian/grindstone/internal/histgen"
	"github.com/okian/grindstone/pkg/logger"
	"github.com/okian/grindstone/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second

	demoWeeks = 26
	demoSeed  = 42
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	opts := []app.Option{
		app.WithLogger(log),
		app.WithStatConfig(cfg.Stats),
		app.WithBodyweight(cfg.DefaultBodyweightKG),
		app.WithEventShardCount(cfg.EventShardCount),
	}
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Warn(ctx, "invalid timezone; falling back to local", logger.String("timezone", cfg.Timezone), logger.Error(err))
		} else {
			opts = append(opts, app.WithLocation(loc))
		}
	}
	if cfg.LedgerBackend == config.LedgerSQLite {
		ledger, err := repository.OpenSQLiteLedger(ctx, cfg.LedgerPath)
		if err != nil {
			os.Stderr.WriteString("failed to open sqlite ledger: " + err.Error() + "\n")
			return
		}
		opts = append(opts, app.WithLedger(ledger))
		log.Info(ctx, "using sqlite unlock ledger", logger.String("path", cfg.LedgerPath))
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start engine: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	runDemo(ctx, svc, log)

	// Ops endpoints only: the business surface is a library consumed by
	// the API layer, which owns routing and auth.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "starting ops server", logger.String("addr", cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("ops server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "ops server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "stopped")
}

// runDemo seeds deterministic histories and walks the engine operations
// once, so a fresh checkout produces visible output and metrics.
func runDemo(ctx context.Context, svc *app.Service, log logger.Logger) {
	profiles := []histgen.Profile{
		histgen.ProfileNovice,
		histgen.ProfileConsistent,
		histgen.ProfileStrength,
		histgen.ProfileEndurance,
	}
	now := time.Now()
	for i, profile := range profiles {
		userID := histgen.UserID(profile, i)
		events := histgen.Generate(userID, profile, demoWeeks, demoSeed+int64(i), now)
		fresh, err := svc.RecordWorkout(ctx, events...)
		if err != nil {
			log.Error(ctx, "seeding demo history failed", logger.String("user", userID), logger.Error(err))
			continue
		}

		sheet, err := svc.Stats(ctx, userID, 0)
		if err != nil {
			log.Error(ctx, "stats failed", logger.String("user", userID), logger.Error(err))
			continue
		}
		snap, err := svc.Tier(ctx, userID)
		if err != nil {
			log.Error(ctx, "tier failed", logger.String("user", userID), logger.Error(err))
			continue
		}
		quests, err := svc.Quests(ctx, userID, 1)
		if err != nil {
			log.Error(ctx, "quests failed", logger.String("user", userID), logger.Error(err))
			continue
		}
		completed := 0
		for _, q := range quests {
			if q.Status == types.QuestCompleted {
				completed++
				if res, err := svc.ClaimQuest(ctx, userID, q.ID); err == nil {
					log.Info(ctx, "claimed quest",
						logger.String("user", userID),
						logger.String("quest", q.ID),
						logger.String("outcome", string(res.Outcome)),
						logger.Int("xp", res.XP),
					)
				}
			}
		}
		log.Info(ctx, "demo user ready",
			logger.String("user", userID),
			logger.Int("events", len(events)),
			logger.Int("new_achievements", len(fresh)),
			logger.Float64("power", sheet.Power),
			logger.String("power_rank", string(sheet.PowerRank)),
			logger.String("tier", snap.Current),
			logger.Int("quests", len(quests)),
			logger.Int("quests_completed", completed),
		)
	}
}
