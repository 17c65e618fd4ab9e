package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/apexlabs/flyrank/internal/adapters/http/api"
	"github.com/apexlabs/flyrank/internal/adapters/mq/queue"
	"github.com/apexlabs/flyrank/internal/adapters/mq/worker"
	"github.com/apexlabs/flyrank/internal/adapters/repository"
	"github.com/apexlabs/flyrank/internal/adapters/steam"
	"github.com/apexlabs/flyrank/internal/app"
	"github.com/apexlabs/flyrank/internal/config"
	"github.com/apexlabs/flyrank/internal/domain/scoring"
	"github.com/apexlabs/flyrank/internal/registry"
	"github.com/apexlabs/flyrank/internal/scheduler"
	"github.com/apexlabs/flyrank/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
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

	source := steam.NewClient(
		steam.WithBaseURL(cfg.SteamBaseURL),
		steam.WithAppID(cfg.SteamAppID),
		steam.WithTimeout(time.Duration(cfg.RequestTimeoutSec)*time.Second),
		steam.WithRateLimit(rate.Limit(cfg.RequestRatePerSec), 1),
		steam.WithFetchWindow(cfg.MaxTrackedRank),
	)

	svc := app.New(
		app.WithLogger(log.Named("app")),
		app.WithSource(source),
		app.WithRegistry(registry.Default()),
		app.WithScorer(scoring.NewEngine(scoring.WithMaxTrackedRank(cfg.MaxTrackedRank))),
		app.WithLeaderCutoff(cfg.LeaderCutoff),
		app.WithStoreOpener(repository.OpenStore, cfg.DBDSN),
	)

	jobQueue := queue.NewInMemoryQueue(queue.WithCapacity(cfg.QueueSize))
	sched := scheduler.New(jobQueue, []scheduler.JobSpec{
		{Name: app.JobPeriodic, Every: time.Duration(cfg.UpdateFrequencyMin) * time.Minute},
		{Name: app.JobDaily, Every: time.Duration(cfg.DailyIntervalHours) * time.Hour},
	},
		scheduler.WithPollInterval(time.Duration(cfg.PollIntervalSec)*time.Second),
		scheduler.WithLogger(log.Named("scheduler")),
	)

	jobs := map[string]worker.Job{
		app.JobPeriodic: svc.RunPeriodic,
		app.JobDaily:    svc.RunDaily,
	}
	jobWorker := worker.New(jobQueue, jobs,
		worker.WithLogger(log.Named("worker")),
		worker.WithCompletionFunc(sched.Complete),
	)

	go sched.Run(ctx)
	go jobWorker.Run(ctx)

	// Operational HTTP surface: health, metrics, leaderboard, stats.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, cfg.LeaderCutoff)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	log.Info(ctx, "harvester running",
		logger.Int("update_frequency_min", cfg.UpdateFrequencyMin),
		logger.Int("poll_interval_sec", cfg.PollIntervalSec),
		logger.Int("courses", registry.Default().Len()),
	)

	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	_ = jobQueue.Close()
	if err := jobWorker.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "worker shutdown failed", logger.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "stopped")
}
