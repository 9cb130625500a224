package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/config"
	"github.com/abhisek/pathwise/internal/curriculum"
	"github.com/abhisek/pathwise/internal/generation"
	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/pipeline"
	"github.com/abhisek/pathwise/internal/remediation"
	"github.com/abhisek/pathwise/internal/store"
	"github.com/abhisek/pathwise/internal/store/redisstore"
	"github.com/abhisek/pathwise/internal/tutor"
)

// sessionStore is a session gateway that can also list and forget the
// learner's sessions.
type sessionStore interface {
	tutor.SessionGateway
	ListSessions(ctx context.Context) ([]curriculum.SessionInfo, error)
	DeleteSession(ctx context.Context, key string) (bool, error)
}

// deps holds everything a command needs. Close releases it.
type deps struct {
	cfg      config.Config
	user     string
	log      *logger.Logger
	db       *store.Store
	sessions sessionStore
	closers  []func() error
}

// openDeps loads configuration, the logger and the stores. The SQLite
// database always holds the LLM event log; sessions live in the backend
// the config selects.
func openDeps(cmd *cobra.Command) (*deps, error) {
	ctx := cmd.Context()

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if mode, _ := cmd.Flags().GetString("log-mode"); mode != "" {
		cfg.Log.Mode = mode
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.Path = p
	}
	user, _ := cmd.Flags().GetString("user")

	dbPath := cfg.Store.Path
	if dbPath == "" {
		if dbPath, err = store.DefaultDBPath(); err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	} else if err := store.EnsureDir(dbPath); err != nil {
		return nil, fmt.Errorf("create DB dir: %w", err)
	}

	logPath := cfg.Log.Output
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(dbPath), "pathwise.log")
	}
	log, err := logger.New(logger.Options{Mode: cfg.Log.Mode, Level: cfg.Log.Level, OutputPath: logPath})
	if err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg, user: user, log: log}

	db, err := store.Open(ctx, dbPath, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	d.db = db
	d.closers = append(d.closers, db.Close)

	switch cfg.Store.Backend {
	case config.BackendRedis:
		rc, err := redisstore.Open(ctx, cfg.Store.Redis.Options(), log)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		d.closers = append(d.closers, rc.Close)
		d.sessions = rc.Sessions(user)
	default:
		d.sessions = db.Sessions(user, cfg.Store.Retention)
	}

	log.Info("pathwise starting", "user_id", user, "backend", cfg.Store.Backend, "provider", cfg.LLM.Provider)
	return d, nil
}

// Close releases the stores and flushes the logger.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.log.Warn("close failed", "error", err)
		}
	}
	d.log.Sync()
}

// provider builds the LLM transport. The mock provider answers with fixed
// offline content so the whole flow runs without network access.
func (d *deps) provider(ctx context.Context) (llm.Provider, error) {
	if d.cfg.LLM.Provider == "mock" {
		return llm.WithLogging(generation.NewOfflineProvider(), d.db.Events(), d.log), nil
	}
	if err := d.cfg.LLM.Validate(); err != nil {
		return nil, err
	}
	return llm.NewProvider(ctx, d.cfg.LLM, d.db.Events(), d.log)
}

// service wires the gateway, pipeline and policy into a tutor service.
// Metrics are registered on the default registry that --metrics-addr
// serves, so it is called at most once per process.
func (d *deps) service(ctx context.Context) (*tutor.Service, error) {
	p, err := d.provider(ctx)
	if err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	gw := generation.NewLLMGateway(p, generation.DefaultConfig(), d.log)

	pl := pipeline.New(gw, pipeline.Config{TaskTimeout: d.cfg.Pipeline.TaskTimeout},
		pipeline.NewMetrics(prometheus.DefaultRegisterer), d.log)
	policy := remediation.New(gw, d.cfg.Remediation.Policy(),
		remediation.NewMetrics(prometheus.DefaultRegisterer), d.log)

	return tutor.NewService(gw, pl, policy, d.sessions,
		tutor.Options{UserID: d.user, HistoryLimit: d.cfg.Pipeline.HistoryLimit}, d.log), nil
}

// startMetricsServer serves /metrics until the command's context ends.
func startMetricsServer(cmd *cobra.Command) error {
	addr, _ := cmd.Flags().GetString("metrics-addr")
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	go func() {
		<-cmd.Context().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	// Surface an immediate bind failure.
	select {
	case err := <-errc:
		return fmt.Errorf("metrics server: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}
