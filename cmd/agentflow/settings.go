package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/techwithparamesh/agentflow"
	"github.com/techwithparamesh/agentflow/internal/catalog"
	"github.com/techwithparamesh/agentflow/internal/config"
	"github.com/techwithparamesh/agentflow/internal/logging"
	"github.com/techwithparamesh/agentflow/internal/metrics"
	"github.com/techwithparamesh/agentflow/pkg/adapters/file"
	"github.com/techwithparamesh/agentflow/pkg/adapters/memory"
	"github.com/techwithparamesh/agentflow/pkg/adapters/redis"
	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/persistence/middleware"
	"github.com/techwithparamesh/agentflow/pkg/ports"
)

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		cfg.Log.Level = f.Value.String()
	}
	if f := cmd.Flags().Lookup("catalog"); f != nil && f.Changed {
		cfg.Catalog = f.Value.String()
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(level, format), nil
}

// env bundles what every command needs.
type env struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	ws      *agentflow.Workspace
	close   func() error
}

func newEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	reg, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, logger: logger, metrics: metrics.New(), close: func() error { return nil }}
	opts := []agentflow.Option{
		agentflow.WithRegistry(reg),
		agentflow.WithLogger(logger),
		agentflow.WithMetrics(e.metrics),
		agentflow.WithHistoryLimit(cfg.History.Limit),
	}
	if len(cfg.Auth.NeedsAuth) > 0 {
		opts = append(opts, agentflow.WithNeedsAuth(cfg.Auth.NeedsAuth...))
	}

	var store ports.FlowStore
	switch cfg.Store.Backend {
	case config.BackendFile:
		store = file.New(cfg.Store.Dir)
	case config.BackendRedis:
		rc := cfg.Store.Redis
		rs := redis.New(rc.Addr, rc.Password, rc.DB, redis.WithPrefix(rc.Prefix), redis.WithTTL(rc.TTL))
		store = rs
		opts = append(opts, agentflow.WithLocker(redis.NewLocker(rs.Client(), rc.Prefix)))
		e.close = rs.Close
	default:
		store = memory.NewStore()
	}
	mws, err := storeMiddleware(cfg.Store)
	if err != nil {
		_ = e.close()
		return nil, err
	}
	opts = append(opts, agentflow.WithStore(middleware.Chain(store, mws...)))

	ws, err := agentflow.New(opts...)
	if err != nil {
		return nil, err
	}
	e.ws = ws
	logger.Debug("workspace ready", "backend", cfg.Store.Backend, "catalog", cfg.Catalog)
	return e, nil
}

func storeMiddleware(sc config.StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(sc.Redact) > 0 {
		r, err := middleware.NewRedactor(sc.Redact...)
		if err != nil {
			return nil, err
		}
		mws = append(mws, middleware.NewRedactMiddleware(r))
	}
	if sc.Secrets.Key != "" {
		enc := middleware.EncryptionConfig{}
		key, err := middleware.DecodeKey(sc.Secrets.Key)
		if err != nil {
			return nil, fmt.Errorf("store.secrets.key: %w", err)
		}
		enc.ActiveKey = key
		for _, s := range sc.Secrets.PreviousKeys {
			k, err := middleware.DecodeKey(s)
			if err != nil {
				return nil, fmt.Errorf("store.secrets.previous_keys: %w", err)
			}
			enc.FallbackKeys = append(enc.FallbackKeys, k)
		}
		mw, err := middleware.NewSecretsMiddleware(enc)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return mws, nil
}

// readFlow loads a flow from a JSON file; "-" reads stdin.
func readFlow(cmd *cobra.Command, path string) (*domain.Flow, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return domain.DecodeFlow(data)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
