package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"sweatpet/internal/config"
	"sweatpet/internal/engine"
	"sweatpet/internal/logging"
	"sweatpet/internal/store"
	"sweatpet/internal/watch"
)

type app struct {
	cfg    *config.Config
	log    *zap.Logger
	store  store.Store
	engine *engine.Engine
}

func (f *globalFlags) loadConfig() (*config.Config, error) {
	path := f.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if f.dataDir != "" {
		cfg.DataDir = f.dataDir
	}
	if f.backend != "" {
		cfg.Backend = f.backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp loads config, opens the store and loads the pet. logOutput
// overrides the configured log destination when set.
func openApp(ctx context.Context, f *globalFlags, logOutput string) (*app, func(), error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	log, err := logging.FromConfig(cfg, logOutput, f.verbose)
	if err != nil {
		return nil, nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		_ = log.Sync()
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	cleanup := func() {
		if err := st.Close(); err != nil {
			log.Error("close store", zap.Error(err))
		}
		_ = log.Sync()
	}

	eng := engine.New(st, engine.WithLocation(loc), engine.WithLogger(log))
	var saveErr *engine.SaveError
	if _, err := eng.Load(ctx); errors.As(err, &saveErr) {
		// the pet is usable; the next mutation retries the write
		log.Warn("initial save failed", zap.Error(err))
	} else if err != nil {
		cleanup()
		return nil, nil, err
	}

	log.Debug("pet loaded",
		zap.String("backend", cfg.Backend),
		zap.String("data_dir", cfg.DataDir),
		zap.String("timezone", loc.String()),
	)
	return &app{cfg: cfg, log: log, store: st, engine: eng}, cleanup, nil
}

// startWatcher reloads the engine when another process rewrites the file
// store. Returns a nil watcher for other backends or when disabled.
func (a *app) startWatcher(ctx context.Context) (*watch.Watcher, error) {
	fs, ok := a.store.(*store.FileStore)
	if !ok || !a.cfg.Watch.Enabled {
		return nil, nil
	}

	debounce, err := a.cfg.DebounceDuration()
	if err != nil {
		return nil, err
	}

	w, err := watch.New(fs.Dir(), engine.Keys(), debounce, func(ctx context.Context, keys []string) {
		a.log.Debug("store changed externally", zap.Strings("keys", keys))
		if err := a.engine.Reload(ctx); err != nil {
			a.log.Warn("reload after external change", zap.Error(err))
		}
	}, a.log)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return nil, err
	}
	return w, nil
}

func defaultExportPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return engine.ExportFileName
	}
	return filepath.Join(wd, engine.ExportFileName)
}
