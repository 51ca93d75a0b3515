package main

import (
	"github.com/fsnotify/fsnotify"

	"pkt.systems/pslog"
	"pkt.systems/zscale"
	"pkt.systems/zscale/internal/svcfields"
)

// watchConfig re-reads the config file on change and swaps the rebuilt
// snapshot into store. The MCP transport settings are not reloaded.
func (a *app) watchConfig(store *zscale.Store) {
	logger := svcfields.WithSubsystem(a.logger, "config.watch")
	a.v.OnConfigChange(func(e fsnotify.Event) {
		_ = a.reload(store, logger, e.Name)
	})
	a.v.WatchConfig()
	logger.Info("config.watch.start", "path", a.v.ConfigFileUsed())
}

func (a *app) reload(store *zscale.Store, logger pslog.Logger, path string) error {
	if err := store.Swap(a.config()); err != nil {
		logger.Warn("config.reload.rejected", "path", path, "error", err)
		return err
	}
	cfg := store.Config().Redacted()
	logger.Info("config.reload.applied",
		"path", path,
		"base_url", cfg.BaseURL,
		"default_project_key", cfg.DefaultProjectKey,
		"http_timeout", cfg.HTTPTimeout,
	)
	return nil
}
