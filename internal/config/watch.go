package config

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Watch loads the config at path, hands it to onUpdate, and then polls the
// file's modification time every interval, handing over each changed
// version that parses. It returns after the initial load; the polling runs
// until ctx is done.
func Watch(ctx context.Context, path string, interval time.Duration, logger zerolog.Logger, onUpdate func(*Config)) error {
	path = ResolvePath(path)
	if interval <= 0 {
		interval = 30 * time.Second
	}

	cfg, err := Load(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	onUpdate(cfg)

	w := &watcher{
		path:     path,
		lastMod:  info.ModTime(),
		onUpdate: onUpdate,
		logger:   logger.With().Str("component", "config").Str("path", path).Logger(),
	}
	go w.loop(ctx, interval)
	return nil
}

type watcher struct {
	path     string
	lastMod  time.Time
	onUpdate func(*Config)
	logger   zerolog.Logger
}

func (w *watcher) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *watcher) check() {
	info, err := os.Stat(w.path)
	if err != nil || !info.ModTime().After(w.lastMod) {
		return
	}
	cfg, err := Load(w.path)
	if err != nil {
		// keep the last good config, retry on the next change
		w.logger.Warn().Err(err).Msg("config reload failed")
		w.lastMod = info.ModTime()
		return
	}
	w.lastMod = info.ModTime()
	w.logger.Info().Msg("config reloaded")
	w.onUpdate(cfg)
}
