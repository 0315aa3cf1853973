// Command sigwatch-demo keeps a YAML settings file in a reactive store and logs
// what pre, post and sync watchers see each time the file is saved.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/AnatoleLucet/sigwatch"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

func main() {
	path := flag.String("file", "settings.yaml", "YAML settings file to watch")
	verbose := flag.Bool("v", false, "log scheduler flushes")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	sigwatch.Configure(
		sigwatch.WithLogger(logger),
		sigwatch.WithErrorHandler(func(err *sigwatch.ReactionError) {
			logger.Error("watcher failed", "code", err.Code.String(), "error", err.Error())
		}),
	)

	if err := run(*path, logger); err != nil {
		logger.Error("demo failed", "error", err)
		os.Exit(1)
	}
}

func run(path string, logger *slog.Logger) error {
	settings := sigwatch.NewStore(nil)
	if err := load(path, settings); err != nil {
		return err
	}

	app := sigwatch.NewInstance("settings")
	defer app.Unmount()

	keys := sigwatch.Getter[[]string](settings.Keys)
	sigwatch.Watch(keys, func(value, previous []string, _ sigwatch.OnCleanup) {
		logger.Info("keys changed", "keys", value, "previous", previous)
	}, sigwatch.WithInstance(app))

	sigwatch.WatchStore(settings, func(s *sigwatch.Store, _ sigwatch.OnCleanup) {
		logger.Info("settings applied", "keys", s.Len())
	}, sigwatch.WithInstance(app), sigwatch.WithFlush(sigwatch.FlushPost))

	sigwatch.WatchSyncEffect(func(sigwatch.OnCleanup) {
		if lvl, ok := settings.Get("log_level"); ok {
			logger.Info("log level", "value", lvl)
		}
	}, sigwatch.WithInstance(app))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	// editors replace the file on save, the directory outlives it
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	logger.Info("watching settings", "path", path)

	for {
		select {
		case <-stop:
			logger.Info("shutting down")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if err := load(path, settings); err != nil {
				logger.Warn("reload failed", "path", path, "error", err)
				continue
			}
			sigwatch.Flush()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "error", err)
		}
	}
}

// load decodes path and applies it to settings in a single batch.
func load(path string, settings *sigwatch.Store) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	sigwatch.Batch(func() {
		for _, key := range settings.Keys() {
			if _, ok := values[key]; !ok {
				settings.Delete(key)
			}
		}
		for key, v := range values {
			settings.Set(key, v)
		}
	})

	return nil
}
