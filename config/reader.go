package config

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/a8m/envsubst"
	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	goutils "go.viam.com/utils"

	"github.com/sensorviz/sensorviz/logging"
)

// Read reads a config from the given file, expanding ${VAR} references from the environment first.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
// The config is JSON5, so comments and trailing commas are allowed.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(originalPath, buf)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debugw("config read", "path", originalPath, "composition", cfg.Convention.Composition)
	return cfg, nil
}

// Validate reads the file at path and returns every problem found, combined.
func Validate(filePath string) error {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return err
	}
	cfg, err := decode(filePath, buf)
	if err != nil {
		return err
	}
	return cfg.Validate()
}

func decode(originalPath string, buf []byte) (*Config, error) {
	cfg := Config{ConfigFilePath: originalPath}
	if err := json5.Unmarshal(buf, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// watchDebounce collapses the burst of events a single save produces.
const watchDebounce = 50 * time.Millisecond

// Watch re-reads the file at filePath whenever it changes and passes every valid result to onChange.
// Invalid revisions are logged and skipped. Watch blocks until ctx is done.
func Watch(ctx context.Context, filePath string, logger logging.Logger, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer goutils.UncheckedErrorFunc(watcher.Close)

	target := filepath.Clean(filePath)
	// editors often replace files instead of writing them, so watch the directory
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "cannot watch %q", filePath)
	}

	reload := make(chan struct{}, 1)
	debounced := debounce.New(watchDebounce)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reload:
			cfg, err := Read(target, logger)
			if err != nil {
				logger.Warnw("ignoring invalid config change", "path", target, "error", err)
				continue
			}
			logger.Infow("config changed", "path", target)
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("config watcher error", "error", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			debounced(func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		}
	}
}
