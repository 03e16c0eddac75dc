// Package cleanup finds and repairs vault rows that reference deleted users,
// groups, resources or permissions.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/passkeep/internal/platform/i18n/catalog"
	"github.com/louisbranch/passkeep/internal/platform/logging"
	"github.com/louisbranch/passkeep/internal/services/vault/storage"
	"github.com/louisbranch/passkeep/internal/services/vault/storage/sqlite"
	"go.uber.org/zap"
)

// closableLocator is a table locator that owns a resource.
type closableLocator interface {
	storage.TableLocator
	Close() error
}

// Run executes the cleanup command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	logger, err := logging.New(errOut, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	registry := DefaultRegistry()
	if path := strings.TrimSpace(cfg.ExtraCleanupsPath); path != "" {
		extra, err := LoadExtraCleanups(path)
		if err != nil {
			return err
		}
		registry.AddCleanups(extra...)
		logger.Info("extra cleanups loaded", zap.String("path", path), zap.Int("tables", len(extra)))
	}

	store, err := openVaultStore(cfg.DBPath)
	if err != nil {
		return err
	}
	return runWithDeps(ctx, cfg, registry, store, logger, out, errOut)
}

// runWithDeps contains the command logic with injectable dependencies. It owns
// the locator and closes it on return.
func runWithDeps(ctx context.Context, cfg Config, registry *Registry, locator closableLocator, logger *zap.Logger, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	defer func() {
		if err := locator.Close(); err != nil {
			fmt.Fprintf(errOut, "Error: close vault store: %v\n", err)
		}
	}()

	bundle, err := catalog.LoadEmbedded()
	if err != nil {
		return fmt.Errorf("load catalogs: %w", err)
	}
	localizer := NewLocalizer(bundle, cfg.Locale)

	if !cfg.JSONOutput {
		if err := WriteHeader(out, localizer, cfg.DryRun); err != nil {
			return err
		}
	}

	started := time.Now().UTC()
	report, runErr := NewRunner(registry, locator, WithLogger(logger)).Run(ctx, cfg.DryRun)
	finished := time.Now().UTC()

	if path := strings.TrimSpace(cfg.MetricsTextfile); path != "" {
		if err := WriteMetricsTextfile(path, report, runErr, started, finished); err != nil {
			logger.Warn("metrics textfile not written", zap.String("path", path), zap.Error(err))
		}
	}

	if runErr != nil {
		if cfg.JSONOutput {
			if err := writeJSON(out, report, describeFailure(runErr, localizer)); err != nil {
				fmt.Fprintf(errOut, "Error: %v\n", err)
			}
		} else {
			if err := report.WriteJobLines(out, localizer); err != nil {
				fmt.Fprintf(errOut, "Error: %v\n", err)
			}
			fmt.Fprintf(errOut, "Error: %s\n", describeFailure(runErr, localizer).Message)
		}
		return fmt.Errorf("%w: %w", ErrReported, runErr)
	}

	if cfg.JSONOutput {
		return report.WriteJSON(out)
	}
	return report.WriteText(out, localizer)
}

func openVaultStore(path string) (*sqlite.Store, error) {
	cleanPath := filepath.Clean(strings.TrimSpace(path))
	if cleanPath == "." || cleanPath == "" {
		return nil, errors.New("vault db path is required")
	}
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open vault store: %w", err)
	}
	return store, nil
}
