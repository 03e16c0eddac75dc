package cleanup

import (
	"flag"
	"path/filepath"
	"time"

	platformcmd "github.com/louisbranch/passkeep/internal/platform/cmd"
	"github.com/louisbranch/passkeep/internal/platform/config"
	"github.com/louisbranch/passkeep/internal/platform/i18n/catalog"
	"github.com/louisbranch/passkeep/internal/platform/logging"
)

// Config holds cleanup command configuration.
type Config struct {
	DBPath            string        `env:"PASSKEEP_VAULT_DB_PATH"`
	DryRun            bool          `env:"PASSKEEP_CLEANUP_DRY_RUN" envDefault:"true"`
	ExtraCleanupsPath string        `env:"PASSKEEP_CLEANUP_EXTRA_PATH"`
	Locale            string        `env:"PASSKEEP_LOCALE"`
	MetricsTextfile   string        `env:"PASSKEEP_CLEANUP_METRICS_TEXTFILE"`
	LogLevel          string        `env:"PASSKEEP_LOG_LEVEL"`
	Timeout           time.Duration `env:"PASSKEEP_CLEANUP_TIMEOUT" envDefault:"10m"`
	JSONOutput        bool
}

// ParseConfig loads env defaults through lookup, then applies flags from args.
// A nil lookup reads the process environment.
func ParseConfig(fs *flag.FlagSet, args []string, lookup config.LookupFunc) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "vault.db")
	}
	if cfg.Locale == "" {
		cfg.Locale = catalog.BaseLocale
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = logging.DefaultLevel
	}

	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "don't fix, only display report (use -dry-run=false to fix)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to vault sqlite database (default: PASSKEEP_VAULT_DB_PATH or data/vault.db)")
	fs.StringVar(&cfg.ExtraCleanupsPath, "extra-cleanups", cfg.ExtraCleanupsPath, "YAML file of additional table cleanup jobs")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "report locale")
	fs.StringVar(&cfg.MetricsTextfile, "metrics-textfile", cfg.MetricsTextfile, "write Prometheus textfile metrics to this path")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output a JSON report")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
