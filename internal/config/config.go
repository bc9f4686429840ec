package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"envsync/internal/model"

	"github.com/spf13/viper"
)

// DefaultExcludes covers version-control metadata, byte-compiled caches,
// virtualenvs, editor metadata, OS droppings and test caches.
var DefaultExcludes = []string{
	`\.git$`,
	`__pycache__`,
	`\.venv`,
	`(^|/)venv$`,
	`node_modules`,
	`\.idea`,
	`\.vscode`,
	`\.DS_Store`,
	`Thumbs\.db`,
	`\.pytest_cache`,
	`\.mypy_cache`,
	`\.coverage`,
	`htmlcov`,
	`\.tox`,
	`\.egg-info`,
}

type Config struct {
	DaemonPort       int      `mapstructure:"daemon_port"`
	DBPath           string   `mapstructure:"db_path"`
	MaxWorkers       int      `mapstructure:"max_workers"`
	ConflictStrategy string   `mapstructure:"conflict_strategy"`
	ExcludePatterns  []string `mapstructure:"exclude_patterns"`
	BackupEnabled    bool     `mapstructure:"backup_enabled"`
	BackupDir        string   `mapstructure:"backup_dir"`
}

var Default = Config{
	DaemonPort:       9400,
	DBPath:           "envsync.db",
	MaxWorkers:       4,
	ConflictStrategy: string(model.StrategySourceWins),
	ExcludePatterns:  DefaultExcludes,
	BackupEnabled:    true,
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home dir: %w", err)
	}

	configDir := filepath.Join(home, ".envsync")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	viper.SetDefault("daemon_port", Default.DaemonPort)
	viper.SetDefault("db_path", Default.DBPath)
	viper.SetDefault("max_workers", Default.MaxWorkers)
	viper.SetDefault("conflict_strategy", Default.ConflictStrategy)
	viper.SetDefault("exclude_patterns", Default.ExcludePatterns)
	viper.SetDefault("backup_enabled", Default.BackupEnabled)
	viper.SetDefault("backup_dir", Default.BackupDir)

	viper.SetEnvPrefix("ENVSYNC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if ok := errors.As(err, &notFoundErr); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// SyncConfig is the immutable per-run configuration handed to the sync
// core. The CLI layer builds it from file config and flags; the core
// never reads argv or the environment itself.
type SyncConfig struct {
	SourceRoot      string
	TargetRoot      string
	Direction       model.Direction
	Strategy        model.ConflictStrategy
	ExcludePatterns []string
	MaxWorkers      int
	DryRun          bool
	Verbose         bool
	IncludeHidden   bool
	BackupEnabled   bool
	BackupDir       string
}

func (c *SyncConfig) Validate() error {
	if c.SourceRoot == "" {
		return fmt.Errorf("source root must not be empty")
	}

	if c.TargetRoot == "" {
		return fmt.Errorf("target root must not be empty")
	}

	if _, err := model.ParseDirection(string(c.Direction)); err != nil {
		return err
	}

	if _, err := model.ParseStrategy(string(c.Strategy)); err != nil {
		return err
	}

	if c.MaxWorkers < 1 {
		return fmt.Errorf("max workers must be >= 1, got %d", c.MaxWorkers)
	}

	return nil
}
