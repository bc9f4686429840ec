package cmd

import (
	"fmt"

	"envsync/internal/config"
	"envsync/internal/logger"
	"envsync/internal/manager"
	"envsync/internal/model"
	"envsync/internal/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncStrategy      string
	syncDirection     string
	syncWorkers       int
	syncDryRun        bool
	syncVerbose       bool
	syncIncludeHidden bool
	syncNoBackup      bool
	syncBackupDir     string
	syncExcludes      []string
)

var syncCmd = &cobra.Command{
	Use:   "sync [source] [target]",
	Short: "Synchronize a source path onto a target path once",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()
		src, dst := args[0], args[1]

		strategy, err := model.ParseStrategy(syncStrategy)
		if err != nil {
			return err
		}

		direction, err := model.ParseDirection(syncDirection)
		if err != nil {
			return err
		}

		excludes := cfg.ExcludePatterns
		if len(syncExcludes) > 0 {
			excludes = syncExcludes
		}

		syncCfg := &config.SyncConfig{
			SourceRoot:      src,
			TargetRoot:      dst,
			Direction:       direction,
			Strategy:        strategy,
			ExcludePatterns: excludes,
			MaxWorkers:      syncWorkers,
			DryRun:          syncDryRun,
			Verbose:         syncVerbose,
			IncludeHidden:   syncIncludeHidden,
			BackupEnabled:   cfg.BackupEnabled && !syncNoBackup,
			BackupDir:       syncBackupDir,
		}

		m, err := manager.New(syncCfg)
		if err != nil {
			return err
		}

		logger.Log.Info("starting sync",
			zap.String("src", src),
			zap.String("dst", dst),
			zap.String("strategy", string(strategy)),
			zap.Bool("dry_run", syncDryRun))

		results := m.Run()

		repo := repository.NewHistoryRepository()

		var succeeded, failed int
		for _, r := range results {
			if err := repo.Save(r); err != nil {
				logger.Log.Warn("failed to save history",
					zap.Error(err))
			}

			if r.Success {
				succeeded++
			} else {
				failed++
			}

			if syncVerbose || !r.Success {
				fmt.Printf("%s [%s] %s\n", r.ItemPath, r.Kind, r.Message)
			}
		}

		fmt.Printf("done: %d succeeded, %d failed\n", succeeded, failed)
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncStrategy, "strategy", string(model.StrategySourceWins), "Conflict strategy (SOURCE_WINS, TARGET_WINS, MERGE, MANUAL, SKIP)")
	syncCmd.Flags().StringVar(&syncDirection, "direction", string(model.SourceToTarget), "Direction label (SOURCE_TO_TARGET, TARGET_TO_SOURCE, BIDIRECTIONAL)")
	syncCmd.Flags().IntVar(&syncWorkers, "workers", config.Default.MaxWorkers, "Worker count for directory syncs")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Report without mutating the target")
	syncCmd.Flags().BoolVarP(&syncVerbose, "verbose", "v", false, "Print every item result")
	syncCmd.Flags().BoolVar(&syncIncludeHidden, "include-hidden", false, "Consider dotfiles and dot-directories")
	syncCmd.Flags().BoolVar(&syncNoBackup, "no-backup", false, "Skip backups before overwriting or deleting")
	syncCmd.Flags().StringVar(&syncBackupDir, "backup-dir", "", "Backup directory (default: hidden sibling of the mutated path)")
	syncCmd.Flags().StringArrayVar(&syncExcludes, "exclude", nil, "Exclude pattern (regexp, repeatable; overrides config)")

	rootCmd.AddCommand(syncCmd)
}
