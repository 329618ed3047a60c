package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkwok/turnstat/cache"
	"github.com/mkwok/turnstat/logging"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the result cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show result cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfiguration()
		logging.InitLogger(cfg.App.LogLevel, cfg.App.LogFile)

		rc, err := cache.Open(cfg.Cache.Dir)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer rc.Close()

		stats, err := rc.Stats()
		if err != nil {
			return err
		}

		fmt.Printf("Entries: %d\n", stats.EntryCount)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached results",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfiguration()
		logging.InitLogger(cfg.App.LogLevel, cfg.App.LogFile)

		rc, err := cache.Open(cfg.Cache.Dir)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer rc.Close()

		if err := rc.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		fmt.Println("Cache cleared")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
