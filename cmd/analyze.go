package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkwok/turnstat/cache"
	"github.com/mkwok/turnstat/calculations"
	"github.com/mkwok/turnstat/fileio"
	"github.com/mkwok/turnstat/logging"
	"github.com/mkwok/turnstat/pipeline"
)

var (
	analyzeOutput  string
	analyzePeriod  string
	analyzeNoCache bool
	analyzeReset   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] path...",
	Short: "Analyze conversation logs and report turn throughput",
	Long: `Process conversation log files (or directories of them) and report
tokens-per-second statistics per session, per time period, and per model.

Files must be named [uuid].jsonl; anything else is excluded before parsing.
Unchanged files are served from the result cache on repeat runs.

Examples:
  turnstat analyze ~/.claude/projects                 # scan a directory tree
  turnstat analyze --output json session.jsonl        # JSON report
  turnstat analyze --period hour ~/logs               # hourly buckets
  turnstat analyze --reset ~/logs                     # clear cache first

With no path arguments, the data.paths config entries are scanned instead.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfiguration()
		if analyzeOutput != "" {
			cfg.Output.Format = analyzeOutput
		}
		if analyzePeriod != "" {
			cfg.Output.Period = analyzePeriod
		}
		if err := validateOutputFormat(cfg.Output.Format); err != nil {
			return err
		}

		logging.InitLogger(cfg.App.LogLevel, cfg.App.LogFile)

		paths := args
		if len(paths) == 0 {
			paths = cfg.Data.Paths
		}
		if len(paths) == 0 {
			return fmt.Errorf("no input paths: pass paths as arguments or set data.paths in the config file")
		}

		var files []string
		for _, path := range paths {
			discovered, err := fileio.DiscoverFiles(path)
			if err != nil {
				return fmt.Errorf("failed to scan %s: %w", path, err)
			}
			files = append(files, discovered...)
		}

		var resultCache pipeline.ResultCache
		if cfg.Cache.Enabled && !analyzeNoCache {
			rc, err := cache.Open(cfg.Cache.Dir)
			if err != nil {
				// Degrade to uncached processing rather than failing the run.
				logging.LogWarnf("failed to open result cache, continuing without it: %v", err)
			} else {
				defer rc.Close()
				if analyzeReset {
					if err := rc.Clear(); err != nil {
						return fmt.Errorf("failed to clear cache: %w", err)
					}
					logging.LogInfof("cache cleared")
				}
				resultCache = rc
			}
		}

		processor := pipeline.NewProcessor(resultCache)
		report, err := processor.Process(files, func(processed, total int) {
			fmt.Fprintf(os.Stderr, "\rProcessing %d/%d files...", processed, total)
		})
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return err
		}

		tz := resolveTimezone(cfg.App.Timezone)
		period := calculations.Period(cfg.Output.Period)
		periodStats := calculations.NewPeriodAggregator(tz).Aggregate(report.AllMetricPoints, period)

		return outputReport(report, periodStats, period, cfg.Output.Format)
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "output format (table, json, csv, summary)")
	analyzeCmd.Flags().StringVarP(&analyzePeriod, "period", "p", "", "period selector (session, hour, dayOfWeek, dayOfMonth, month, day, dateHour)")
	analyzeCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "disable the result cache for this run")
	analyzeCmd.Flags().BoolVarP(&analyzeReset, "reset", "r", false, "clear the result cache before analysis")

	_ = viper.BindPFlag("output.format", analyzeCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output.period", analyzeCmd.Flags().Lookup("period"))

	rootCmd.AddCommand(analyzeCmd)
}

func validateOutputFormat(format string) error {
	validOutputs := []string{"table", "json", "csv", "summary"}
	for _, valid := range validOutputs {
		if strings.EqualFold(format, valid) {
			return nil
		}
	}
	return fmt.Errorf("invalid output format: %s (valid options: %s)",
		format, strings.Join(validOutputs, ", "))
}

func resolveTimezone(name string) *time.Location {
	switch name {
	case "", "Local":
		return time.Local
	case "UTC":
		return time.UTC
	default:
		tz, err := time.LoadLocation(name)
		if err != nil {
			logging.LogWarnf("unknown timezone %q, using local time", name)
			return time.Local
		}
		return tz
	}
}
