package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkwok/turnstat/config"
)

var (
	cfgFile  string
	logLevel string
	logFile  string
	debug    bool
)

var rootCmd = &cobra.Command{
	Use:   "turnstat",
	Short: "Conversation log throughput analytics",
	Long: `turnstat computes tokens-per-second throughput from line-delimited
conversation event logs. Events are grouped into conversational turns, rated
per turn, and aggregated across time periods and model identity. Results for
unchanged files are served from a persistent cache.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.turnstat.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file (default is stderr)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	if err := viper.BindPFlag("app.log_level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintf(os.Stderr, "failed to bind log-level flag: %v\n", err)
	}
	if err := viper.BindPFlag("app.log_file", rootCmd.PersistentFlags().Lookup("log-file")); err != nil {
		fmt.Fprintf(os.Stderr, "failed to bind log-file flag: %v\n", err)
	}
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".turnstat")
	}

	viper.SetEnvPrefix("TURNSTAT")
	viper.AutomaticEnv()

	setDefaults()

	// A missing config file is fine; defaults and env cover everything.
	_ = viper.ReadInConfig()
}

func setDefaults() {
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.log_file", "")
	viper.SetDefault("app.timezone", "Local")

	viper.SetDefault("data.paths", []string{})

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.dir", "")

	viper.SetDefault("output.format", "table")
	viper.SetDefault("output.period", "day")
}

// loadConfiguration assembles the effective config from defaults, the
// config file, environment, and bound flags.
func loadConfiguration() *config.Config {
	cfg := config.DefaultConfig()

	cfg.App.LogLevel = viper.GetString("app.log_level")
	cfg.App.LogFile = viper.GetString("app.log_file")
	cfg.App.Timezone = viper.GetString("app.timezone")
	cfg.Data.Paths = viper.GetStringSlice("data.paths")
	cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	cfg.Cache.Dir = viper.GetString("cache.dir")
	cfg.Output.Format = viper.GetString("output.format")
	cfg.Output.Period = viper.GetString("output.period")

	if debug {
		cfg.App.LogLevel = "debug"
	}

	return cfg
}
