package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/multidispatch/internal/config"
	"github.com/zjrosen/multidispatch/internal/log"
)

// projectConfigPath is checked before the user config.
const projectConfigPath = ".mdispatch/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config

	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "mdispatch",
	Short: "Pattern-guarded multiple dispatch engine",
	Long: `mdispatch registers operations made of pattern-guarded clauses and
dispatches calls to the first clause whose patterns match the arguments.

Operations come from a YAML catalog (catalog.path in the config, or --catalog);
without one the built-in demo catalog is used.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCleanup != nil {
			logCleanup()
			logCleanup = nil
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .mdispatch/config.yaml, then ~/.config/mdispatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (or set MDISPATCH_DEBUG)")
	rootCmd.PersistentFlags().String("catalog", "",
		"YAML operation catalog (overrides catalog.path)")

	_ = viper.BindPFlag("catalog.path", rootCmd.PersistentFlags().Lookup("catalog"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("dispatch.max_depth", defaults.Dispatch.MaxDepth)
	viper.SetDefault("dispatch.slow_call_threshold", defaults.Dispatch.SlowCallThreshold)
	viper.SetDefault("dispatch.log_args", defaults.Dispatch.LogArgs)
	viper.SetDefault("dispatch.memo", defaults.Dispatch.Memo)
	viper.SetDefault("dispatch.memo_ttl", defaults.Dispatch.MemoTTL)
	viper.SetDefault("check.count", defaults.Check.Count)
	viper.SetDefault("check.int_min", defaults.Check.IntMin)
	viper.SetDefault("check.int_max", defaults.Check.IntMax)
	viper.SetDefault("check.float_min", defaults.Check.FloatMin)
	viper.SetDefault("check.float_max", defaults.Check.FloatMax)
	viper.SetDefault("check.char_min", defaults.Check.CharMin)
	viper.SetDefault("check.char_max", defaults.Check.CharMax)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("catalog.watch", defaults.Catalog.Watch)

	viper.SetEnvPrefix("MDISPATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .mdispatch/config.yaml (current directory)
		// 2. ~/.config/mdispatch/config.yaml (user config)
		if _, err := os.Stat(projectConfigPath); err == nil {
			viper.SetConfigFile(projectConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "mdispatch"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	// A missing config file is fine; defaults apply. `mdispatch config:init`
	// writes one.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: reading config: %v\n", err)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// setup enables the debug log and validates the loaded config.
func setup(_ *cobra.Command, _ []string) error {
	debug := os.Getenv("MDISPATCH_DEBUG") != "" || debugFlag
	if debug && logCleanup == nil {
		logPath := os.Getenv("MDISPATCH_LOG")
		if logPath == "" {
			logPath = cfg.Log.File
		}

		cleanup, err := log.Init(logPath)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup

		level, err := log.ParseLevel(cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
		log.SetMinLevel(level)
		log.Info(log.CatConfig, "mdispatch starting",
			"version", version,
			"config", viper.ConfigFileUsed(),
			"log", logPath,
		)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// configFilePath is the file config-editing commands write to.
func configFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return projectConfigPath
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
