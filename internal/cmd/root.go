package cmd

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/scriptseq/scriptseq/internal/config"
	apperrors "github.com/scriptseq/scriptseq/internal/errors"
	"github.com/scriptseq/scriptseq/internal/observability"
)

var (
	cfgFile string
	verbose bool

	// settings holds defaults, the config file, env overrides and bound flags.
	settings = viper.New()

	loadOnce   sync.Once
	loadedCfg  *config.Config
	loadCfgErr error

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Issue globally unique script sequence identifiers",
	Long: `scriptseq issues globally unique, monotonically increasing script sequence
identifiers from the shared counter service.

A new sequence can be generated at most once per cooldown window (24 hours by
default). Within the window the last generated sequence is shown again.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext is Execute with a context that commands observe, typically
// cancelled on interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/scriptseq/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	rootCmd.PersistentFlags().String("state-path", "", "override the sequence state file location")

	_ = settings.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = settings.BindPFlag("state.path", rootCmd.PersistentFlags().Lookup("state-path"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.SetDefaults(settings)
	config.BindEnv(settings)

	if cfgFile != "" {
		settings.SetConfigFile(cfgFile)
	} else {
		if path := config.DefaultConfigPath(); path != "" {
			settings.AddConfigPath(filepath.Dir(path))
		} else if home, err := os.UserHomeDir(); err == nil {
			settings.AddConfigPath(filepath.Join(home, "."+config.AppName))
		}
		settings.SetConfigName("config")
		settings.SetConfigType("yaml")

		// Also search in current directory
		settings.AddConfigPath("./config")
	}

	readErr := settings.ReadInConfig()

	observability.InitCLILogger(config.AppName, settings.GetString("logging.level"), verbose)

	if readErr == nil {
		observability.CLILogger.Debug("Using config file", zap.String("path", settings.ConfigFileUsed()))
		return
	}

	if _, ok := readErr.(viper.ConfigFileNotFoundError); ok {
		observability.CLILogger.Debug("No config file found, using defaults and environment variables")
		return
	}

	if cfgFile != "" {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Failed to read config file",
			apperrors.WrapConfigInvalid(readErr, "config file could not be read"))
	}
	observability.CLILogger.Warn("Error reading config file", zap.Error(readErr))
}

// loadConfig decodes and validates the effective configuration once.
func loadConfig() (*config.Config, error) {
	loadOnce.Do(func() {
		loadedCfg, loadCfgErr = config.Load(settings)
	})
	return loadedCfg, loadCfgErr
}

// mustLoadConfig exits with ExitConfigInvalid when the configuration is unusable.
func mustLoadConfig() *config.Config {
	cfg, err := loadConfig()
	if err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Invalid configuration",
			apperrors.WrapConfigInvalid(err, err.Error()))
	}
	return cfg
}
