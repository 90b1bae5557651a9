package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scriptseq/scriptseq/internal/config"
	"github.com/scriptseq/scriptseq/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display environment, configuration, and version information.",
	Run: func(cmd *cobra.Command, args []string) {
		version := crucible.GetVersion()
		logger := observability.CLILogger

		logger.Info("=== scriptseq Environment Information ===")
		logger.Info("")

		logger.Info("Application:")
		logger.Info("  Name:       " + config.AppName)
		logger.Info("  Version:    " + versionInfo.Version)
		logger.Info("  Commit:     " + versionInfo.Commit)
		logger.Info("  Built:      " + versionInfo.BuildDate)
		logger.Info("")

		logger.Info("SSOT:")
		logger.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		logger.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		logger.Info("")

		logger.Info("Runtime:")
		logger.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		logger.Info("  GOOS:       "+runtime.GOOS, zap.String("goos", runtime.GOOS))
		logger.Info("  GOARCH:     "+runtime.GOARCH, zap.String("goarch", runtime.GOARCH))
		logger.Info("")

		cfg, err := loadConfig()
		if err != nil {
			logger.Warn("Config load failed", zap.Error(err))
			return
		}

		configFile := settings.ConfigFileUsed()
		if configFile == "" {
			configFile = config.DefaultConfigPath() + " (not found)"
		}

		logger.Info("Configuration:")
		logger.Info("  Config File:    "+configFile, zap.String("config_file", configFile))
		logger.Info("  Counter URL:    "+cfg.Counter.BaseURL, zap.String("counter_url", cfg.Counter.BaseURL))
		logger.Info("  Counter Path:   "+cfg.Counter.Path, zap.String("counter_path", cfg.Counter.Path))
		logger.Info("  Timeout:        "+cfg.Counter.Timeout.String(), zap.Duration("timeout", cfg.Counter.Timeout))
		logger.Info("  Cooldown:       "+cfg.Cooldown.String(), zap.Duration("cooldown", cfg.Cooldown))
		logger.Info("  Log Level:      "+cfg.Logging.Level, zap.String("log_level", cfg.Logging.Level))
		logger.Info("  State Backend:  "+cfg.State.Backend, zap.String("state_backend", cfg.State.Backend))
		if cfg.State.Backend == "libsql" {
			if strings.TrimSpace(cfg.Store.URL) != "" {
				logger.Info("  DB URL:         "+cfg.Store.URL, zap.String("db_url", cfg.Store.URL))
			} else {
				logger.Info("  DB Path:        "+cfg.Store.Path, zap.String("db_path", cfg.Store.Path))
			}
		} else {
			logger.Info("  State Path:     "+cfg.State.Path, zap.String("state_path", cfg.State.Path))
		}
		logger.Info(fmt.Sprintf("  Verbose:        %t", verbose))
	},
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
