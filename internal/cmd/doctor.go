package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/moby/sys/atomicwriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/scriptseq/scriptseq/internal/config"
	"github.com/scriptseq/scriptseq/internal/core"
	"github.com/scriptseq/scriptseq/internal/observability"
)

const doctorChecks = 5

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long: `Run diagnostic checks on configuration, local state and counter reachability.

The counter check only opens a TCP connection; it never generates a sequence.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		logger := observability.CLILogger

		logger.Info("=== " + config.AppName + " doctor ===")
		logger.Info("")

		allChecks := true

		// Check 1: Crucible and Gofulmen
		version := crucible.GetVersion()
		if version.Crucible != "" && version.Gofulmen != "" {
			logger.Info(checkLine(1, "Checking Gofulmen", "✅ v"+version.Gofulmen),
				zap.String("gofulmen_version", version.Gofulmen),
				zap.String("crucible_version", version.Crucible))
		} else {
			logger.Warn(checkLine(1, "Checking Gofulmen", "⚠️  version metadata unavailable"))
			allChecks = false
		}

		// Check 2: Config file
		configFile := settings.ConfigFileUsed()
		switch {
		case configFile != "":
			logger.Info(checkLine(2, "Checking config file", "✅ "+configFile), zap.String("config_file", configFile))
		case config.DefaultConfigPath() != "":
			logger.Info(checkLine(2, "Checking config file", "✅ defaults (run 'scriptseq doctor init' to create "+config.DefaultConfigPath()+")"))
		default:
			logger.Warn(checkLine(2, "Checking config file", "⚠️  config directory not resolved"))
		}

		// Check 3: Config values
		cfg, cfgErr := loadConfig()
		if cfgErr != nil {
			logger.Error(checkLine(3, "Validating config", "❌ invalid"), zap.Error(cfgErr))
			logger.Warn(checkLine(4, "Checking sequence state", "⚠️  skipped (config not loaded)"))
			logger.Warn(checkLine(5, "Checking counter", "⚠️  skipped (config not loaded)"))
			finishDoctor(false)
			return
		}
		logger.Info(checkLine(3, "Validating config", "✅ valid"))

		// Check 4: Sequence state
		if ok := doctorState(ctx, cfg); !ok {
			allChecks = false
		}

		// Check 5: Counter reachability
		client := newCounterClient(cfg)
		endpoint, _ := client.Endpoint()
		target := cfg.Counter.BaseURL
		if endpoint != nil {
			target = endpoint.Host
		}
		if err := client.Probe(ctx); err != nil {
			logger.Warn(checkLine(5, "Checking counter", "⚠️  "+target+" unreachable"), zap.Error(err))
			logger.Info("       Sequences can still be obtained by visiting " + client.FallbackURL())
			allChecks = false
		} else {
			logger.Info(checkLine(5, "Checking counter", "✅ "+target+" reachable"), zap.String("counter", target))
		}

		finishDoctor(allChecks)
	},
}

func doctorState(ctx context.Context, cfg *config.Config) bool {
	logger := observability.CLILogger

	backend, err := openStateStore(ctx, cfg)
	if err != nil {
		logger.Error(checkLine(4, "Checking sequence state", "❌ cannot open state"), zap.Error(err))
		return false
	}
	defer backend.Close() // nolint:errcheck // best-effort cleanup

	location := backend.Location()
	record, err := backend.Read(ctx)
	switch {
	case errors.Is(err, core.ErrCorruptState):
		logger.Error(checkLine(4, "Checking sequence state", "❌ corrupt ("+location+")"), zap.Error(err))
		logger.Info("       Remove or repair the file; the next generate will recreate it.")
		return false
	case err != nil:
		logger.Error(checkLine(4, "Checking sequence state", "❌ unreadable ("+location+")"), zap.Error(err))
		return false
	case record == nil:
		logger.Info(checkLine(4, "Checking sequence state", "✅ no sequence yet ("+location+")"))
	default:
		detail := fmt.Sprintf("✅ %s issued %s (%s)", record.Token, formatTimeAgo(record.IssuedAt), location)
		if info, statErr := os.Stat(location); statErr == nil {
			detail = fmt.Sprintf("✅ %s issued %s (%s, %s)", record.Token, formatTimeAgo(record.IssuedAt), location, formatFileSize(info.Size()))
		}
		logger.Info(checkLine(4, "Checking sequence state", detail),
			zap.String("sequence", record.Token),
			zap.Time("issued_at", record.IssuedAt))
	}
	return true
}

func finishDoctor(allChecks bool) {
	logger := observability.CLILogger
	logger.Info("")
	if allChecks {
		logger.Info("✅ All checks passed! Your " + config.AppName + " installation is healthy.")
	} else {
		logger.Warn("⚠️  Some checks failed. Review the output above for details.")
	}
	logger.Info("")
	logger.Info("=== End Diagnostics ===")
}

func checkLine(n int, label, result string) string {
	return fmt.Sprintf("[%d/%d] %s... %s", n, doctorChecks, label, result)
}

var doctorInitForce bool

var doctorInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.DefaultConfigPath()
		if configPath == "" {
			return fmt.Errorf("config path not resolved")
		}

		if _, err := os.Stat(configPath); err == nil && !doctorInitForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
		}

		data, err := buildInitConfig()
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
		if err := atomicwriter.WriteFile(configPath, data, 0644); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		observability.CLILogger.Info("Config initialized", zap.String("path", configPath))
		return nil
	},
}

var doctorValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := settings.ConfigFileUsed()
		if configPath == "" {
			return fmt.Errorf("config file not found: %s", config.DefaultConfigPath())
		}

		if _, err := loadConfig(); err != nil {
			return err
		}

		observability.CLILogger.Info("Config is valid", zap.String("path", configPath))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.AddCommand(doctorInitCmd)
	doctorCmd.AddCommand(doctorValidateCmd)

	doctorInitCmd.Flags().BoolVar(&doctorInitForce, "force", false, "overwrite existing config file")
}

// buildInitConfig renders the built-in defaults as a commented config file.
func buildInitConfig() ([]byte, error) {
	defaults := config.Config{
		Counter: config.CounterConfig{
			BaseURL: config.DefaultBaseURL,
			Path:    config.DefaultCounterPath,
			Timeout: config.DefaultTimeout,
		},
		Cooldown: config.DefaultCooldown,
		State: config.StateConfig{
			Backend: config.DefaultBackend,
			Path:    config.DefaultStatePath(),
		},
		Store: config.StoreConfig{
			Path: config.DefaultStorePath(),
		},
		Logging: config.LoggingConfig{Level: "info"},
	}

	body, err := yaml.Marshal(&defaults)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	header := "# " + config.AppName + " config - created by '" + config.AppName + " doctor init'\n" +
		"# Environment overrides use the " + config.EnvPrefix + "_ prefix, e.g. " + config.EnvPrefix + "_COUNTER_TIMEOUT=10s\n"
	return append([]byte(header), body...), nil
}

// formatFileSize returns a human-readable file size
func formatFileSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}

// formatTimeAgo returns a human-readable relative time
func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	d := time.Since(t)
	switch {
	case d < 0:
		return "in the future"
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}
