package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scriptseq/scriptseq/internal/config"
	"github.com/scriptseq/scriptseq/internal/core"
	"github.com/scriptseq/scriptseq/internal/core/engine"
	"github.com/scriptseq/scriptseq/internal/observability"
	"github.com/scriptseq/scriptseq/internal/output"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate a script sequence",
	Long: `Generate a new script sequence from the global counter.

If a sequence was generated within the cooldown window, no request is made and
the last generated sequence is shown again.

Examples:
  scriptseq generate
  scriptseq generate --copy
  scriptseq generate --output-format json --out last-sequence.json`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("output-format", "table", "Output format: table, json, markdown")
	generateCmd.Flags().String("out", "", "Write output to file (default stdout)")
	generateCmd.Flags().Bool("copy", false, "Copy the sequence to the clipboard")
	generateCmd.Flags().Duration("timeout", config.DefaultTimeout, "Counter request timeout")
	generateCmd.Flags().String("base-url", "", "Counter service base URL")

	_ = settings.BindPFlag("counter.timeout", generateCmd.Flags().Lookup("timeout"))
	_ = settings.BindPFlag("counter.base_url", generateCmd.Flags().Lookup("base-url"))
}

type generateOptions struct {
	Format  output.Format
	OutPath string
	Copy    bool
}

func runGenerate(cmd *cobra.Command, args []string) error {
	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	copyFlag, err := cmd.Flags().GetBool("copy")
	if err != nil {
		return err
	}

	cfg := mustLoadConfig()
	ctx := cmd.Context()

	backend, err := openStateStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close() // nolint:errcheck // best-effort cleanup

	observability.CLILogger.Debug("Sequence state opened",
		zap.String("driver", backend.Driver()),
		zap.String("location", backend.Location()))

	orchestrator := buildOrchestrator(cfg, backend, newCounterClient(cfg))

	outcome, err := executeGenerate(ctx, cfg, orchestrator, generateOptions{
		Format:  format,
		OutPath: outPath,
		Copy:    copyFlag,
	})
	if err != nil {
		return err
	}

	ExitForOutcome(observability.CLILogger, outcome)
	return nil
}

// executeGenerate runs one invocation, renders it and optionally copies the
// token. Rendering errors are returned; outcome failures are not.
func executeGenerate(ctx context.Context, cfg *config.Config, orchestrator *engine.Orchestrator, opts generateOptions) (*core.Outcome, error) {
	startedAt := time.Now()
	outcome := generateAsync(ctx, orchestrator)
	logOutcome(outcome, time.Since(startedAt))

	rendered, err := output.NewFormatter(opts.Format, cfg.Cooldown).FormatOutcome(outcome)
	if err != nil {
		return outcome, err
	}
	if err := writeRendered(opts.OutPath, rendered); err != nil {
		return outcome, err
	}

	if opts.Copy && outcome.Token != "" {
		copyToken(outcome.Token)
	}
	return outcome, nil
}

// generateAsync runs the invocation off the calling goroutine. An interrupt
// cancels ctx, which Generate observes, so the outcome is always awaited.
func generateAsync(ctx context.Context, orchestrator *engine.Orchestrator) *core.Outcome {
	done := make(chan *core.Outcome, 1)
	go func() {
		done <- orchestrator.Generate(ctx)
	}()

	select {
	case outcome := <-done:
		return outcome
	case <-ctx.Done():
		if observability.CLILogger != nil {
			observability.CLILogger.Warn("Interrupt received, waiting for the current request to stop")
		}
		return <-done
	}
}

func logOutcome(outcome *core.Outcome, elapsed time.Duration) {
	if observability.CLILogger == nil || outcome == nil {
		return
	}

	fields := []zap.Field{
		zap.String("invocation_id", outcome.InvocationID),
		zap.String("outcome", string(outcome.Kind)),
		zap.Duration("elapsed", elapsed),
	}
	if outcome.Token != "" {
		fields = append(fields, zap.String("sequence", outcome.Token))
	}

	switch outcome.Kind {
	case core.OutcomeGenerated:
		observability.CLILogger.Debug("Sequence generated", fields...)
	case core.OutcomeBlocked:
		fields = append(fields, zap.Time("next_allowed_at", outcome.NextAllowedAt))
		observability.CLILogger.Debug("Cooldown active, returning last sequence", fields...)
	default:
		if outcome.Err != nil {
			fields = append(fields, zap.String("error_kind", string(outcome.Err.Kind)))
			if outcome.Err.Cause != nil {
				fields = append(fields, zap.Error(outcome.Err.Cause))
			}
		}
		observability.CLILogger.Debug("Sequence generation failed", fields...)
	}
}
