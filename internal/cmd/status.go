package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/scriptseq/scriptseq/internal/core"
	"github.com/scriptseq/scriptseq/internal/core/engine"
	"github.com/scriptseq/scriptseq/internal/core/store"
	"github.com/scriptseq/scriptseq/internal/observability"
	"github.com/scriptseq/scriptseq/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored sequence and cooldown state",
	Long:  "Show where sequence state is kept, the last generated sequence, and when the next one may be generated. No network request is made.",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().String("output-format", "table", "Output format: table, json, markdown")
	statusCmd.Flags().String("out", "", "Write output to file (default stdout)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("out")
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

	status, err := readStatus(ctx, backend, &engine.RateLimiter{Cooldown: cfg.Cooldown}, time.Now().UTC())
	if err != nil {
		exitForStateError(err)
		return err
	}

	rendered, err := output.NewFormatter(format, cfg.Cooldown).FormatStatus(status)
	if err != nil {
		return err
	}
	return writeRendered(outPath, rendered)
}

// readStatus reads the stored record and evaluates the cooldown at now.
func readStatus(ctx context.Context, backend store.Backend, limiter *engine.RateLimiter, now time.Time) (*output.Status, error) {
	record, err := backend.Read(ctx)
	if err != nil {
		return nil, err
	}
	return buildStatus(backend.Driver(), backend.Location(), record, limiter, now), nil
}

func buildStatus(driver, location string, record *core.SequenceRecord, limiter *engine.RateLimiter, now time.Time) *output.Status {
	status := &output.Status{
		Backend:  driver,
		Location: location,
		Cooldown: limiter.CooldownDuration(),
	}

	allowed, wait := limiter.AllowAt(now, record)
	status.Allowed = allowed
	status.Remaining = wait

	if record != nil {
		status.Present = true
		status.Token = record.Token
		status.IssuedAt = record.IssuedAt
		status.NextAllowedAt = limiter.NextAllowedAt(record)
	}
	return status
}

// exitForStateError exits with the code matching a state read failure.
func exitForStateError(err error) {
	if errors.Is(err, core.ErrCorruptState) {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Stored sequence state could not be read", err)
	}
	ExitWithCode(observability.CLILogger, foundry.ExitFailure, "Failed to read sequence state", err)
}
