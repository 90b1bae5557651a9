package cmd

import (
	"fmt"
	"io"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/scriptseq/scriptseq/internal/core"
	apperrors "github.com/scriptseq/scriptseq/internal/errors"
	"github.com/scriptseq/scriptseq/internal/observability"
)

var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Print the last generated sequence",
	Long:  "Print the last generated sequence from local state without contacting the counter.",
	Args:  cobra.NoArgs,
	RunE:  runLast,
}

func init() {
	rootCmd.AddCommand(lastCmd)

	lastCmd.Flags().Bool("copy", false, "Copy the sequence to the clipboard")
}

func runLast(cmd *cobra.Command, args []string) error {
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

	record, err := backend.Read(ctx)
	if err != nil {
		exitForStateError(err)
		return err
	}
	if record == nil {
		ExitWithCode(observability.CLILogger, foundry.ExitFileNotFound, "No sequence has been generated yet",
			apperrors.NewStateNotFoundError(fmt.Sprintf("no sequence state at %s", backend.Location())))
		return nil
	}

	if err := printToken(cmd.OutOrStdout(), record); err != nil {
		return err
	}
	if copyFlag {
		copyToken(record.Token)
	}
	return nil
}

func printToken(w io.Writer, record *core.SequenceRecord) error {
	_, err := fmt.Fprintln(w, record.Token)
	return err
}
