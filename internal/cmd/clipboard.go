package cmd

import (
	"strings"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/scriptseq/scriptseq/internal/observability"
)

var clipboardWrite = clipboard.WriteAll

// copyToken places token on the system clipboard. Failures are logged and
// never change the command result.
func copyToken(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	if err := clipboardWrite(token); err != nil {
		if observability.CLILogger != nil {
			observability.CLILogger.Warn("Failed to copy sequence to clipboard", zap.Error(err))
		}
		return false
	}
	if observability.CLILogger != nil {
		observability.CLILogger.Debug("Sequence copied to clipboard", zap.String("sequence", token))
	}
	return true
}
