package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quillcms/quillconf/internal/ops"
)

// NewRevokeSessionsCommand creates the revoke-sessions command.
func NewRevokeSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke-sessions",
		Short: "Invalidate all login sessions",
		Long: `Rotate the session-signing secret, invalidating every outstanding
login session. No other variable is touched.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRevokeSessions(rootOpts, cmd)
		},
	}

	return cmd
}

func runRevokeSessions(opts *RootOptions, cmd *cobra.Command) error {
	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := ops.RevokeSessions(cmd.Context(), st); err != nil {
		return WrapExitError(ExitFailure, "revoke-sessions failed", err)
	}
	slog.Info("session secret rotated")
	return nil
}
