package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quillcms/quillconf/internal/ops"
)

// NewResetPasswordCommand creates the reset-password command.
func NewResetPasswordCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Force the admin password to be re-established",
		Long: `Rotate the session-signing secret and mark the admin password as
unset, in one transaction. Authentication fails until a new password is
established through the credential-setting tool.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResetPassword(rootOpts, cmd)
		},
	}

	return cmd
}

func runResetPassword(opts *RootOptions, cmd *cobra.Command) error {
	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := ops.ResetPassword(cmd.Context(), st); err != nil {
		return WrapExitError(ExitFailure, "reset-password failed", err)
	}
	slog.Info("password reset to sentinel, session secret rotated")
	return nil
}
