package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quillcms/quillconf/internal/ops"
	"github.com/quillcms/quillconf/internal/request"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <yyyy-mm-ddThh:mm:ss>",
		Short: "Populate an empty store",
		Long: `Populate an empty cvar store in one transaction.

The datetime argument fixes the forum epoch: the floating local
wall-clock moment all post and archive times are measured against. The
remaining settings are read from standard input as one JSON object that
must carry every updatable key.

Example:
  quillconf --db ./cvars.db init 2022-05-01T13:25:00 < settings.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runInit(opts *RootOptions, arg string, cmd *cobra.Command) error {
	when, err := request.ParseDateTime(arg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid datetime argument", err)
	}

	// Input is consumed and validated completely before any transaction
	// opens; a bad field aborts with the store untouched.
	mapping, err := request.DecodeMapping(cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitFailure, "invalid input mapping", err)
	}
	values, err := request.ValidateMapping(mapping, true)
	if err != nil {
		return WrapExitError(ExitFailure, "invalid input mapping", err)
	}
	slog.Debug("mapping validated", "keys", len(values))

	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := ops.Initialize(cmd.Context(), st, when, values); err != nil {
		return WrapExitError(ExitFailure, "init failed", err)
	}
	slog.Info("store initialized", "epoch", arg)
	return nil
}
