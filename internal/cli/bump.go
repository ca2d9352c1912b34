package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quillcms/quillconf/internal/ops"
	"github.com/quillcms/quillconf/internal/request"
)

// NewBumpCommand creates the bump command.
func NewBumpCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bump <floor>",
		Short: "Raise the lastmod counter to a floor",
		Long: `Raise the lastmod cache-validation counter to a floor value.

The floor is 1-8 hexadecimal digits. When the floor exceeds the current
counter the counter is overwritten; otherwise it is left alone. The
store's own commit bump advances the counter by one either way.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBump(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runBump(opts *RootOptions, arg string, cmd *cobra.Command) error {
	floor, err := request.ParseFloor(arg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid floor argument", err)
	}

	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := ops.Bump(cmd.Context(), st, floor); err != nil {
		return WrapExitError(ExitFailure, "bump failed", err)
	}
	slog.Debug("counter floor applied", "floor", arg)
	return nil
}
