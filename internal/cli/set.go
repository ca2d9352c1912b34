package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quillcms/quillconf/internal/ops"
	"github.com/quillcms/quillconf/internal/request"
)

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update configuration variables",
		Long: `Update configuration variables on an initialized store.

Reads one JSON object from standard input carrying any subset of the
updatable keys. Listed keys are overwritten in one transaction; absent
keys keep their values. The whole mapping is validated before anything
is written.

Example:
  echo '{"auth-cost": "12"}' | quillconf --db ./cvars.db set`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(rootOpts, cmd)
		},
	}

	return cmd
}

func runSet(opts *RootOptions, cmd *cobra.Command) error {
	mapping, err := request.DecodeMapping(cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitFailure, "invalid input mapping", err)
	}
	values, err := request.ValidateMapping(mapping, false)
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

	if err := ops.Update(cmd.Context(), st, values); err != nil {
		return WrapExitError(ExitFailure, "set failed", err)
	}
	slog.Info("configuration updated", "keys", len(values))
	return nil
}
