package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quillcms/quillconf/internal/ops"
	"github.com/quillcms/quillconf/internal/request"
)

// GetResult is the payload for a successful get.
type GetResult struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Date  string `json:"date,omitempty"` // decoded calendar form, epoch only
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Read one configuration variable",
		Long: `Read one queryable configuration variable.

Prints key=value. For the epoch key the decoded calendar date is printed
on a second line. The privileged keys auth-secret and auth-pswd are
never readable.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runGet(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	key, err := request.ParseKey(name)
	if err != nil {
		return outputGetError(formatter, err)
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

	res, err := ops.Query(cmd.Context(), st, key)
	if err != nil {
		return outputGetError(formatter, err)
	}

	result := GetResult{Key: string(res.Key), Value: res.Value}
	if res.Decoded != nil {
		result.Date = res.Decoded.String()
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s=%s\n", result.Key, result.Value)
	if result.Date != "" {
		fmt.Fprintf(formatter.Writer, "date=%s\n", result.Date)
	}
	return nil
}

func outputGetError(formatter *OutputFormatter, err error) error {
	if formatter.Format == "json" {
		_ = formatter.Error(err.Error(), nil)
	}
	return WrapExitError(ExitFailure, "get failed", err)
}
