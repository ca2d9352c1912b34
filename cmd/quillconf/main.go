package main

import (
	"fmt"
	"os"

	"github.com/quillcms/quillconf/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "quillconf: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
