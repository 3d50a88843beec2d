package main

import (
	"fmt"
	"os"

	"github.com/aryankumar/stackup/internal/cli"
	"github.com/aryankumar/stackup/internal/util"
)

func main() {
	// Setup signal handling for graceful shutdown
	ctx := util.SetupSignalHandler()

	if err := cli.Execute(ctx); err != nil {
		// Failures inside a session were already printed with the log path
		if !cli.IsReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if hint := util.FriendlyError(err); hint != err.Error() {
				fmt.Fprintln(os.Stderr, hint)
			}
		}
		os.Exit(1)
	}
}
