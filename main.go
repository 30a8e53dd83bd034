package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mrlokans/mangashelf/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cmd := cli.NewRootCommand(fmt.Sprintf("%s (%s)", Version, Commit))
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
