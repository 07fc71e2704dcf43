package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/voltlab/cdckit/internal/cli"
	"github.com/voltlab/cdckit/pkg/buildinfo"
)

func main() {
	cli.SetVersion(buildinfo.Version, buildinfo.Commit, buildinfo.Date)

	if err := cli.Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
