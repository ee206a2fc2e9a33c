// SPDX-License-Identifier: AGPL-3.0-or-later
// dmr-p25-decoder - SDR digital-voice decoder for trunked P25/DMR systems

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/arancormonk/dsd-neo-sub008/cmd"
	"github.com/arancormonk/dsd-neo-sub008/internal/config"
	"github.com/arancormonk/dsd-neo-sub008/internal/sdk"
	"github.com/USA-RedDragon/configulator"
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := cmd.NewCommand(sdk.Version, sdk.GitCommit)

	c, err := configulator.New[config.Config]()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, err := c.Bind(context.Background(), rootCmd)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
