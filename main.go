package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/arnavsurve/keepalive/cmd/cli"
	"github.com/arnavsurve/keepalive/pkg/engine"
)

var CLI struct {
	Run     cli.RunCmd     `cmd:"" help:"Log in to a site and run its renewal steps."`
	Check   cli.CheckCmd   `cmd:"" help:"Validate a site definition and its credentials without a browser."`
	Sites   cli.SitesCmd   `cmd:"" help:"List the known sites and their steps."`
	Install cli.InstallCmd `cmd:"" help:"Install the playwright driver and Chromium."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("keepalive"),
		kong.Description("Keeps free hosting plans alive by renewing them in a real browser."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "keepalive: %v\n", err)
		os.Exit(engine.ExitCode(err))
	}
}
