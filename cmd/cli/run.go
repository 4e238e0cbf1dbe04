package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arnavsurve/keepalive/pkg/browser"
	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/arnavsurve/keepalive/pkg/engine"
	"github.com/arnavsurve/keepalive/pkg/security"
	"github.com/google/uuid"
)

type RunCmd struct {
	Site string `arg:"" help:"Site to renew (see 'keepalive sites')."`
	SiteFlags

	Headless      bool   `help:"Force a headless browser." xor:"display"`
	Headed        bool   `help:"Force a visible browser window." xor:"display"`
	Channel       string `help:"Browser channel, e.g. chrome."`
	ScreenshotDir string `help:"Directory for diagnostic screenshots." type:"path"`
	LogDir        string `help:"Directory for JSON run logs." default:".keepalive/logs"`
}

func (r *RunCmd) options(cat *core.Catalog) core.Options {
	opts := core.Options{
		Channel:       r.Channel,
		ScreenshotDir: r.ScreenshotDir,
	}
	if opts.ScreenshotDir == "" {
		opts.ScreenshotDir = cat.ScreenshotDir
	}
	switch {
	case r.Headless:
		opts.Headless = &r.Headless
	case r.Headed:
		headless := false
		opts.Headless = &headless
	}
	return opts
}

func (r *RunCmd) Run() error {
	runID := uuid.New().String()

	logRouter, logFilePath, err := newRouter(r.LogDir, runID)
	if err != nil {
		return err
	}
	cmdLogger := logRouter.Logger().With().Str("run_id", runID).Logger()

	// Graceful shutdown of logging sinks
	defer func() {
		if err := logRouter.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during log shutdown: %v\n", err)
		}
	}()

	loadDotEnv(cmdLogger)

	cat, site, creds, err := resolveSite(r.Sites, r.Site)
	if err != nil {
		cmdLogger.Error().Err(err).Msgf("Could not resolve site %q", r.Site)
		return err
	}
	// Attach the redactor before anything derived from credentials is logged.
	logRouter.Redactor = security.ForCredentials(creds)

	cmdLogger.Info().Msgf("Starting renewal run with ID: %s", runID)
	if logFilePath != "" {
		cmdLogger.Info().Msgf("Logs will be saved to %q", logFilePath)
	}
	cmdLogger.Info().Str("credentials", creds.String()).Msgf("Loaded site %q", site.Name)

	cfg := core.NewConfig(site, creds, r.options(cat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator := engine.NewOrchestrator(cfg, &browser.PlaywrightLauncher{Logger: cmdLogger}, cmdLogger)
	if err := orchestrator.Run(ctx); err != nil {
		return err
	}

	if logFilePath != "" {
		cmdLogger.Info().Msgf("Renewal completed successfully. Logs can be found at %q", logFilePath)
	}
	return nil
}
