package cli

import (
	"github.com/arnavsurve/keepalive/pkg/browser"
	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/arnavsurve/keepalive/pkg/engine"
	"github.com/arnavsurve/keepalive/pkg/security"
)

// CheckCmd validates a site definition and its credentials without
// launching a browser.
type CheckCmd struct {
	Site string `arg:"" help:"Site to check."`
	SiteFlags
}

func (c *CheckCmd) Run() error {
	logRouter, _, err := newRouter("", "")
	if err != nil {
		return err
	}
	defer logRouter.Close()
	cmdLogger := logRouter.Logger()

	loadDotEnv(cmdLogger)

	_, site, creds, err := resolveSite(c.Sites, c.Site)
	if err != nil {
		cmdLogger.Error().Err(err).Msgf("Could not resolve site %q", c.Site)
		return err
	}
	logRouter.Redactor = security.ForCredentials(creds)
	cmdLogger.Info().Msgf("Validating site %q", site.Name)

	cfg := core.NewConfig(site, creds, core.Options{})
	orchestrator := engine.NewOrchestrator(cfg, &browser.PlaywrightLauncher{}, cmdLogger)
	if err := orchestrator.Validate(); err != nil {
		cmdLogger.Error().Err(err).Msg("Site validation failed")
		return err
	}

	cmdLogger.Info().
		Str("credentials", creds.String()).
		Int("steps", len(site.Steps)).
		Msg("Successfully validated site configuration ✅")
	return nil
}
