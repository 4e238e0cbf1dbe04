package cli

import (
	"fmt"

	"github.com/arnavsurve/keepalive/pkg/browser"
)

// InstallCmd downloads the playwright driver and Chromium.
type InstallCmd struct{}

func (i *InstallCmd) Run() error {
	logRouter, _, err := newRouter("", "")
	if err != nil {
		return err
	}
	defer logRouter.Close()
	cmdLogger := logRouter.Logger()

	cmdLogger.Info().Msg("Installing playwright driver and Chromium")
	if err := browser.Install(); err != nil {
		return fmt.Errorf("installing browser: %w", err)
	}
	cmdLogger.Info().Msg("Browser installed")
	return nil
}
