package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/arnavsurve/keepalive/pkg/log"
	"github.com/arnavsurve/keepalive/pkg/log/sinks"
	"github.com/arnavsurve/keepalive/pkg/types"
	"github.com/joho/godotenv"
)

// SiteFlags select a site and the optional site file it is read from.
type SiteFlags struct {
	Sites string `help:"YAML site file merged over the built-in sites." type:"path" env:"KEEPALIVE_SITES"`
}

// newRouter returns a router writing to the console and, when logDir is
// set, to <logDir>/<runID>.json.
func newRouter(logDir, runID string) (*log.Router, string, error) {
	logRouter := log.NewRouter(sinks.NewConsoleSink())
	if logDir == "" {
		return logRouter, "", nil
	}
	logFilePath := filepath.Join(logDir, fmt.Sprintf("%s.json", runID))
	fileSink, err := sinks.NewFileSink(logFilePath)
	if err != nil {
		return nil, "", fmt.Errorf("creating file log sink: %w", err)
	}
	logRouter.AddSink(fileSink)
	return logRouter, logFilePath, nil
}

func loadDotEnv(logger types.Logger) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Err(err).Msg("No .env file loaded, relying on existing ENV")
	}
}

// resolveSite loads the catalog, picks name and reads its credentials
// from the environment.
func resolveSite(sitesFile, name string) (*core.Catalog, core.Site, core.Credentials, error) {
	cat, err := core.LoadCatalog(sitesFile, os.LookupEnv)
	if err != nil {
		return nil, core.Site{}, core.Credentials{}, fmt.Errorf("loading sites: %w", err)
	}
	site, err := cat.Site(name)
	if err != nil {
		return nil, core.Site{}, core.Credentials{}, err
	}
	site = core.ApplyEnv(site, os.LookupEnv)
	return cat, site, core.LoadCredentials(site, os.LookupEnv), nil
}
