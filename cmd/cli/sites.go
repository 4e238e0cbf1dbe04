package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arnavsurve/keepalive/pkg/core"
	"github.com/fatih/color"
)

// SitesCmd lists the known sites and their steps.
type SitesCmd struct {
	SiteFlags
}

func (s *SitesCmd) Run() error {
	cat, err := core.LoadCatalog(s.Sites, os.LookupEnv)
	if err != nil {
		return fmt.Errorf("loading sites: %w", err)
	}
	printSites(os.Stdout, cat)
	return nil
}

func printSites(w io.Writer, cat *core.Catalog) {
	name := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.FgHiBlack).SprintFunc()

	for _, n := range core.SiteNames(cat.Sites) {
		site := cat.Sites[n].WithDefaults()
		fmt.Fprintf(w, "%s  %s\n", name(site.Name), dim(site.Description))
		fmt.Fprintf(w, "  target:  %s\n", site.TargetURL)
		keys := core.KeysFor(site.EnvPrefix)
		fmt.Fprintf(w, "  env:     %s | %s + %s\n", keys.Cookie, keys.Email, keys.Password)

		ids := make([]string, len(site.Steps))
		for i, st := range site.Steps {
			ids[i] = fmt.Sprintf("%s(%s)", st.ID, st.Uses)
		}
		fmt.Fprintf(w, "  steps:   %s\n", strings.Join(ids, " -> "))
	}
}
