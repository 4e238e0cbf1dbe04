package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arnavsurve/keepalive/pkg/types"
	"gopkg.in/yaml.v3"
)

// Catalog is the set of sites known to a run: the built-in presets, with
// any site file merged over them.
type Catalog struct {
	Sites map[string]Site
	// ScreenshotDir comes from the site file, resolved against its
	// directory. Empty when unset.
	ScreenshotDir string
}

type siteFile struct {
	ScreenshotDir string      `yaml:"screenshot_dir,omitempty"`
	Sites         []yaml.Node `yaml:"sites"`
}

// LoadCatalog returns the presets merged with the site file at path. An
// entry whose name matches a preset overrides only the fields it sets;
// other entries define new sites. {{ env.NAME }} placeholders are
// expanded before parsing. An empty path yields the presets alone.
func LoadCatalog(path string, lookup LookupFunc) (*Catalog, error) {
	cat := &Catalog{Sites: Presets()}
	if path == "" {
		return cat, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading site file %q: %v", types.ErrConfiguration, path, err)
	}
	expanded, err := ExpandEnv(string(data), lookup)
	if err != nil {
		return nil, fmt.Errorf("%w: site file %q: %v", types.ErrConfiguration, path, err)
	}

	var file siteFile
	if err := yaml.Unmarshal([]byte(expanded), &file); err != nil {
		return nil, fmt.Errorf("%w: parsing site file YAML: %v", types.ErrConfiguration, err)
	}

	seen := make(map[string]bool)
	for i := range file.Sites {
		node := &file.Sites[i]
		var head struct {
			Name string `yaml:"name"`
		}
		if err := node.Decode(&head); err != nil {
			return nil, fmt.Errorf("%w: site %d: %v", types.ErrConfiguration, i, err)
		}
		if head.Name == "" {
			return nil, fmt.Errorf("%w: site %d is missing 'name'", types.ErrConfiguration, i)
		}
		if seen[head.Name] {
			return nil, fmt.Errorf("%w: duplicate site name: %q", types.ErrConfiguration, head.Name)
		}
		seen[head.Name] = true

		site := cat.Sites[head.Name]
		if err := node.Decode(&site); err != nil {
			return nil, fmt.Errorf("%w: site %q: %v", types.ErrConfiguration, head.Name, err)
		}
		cat.Sites[head.Name] = site
	}

	if file.ScreenshotDir != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("determining absolute path for site file %q: %w", path, err)
		}
		cat.ScreenshotDir = ResolvePath(filepath.Dir(abs), file.ScreenshotDir)
	}
	return cat, nil
}

// Site looks up a site by name.
func (c *Catalog) Site(name string) (Site, error) {
	site, ok := c.Sites[name]
	if !ok {
		return Site{}, fmt.Errorf("%w: unknown site %q (known: %v)", types.ErrConfiguration, name, SiteNames(c.Sites))
	}
	return site, nil
}
