// Package seed loads starter poem templates from YAML or TOML files.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bakchoddost/bakchoddost/internal/poem"
	"github.com/bakchoddost/bakchoddost/internal/store"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSet []byte

// Entry is one template in a seed file.
type Entry struct {
	Text         string `yaml:"text" toml:"text"`
	Instructions string `yaml:"instructions,omitempty" toml:"instructions,omitempty"`
}

// Set is the contents of a seed file.
type Set struct {
	Templates []Entry `yaml:"templates" toml:"templates"`
}

// Default returns the built-in starter templates.
func Default() (*Set, error) {
	return parse(defaultSet, "default.yaml")
}

// LoadFile reads a seed file; the extension selects YAML or TOML.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parse(data, path)
}

// LoadGlob reads every seed file matching pattern (doublestar syntax, so
// "seeds/**/*.yaml" works) and concatenates them in path order.
func LoadGlob(pattern string) (*Set, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no seed files match %q", pattern)
	}
	sort.Strings(paths)

	all := &Set{}
	for _, p := range paths {
		set, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		all.Templates = append(all.Templates, set.Templates...)
	}
	return all, nil
}

func parse(data []byte, name string) (*Set, error) {
	var set Set
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("unsupported seed file type %q", ext)
	}
	return &set, nil
}

// ApplyOptions controls Apply.
type ApplyOptions struct {
	// Force inserts even when templates already exist.
	Force bool
}

// Apply inserts the set's templates. Unless forced it does nothing when the
// store already has templates. Every entry is validated before anything is
// written. It returns the number inserted.
func Apply(ctx context.Context, templates *store.TemplateStore, set *Set, opts ApplyOptions) (int, error) {
	existing, err := templates.Count(ctx)
	if err != nil {
		return 0, err
	}
	if existing > 0 && !opts.Force {
		slog.Info("Templates already present, skipping seed", "count", existing)
		return 0, nil
	}

	for i, e := range set.Templates {
		if _, err := poem.ValidateAndAnalyze(e.Text); err != nil {
			return 0, fmt.Errorf("template %d: %w", i+1, err)
		}
	}

	inserted := 0
	for _, e := range set.Templates {
		if _, err := templates.Create(ctx, nil, e.Text, e.Instructions); err != nil {
			return inserted, fmt.Errorf("insert template %d: %w", inserted+1, err)
		}
		inserted++
	}
	slog.Info("Seeded poem templates", "count", inserted)
	return inserted, nil
}
