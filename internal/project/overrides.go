package project

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"gddoc/internal/config"
)

// OverridesFile is the per-project settings file checked into the Godot
// project itself, overriding the user-level configuration.
const OverridesFile = "docgen.toml"

// Overrides are the settings a project may pin in docgen.toml. Zero
// values leave the corresponding configuration untouched.
type Overrides struct {
	// Output is the directory generated pages are written to.
	Output string `toml:"output,omitempty"`

	// Report is the path of the YAML run summary.
	Report string `toml:"report,omitempty"`

	// Ignore lists directory names excluded from the scan.
	Ignore []string `toml:"ignore,omitempty"`

	// IgnoreNodes is a pattern of scene node names to leave
	// undocumented.
	IgnoreNodes string `toml:"ignore_nodes,omitempty"`

	// ExportLevel is the zstd level used by the export command.
	ExportLevel int `toml:"export_level,omitempty"`
}

// LoadOverrides reads docgen.toml from the project root. The second
// return value reports whether the file exists.
func LoadOverrides(root string) (*Overrides, bool, error) {
	data, err := os.ReadFile(filepath.Join(root, OverridesFile))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", OverridesFile, err)
	}

	var o Overrides
	if err := toml.Unmarshal(data, &o); err != nil {
		return nil, false, fmt.Errorf("failed to parse %s: %w", OverridesFile, err)
	}
	return &o, true, nil
}

// Apply folds the overrides into a loaded configuration.
func (o *Overrides) Apply(cfg *config.Config) {
	if o.Output != "" {
		cfg.Paths.Output = o.Output
	}
	if o.Report != "" {
		cfg.Paths.Report = o.Report
	}
	if len(o.Ignore) > 0 {
		cfg.Scan.Ignore = o.Ignore
	}
	if o.IgnoreNodes != "" {
		cfg.Scan.IgnoreNode = o.IgnoreNodes
	}
	if o.ExportLevel != 0 {
		cfg.Export.Level = o.ExportLevel
	}
}
