// Package config loads editor preferences. Preferences are read once at
// startup from a YAML file; a missing or invalid file silently falls back
// to defaults so the editor always starts.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PrefsFilename is the preferences file looked up in the data directory.
const PrefsFilename = "prefs.yaml"

// Prefs holds editor-only preferences persisted across runs. Layout data
// is separate and handled by the store.
type Prefs struct {
	WindowWidth  int    `yaml:"window_width"`
	WindowHeight int    `yaml:"window_height"`
	StoreDir     string `yaml:"store_dir,omitempty"` // default: data dir
	Slot         string `yaml:"slot,omitempty"`      // default save slot
	DefaultCrew  int    `yaml:"default_crew"`
	PalettePath  string `yaml:"palette,omitempty"` // optional YAML palette
}

// Default returns the default preferences.
func Default() Prefs {
	return Prefs{
		WindowWidth:  1280,
		WindowHeight: 800,
		Slot:         "habitat-layout",
		DefaultCrew:  4,
	}
}

// DataDir returns the per-user data directory for the editor.
func DataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "habkit")
}

// Load reads preferences from dir/prefs.yaml. If the file is missing or
// invalid, it returns Default() and does not create a file. Zero-valued
// fields in the file keep their defaults.
func Load(dir string) Prefs {
	p := Default()
	data, err := os.ReadFile(filepath.Join(dir, PrefsFilename))
	if err != nil {
		return p
	}
	var in Prefs
	if err := yaml.Unmarshal(data, &in); err != nil {
		return p
	}
	if in.WindowWidth > 0 {
		p.WindowWidth = in.WindowWidth
	}
	if in.WindowHeight > 0 {
		p.WindowHeight = in.WindowHeight
	}
	if in.StoreDir != "" {
		p.StoreDir = in.StoreDir
	}
	if in.Slot != "" {
		p.Slot = in.Slot
	}
	if in.DefaultCrew > 0 {
		p.DefaultCrew = in.DefaultCrew
	}
	if in.PalettePath != "" {
		p.PalettePath = in.PalettePath
	}
	return p
}

// Save writes preferences to dir/prefs.yaml, creating the directory if
// needed.
func Save(dir string, p Prefs) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, PrefsFilename), data, 0o644)
}
