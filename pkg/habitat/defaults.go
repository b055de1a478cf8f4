package habitat

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSize is the scale factor assigned to freshly added modules.
const DefaultSize = 1.0

// PositionBound is the half-extent of the square region on the deck plane
// in which new modules are placed. Positions are drawn uniformly from
// [-PositionBound, PositionBound] on X and Z; Y starts at deck level.
const PositionBound = 6.0

// TypeDef carries the display defaults for one module type. Definitions
// can be themed via a YAML palette file; the compiled-in set below matches
// the stock frontend palette.
type TypeDef struct {
	Label string `yaml:"label"`
	Color string `yaml:"color"`
}

// builtinDefs are the compiled-in per-type defaults.
var builtinDefs = map[ModuleType]TypeDef{
	TypeCube:     {Label: "Cube", Color: "#4A90D9"},
	TypeSphere:   {Label: "Sphere", Color: "#E67E22"},
	TypeCylinder: {Label: "Cylinder", Color: "#2ECC71"},
	TypeCone:     {Label: "Cone", Color: "#9B59B6"},
	TypeSolar:    {Label: "Solar", Color: "#F39C12"},
	TypeTunnel:   {Label: "Tunnel", Color: "#1ABC9C"},
}

// Palette maps module types to their display defaults.
type Palette map[ModuleType]TypeDef

// DefaultPalette returns a copy of the compiled-in palette.
func DefaultPalette() Palette {
	p := make(Palette, len(builtinDefs))
	for t, d := range builtinDefs {
		p[t] = d
	}
	return p
}

// LoadPalette reads a YAML palette file and overlays it on the compiled-in
// defaults. Entries for unknown types are rejected; types missing from the
// file keep their builtin definition.
func LoadPalette(path string) (Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]TypeDef
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	p := DefaultPalette()
	for name, def := range raw {
		t, err := ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("palette %s: %w", path, err)
		}
		merged := p[t]
		if def.Label != "" {
			merged.Label = def.Label
		}
		if def.Color != "" {
			merged.Color = def.Color
		}
		p[t] = merged
	}
	return p, nil
}

// Def returns the display defaults for t, falling back to the builtin
// definition when the palette has no entry.
func (p Palette) Def(t ModuleType) TypeDef {
	if d, ok := p[t]; ok {
		return d
	}
	return builtinDefs[t]
}
