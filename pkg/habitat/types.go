package habitat

import (
	"fmt"
	"strings"
)

// ModuleType identifies the primitive shape of a habitat module.
// It is stored as its lowercase name so layout documents stay
// self-describing.
type ModuleType string

const (
	TypeCube     ModuleType = "cube"
	TypeSphere   ModuleType = "sphere"
	TypeCylinder ModuleType = "cylinder"
	TypeCone     ModuleType = "cone"
	TypeSolar    ModuleType = "solar"
	TypeTunnel   ModuleType = "tunnel"
)

// ModuleTypes lists every valid type in a fixed order. Add draws from this
// slice, so the order also fixes the meaning of a seeded random sequence.
var ModuleTypes = []ModuleType{
	TypeCube, TypeSphere, TypeCylinder, TypeCone, TypeSolar, TypeTunnel,
}

// ValidType reports whether t is a member of the fixed enumeration.
func ValidType(t ModuleType) bool {
	for _, m := range ModuleTypes {
		if t == m {
			return true
		}
	}
	return false
}

// ParseType converts a user-supplied string to a ModuleType.
func ParseType(s string) (ModuleType, error) {
	t := ModuleType(strings.ToLower(strings.TrimSpace(s)))
	if !ValidType(t) {
		return "", fmt.Errorf("unknown module type %q", s)
	}
	return t, nil
}

// Vec3 is a coordinate in habitat space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns the component-wise sum of two vectors.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Module is one placeable habitat component.
type Module struct {
	ID       string     `json:"id"`
	Label    string     `json:"label"`
	Color    string     `json:"color"`
	Size     float64    `json:"size"`
	Type     ModuleType `json:"type"`
	Position Vec3       `json:"position"`
}

// PositionUpdate is the message the viewport emits when a drag or a
// transform gizmo moves a module. The core consumes it without knowing
// which renderer produced it.
type PositionUpdate struct {
	ID       string `json:"id"`
	Position Vec3   `json:"position"`
}
