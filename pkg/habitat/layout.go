package habitat

import (
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// ErrNoSelection is returned by operations that require a selected module
// when none is selected. The UI surfaces it as a "select a module" warning.
var ErrNoSelection = errors.New("no module selected")

// Layout is the single source of truth for the editor: the ordered module
// registry plus the selection. All mutation goes through its methods.
// Layout is not safe for concurrent use; the App serializes access.
type Layout struct {
	modules  []Module
	selected string // module id, "" = none
	palette  Palette
	rng      *rand.Rand
}

// New creates an empty layout with the default palette and a
// time-seeded RNG.
func New() *Layout {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded creates an empty layout whose random type and position choices
// are driven by the given seed. Tests use a fixed seed to make Add
// deterministic.
func NewSeeded(seed int64) *Layout {
	return &Layout{
		palette: DefaultPalette(),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// SetPalette replaces the per-type display defaults used by Add.
func (l *Layout) SetPalette(p Palette) {
	if p != nil {
		l.palette = p
	}
}

// Palette returns the per-type display defaults in use.
func (l *Layout) Palette() Palette {
	return l.palette
}

// Add creates a new module with a fresh id, a uniformly random type, the
// palette defaults for that type, DefaultSize, and a random position on
// the deck plane. The module is appended and becomes the selection.
func (l *Layout) Add() Module {
	t := ModuleTypes[l.rng.Intn(len(ModuleTypes))]
	def := l.palette.Def(t)
	m := Module{
		ID:    uuid.NewString(),
		Label: def.Label,
		Color: def.Color,
		Size:  DefaultSize,
		Type:  t,
		Position: Vec3{
			X: (l.rng.Float64()*2 - 1) * PositionBound,
			Z: (l.rng.Float64()*2 - 1) * PositionBound,
		},
	}
	l.modules = append(l.modules, m)
	l.selected = m.ID
	return m
}

// DeleteSelected removes the selected module and clears the selection.
// With no selection it returns ErrNoSelection and mutates nothing.
func (l *Layout) DeleteSelected() error {
	if l.selected == "" {
		return ErrNoSelection
	}
	for i, m := range l.modules {
		if m.ID == l.selected {
			l.modules = append(l.modules[:i], l.modules[i+1:]...)
			break
		}
	}
	// Selection can only ever point at the module being removed, so
	// clearing unconditionally is equivalent to clearing after removal.
	l.selected = ""
	return nil
}

// Select sets the selection to the module with the given id. It reports
// whether the id is present in the registry; unknown ids leave the
// selection unchanged.
func (l *Layout) Select(id string) bool {
	for _, m := range l.modules {
		if m.ID == id {
			l.selected = id
			return true
		}
	}
	return false
}

// Selected returns the currently selected module, or false when nothing
// is selected.
func (l *Layout) Selected() (Module, bool) {
	if l.selected == "" {
		return Module{}, false
	}
	for _, m := range l.modules {
		if m.ID == l.selected {
			return m, true
		}
	}
	return Module{}, false
}

// SelectedID returns the selected module id, or "" when none.
func (l *Layout) SelectedID() string {
	return l.selected
}

// updateSelected applies fn to the selected record in place. It reports
// whether a record was updated; with no selection it is a silent no-op.
func (l *Layout) updateSelected(fn func(*Module)) bool {
	if l.selected == "" {
		return false
	}
	for i := range l.modules {
		if l.modules[i].ID == l.selected {
			fn(&l.modules[i])
			return true
		}
	}
	return false
}

// SetLabel replaces the selected module's label.
func (l *Layout) SetLabel(label string) bool {
	return l.updateSelected(func(m *Module) { m.Label = label })
}

// SetColor replaces the selected module's display color.
func (l *Layout) SetColor(color string) bool {
	return l.updateSelected(func(m *Module) { m.Color = color })
}

// SetSize replaces the selected module's scale factor. No lower bound is
// enforced; the registry stores whatever the editor sends.
func (l *Layout) SetSize(size float64) bool {
	return l.updateSelected(func(m *Module) { m.Size = size })
}

// SetType replaces the selected module's shape type.
func (l *Layout) SetType(t ModuleType) bool {
	if !ValidType(t) {
		return false
	}
	return l.updateSelected(func(m *Module) { m.Type = t })
}

// SetPosition replaces the selected module's position.
func (l *Layout) SetPosition(p Vec3) bool {
	return l.updateSelected(func(m *Module) { m.Position = p })
}

// ApplyPositionUpdate moves the module named by the update, regardless of
// selection. This is the path drag and gizmo feedback takes; the dragged
// module is also the selected one in practice, but the message carries the
// id so the core never has to assume that.
func (l *Layout) ApplyPositionUpdate(u PositionUpdate) bool {
	for i := range l.modules {
		if l.modules[i].ID == u.ID {
			l.modules[i].Position = u.Position
			return true
		}
	}
	return false
}

// Replace discards the current registry and substitutes the given records
// verbatim, preserving their order. The selection is cleared since the old
// id may not exist in the new registry.
func (l *Layout) Replace(modules []Module) {
	l.modules = append([]Module(nil), modules...)
	l.selected = ""
}

// Modules returns a copy of the registry in insertion order. The result
// is never nil so an empty registry serializes as [], not null.
func (l *Layout) Modules() []Module {
	out := make([]Module, len(l.modules))
	copy(out, l.modules)
	return out
}

// Clone returns an independent copy of the layout for speculative
// evaluation: same records, selection, and palette, but a private RNG
// deterministically derived from the parent's so cloned Add sequences
// stay reproducible under a fixed seed. Mutating the clone never touches
// the parent.
func (l *Layout) Clone() *Layout {
	c := &Layout{
		modules:  append([]Module(nil), l.modules...),
		selected: l.selected,
		palette:  make(Palette, len(l.palette)),
		rng:      rand.New(rand.NewSource(l.rng.Int63())),
	}
	for t, d := range l.palette {
		c.palette[t] = d
	}
	return c
}

// Len returns the number of modules in the registry.
func (l *Layout) Len() int {
	return len(l.modules)
}
