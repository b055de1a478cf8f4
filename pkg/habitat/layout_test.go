package habitat

import (
	"reflect"
	"testing"
)

func TestAddAssignsUniqueIDsAndValidTypes(t *testing.T) {
	l := NewSeeded(1)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		m := l.Add()
		if m.ID == "" {
			t.Fatalf("add %d: empty id", i)
		}
		if seen[m.ID] {
			t.Fatalf("add %d: duplicate id %s", i, m.ID)
		}
		seen[m.ID] = true
		if !ValidType(m.Type) {
			t.Errorf("add %d: invalid type %q", i, m.Type)
		}
		if m.Size != DefaultSize {
			t.Errorf("add %d: size = %v, want %v", i, m.Size, DefaultSize)
		}
		if m.Position.X < -PositionBound || m.Position.X > PositionBound ||
			m.Position.Z < -PositionBound || m.Position.Z > PositionBound {
			t.Errorf("add %d: position %+v outside bound", i, m.Position)
		}
	}
	if l.Len() != 50 {
		t.Errorf("registry length = %d, want 50", l.Len())
	}
}

func TestAddIsDeterministicForFixedSeed(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)
	for i := 0; i < 12; i++ {
		ma := a.Add()
		mb := b.Add()
		if ma.Type != mb.Type {
			t.Errorf("add %d: types diverged: %q vs %q", i, ma.Type, mb.Type)
		}
		if ma.Position != mb.Position {
			t.Errorf("add %d: positions diverged: %+v vs %+v", i, ma.Position, mb.Position)
		}
	}
}

func TestAddAutoSelectsAndUsesPaletteDefaults(t *testing.T) {
	l := NewSeeded(7)
	m := l.Add()
	if l.SelectedID() != m.ID {
		t.Errorf("selection = %q, want %q", l.SelectedID(), m.ID)
	}
	def := DefaultPalette().Def(m.Type)
	if m.Label != def.Label {
		t.Errorf("label = %q, want %q", m.Label, def.Label)
	}
	if m.Color != def.Color {
		t.Errorf("color = %q, want %q", m.Color, def.Color)
	}
}

func TestDeleteWithoutSelection(t *testing.T) {
	l := NewSeeded(3)
	l.Add()
	l.Add()
	before := l.Modules()
	l.Replace(before) // Replace clears the selection.

	if err := l.DeleteSelected(); err != ErrNoSelection {
		t.Fatalf("err = %v, want ErrNoSelection", err)
	}
	if !reflect.DeepEqual(l.Modules(), before) {
		t.Error("registry changed on delete without selection")
	}
}

func TestDeleteRemovesSelectedAndClearsSelection(t *testing.T) {
	l := NewSeeded(3)
	first := l.Add()
	second := l.Add()
	if !l.Select(first.ID) {
		t.Fatal("Select(first) failed")
	}

	if err := l.DeleteSelected(); err != nil {
		t.Fatalf("DeleteSelected: %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("registry length = %d, want 1", l.Len())
	}
	if l.Modules()[0].ID != second.ID {
		t.Error("wrong module removed")
	}
	if l.SelectedID() != "" {
		t.Errorf("selection = %q, want cleared", l.SelectedID())
	}
}

func TestUpdateFieldWithoutSelectionIsNoOp(t *testing.T) {
	l := NewSeeded(9)
	l.Add()
	before := l.Modules()
	l.Replace(before)

	if l.SetLabel("lab") || l.SetColor("#fff") || l.SetSize(3) ||
		l.SetType(TypeCone) || l.SetPosition(Vec3{X: 1}) {
		t.Error("update reported a change without a selection")
	}
	if !reflect.DeepEqual(l.Modules(), before) {
		t.Error("registry changed without a selection")
	}
}

func TestUpdateFieldChangesOnlyNamedField(t *testing.T) {
	l := NewSeeded(9)
	m := l.Add()
	other := l.Add()
	l.Select(m.ID)

	if !l.SetLabel("Crew Quarters") {
		t.Fatal("SetLabel reported no change")
	}

	got, ok := l.Selected()
	if !ok {
		t.Fatal("Selected returned no module")
	}
	if got.Label != "Crew Quarters" {
		t.Errorf("label = %q, want %q", got.Label, "Crew Quarters")
	}
	// Everything except the label is untouched.
	want := m
	want.Label = "Crew Quarters"
	if got != want {
		t.Errorf("record = %+v, want %+v", got, want)
	}
	// The other record and the order are untouched.
	ms := l.Modules()
	if len(ms) != 2 || ms[0].ID != m.ID || ms[1] != other {
		t.Error("unselected record or order changed")
	}
}

func TestSetTypeRejectsUnknownType(t *testing.T) {
	l := NewSeeded(2)
	m := l.Add()
	if l.SetType("pyramid") {
		t.Error("SetType accepted an unknown type")
	}
	got, _ := l.Selected()
	if got.Type != m.Type {
		t.Errorf("type changed to %q", got.Type)
	}
}

func TestApplyPositionUpdate(t *testing.T) {
	l := NewSeeded(5)
	a := l.Add()
	b := l.Add() // b is now selected

	// Updates address modules by id, not by selection.
	want := Vec3{X: 1.5, Y: 0.25, Z: -3}
	if !l.ApplyPositionUpdate(PositionUpdate{ID: a.ID, Position: want}) {
		t.Fatal("update for known id rejected")
	}
	ms := l.Modules()
	if ms[0].Position != want {
		t.Errorf("position = %+v, want %+v", ms[0].Position, want)
	}
	if ms[1].Position != b.Position {
		t.Error("unrelated module moved")
	}

	if l.ApplyPositionUpdate(PositionUpdate{ID: "ghost"}) {
		t.Error("update for unknown id accepted")
	}
}

func TestReplaceIsWholesaleAndClearsSelection(t *testing.T) {
	l := NewSeeded(4)
	l.Add()
	l.Add()

	repl := []Module{
		{ID: "m-1", Label: "Hub", Color: "#fff", Size: 2, Type: TypeTunnel},
		{ID: "m-2", Label: "Dome", Color: "#abc", Size: 1, Type: TypeSphere, Position: Vec3{X: 4}},
	}
	l.Replace(repl)

	if !reflect.DeepEqual(l.Modules(), repl) {
		t.Error("registry does not match replacement")
	}
	if l.SelectedID() != "" {
		t.Error("selection survived a wholesale replace")
	}

	// The layout owns its copy; mutating the caller's slice is invisible.
	repl[0].Label = "changed"
	if l.Modules()[0].Label != "Hub" {
		t.Error("Replace aliased the caller's slice")
	}
}

func TestModulesIsNeverNil(t *testing.T) {
	l := NewSeeded(8)
	if l.Modules() == nil {
		t.Fatal("empty registry returned nil, want [] so JSON is an array")
	}
	l.Add()
	if err := l.DeleteSelected(); err != nil {
		t.Fatalf("DeleteSelected: %v", err)
	}
	if l.Modules() == nil {
		t.Error("emptied registry returned nil")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	l := NewSeeded(11)
	m := l.Add()

	c := l.Clone()
	if !reflect.DeepEqual(c.Modules(), l.Modules()) {
		t.Fatal("clone registry differs from parent")
	}
	if c.SelectedID() != m.ID {
		t.Errorf("clone selection = %q, want %q", c.SelectedID(), m.ID)
	}

	c.Add()
	c.SetLabel("Scratch")
	c.SetPalette(Palette{TypeCube: {Label: "X", Color: "#000"}})

	if l.Len() != 1 {
		t.Errorf("parent length = %d, want 1 after mutating the clone", l.Len())
	}
	got, _ := l.Selected()
	if got != m {
		t.Errorf("parent record = %+v, want untouched %+v", got, m)
	}
	if l.Palette().Def(TypeCube).Label == "X" {
		t.Error("clone palette aliases the parent's")
	}
}

func TestCloneAddIsDeterministic(t *testing.T) {
	a := NewSeeded(21).Clone()
	b := NewSeeded(21).Clone()
	for i := 0; i < 8; i++ {
		ma := a.Add()
		mb := b.Add()
		if ma.Type != mb.Type || ma.Position != mb.Position {
			t.Errorf("add %d: clones of equal seeds diverged: %+v vs %+v", i, ma, mb)
		}
	}
}

func TestSelectUnknownIDLeavesSelection(t *testing.T) {
	l := NewSeeded(6)
	m := l.Add()
	if l.Select("nope") {
		t.Error("Select accepted an unknown id")
	}
	if l.SelectedID() != m.ID {
		t.Errorf("selection = %q, want %q", l.SelectedID(), m.ID)
	}
}

func TestParseType(t *testing.T) {
	cases := []struct {
		in      string
		want    ModuleType
		wantErr bool
	}{
		{"cube", TypeCube, false},
		{"Sphere", TypeSphere, false},
		{" tunnel ", TypeTunnel, false},
		{"SOLAR", TypeSolar, false},
		{"prism", "", true},
		{"", "", true},
	}
	for _, c := range cases {
		got, err := ParseType(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("ParseType(%q) err = %v, wantErr %v", c.in, err, c.wantErr)
			continue
		}
		if got != c.want {
			t.Errorf("ParseType(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
