package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	p := Load(t.TempDir())
	if p != Default() {
		t.Errorf("prefs = %+v, want defaults %+v", p, Default())
	}
}

func TestLoadInvalidFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, PrefsFilename), []byte("{{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if p := Load(dir); p != Default() {
		t.Errorf("prefs = %+v, want defaults", p)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, PrefsFilename),
		[]byte("window_width: 1920\nslot: station-a\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	p := Load(dir)
	if p.WindowWidth != 1920 {
		t.Errorf("WindowWidth = %d, want 1920", p.WindowWidth)
	}
	if p.Slot != "station-a" {
		t.Errorf("Slot = %q, want station-a", p.Slot)
	}
	if p.WindowHeight != Default().WindowHeight {
		t.Errorf("WindowHeight = %d, want default %d", p.WindowHeight, Default().WindowHeight)
	}
	if p.DefaultCrew != Default().DefaultCrew {
		t.Errorf("DefaultCrew = %d, want default %d", p.DefaultCrew, Default().DefaultCrew)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	want := Prefs{
		WindowWidth:  800,
		WindowHeight: 600,
		StoreDir:     "/tmp/layouts",
		Slot:         "slot-b",
		DefaultCrew:  6,
	}
	if err := Save(dir, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := Load(dir); got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}
