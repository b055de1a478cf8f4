package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/kferr/habkit/pkg/config"
	"github.com/kferr/habkit/pkg/habitat"
	"github.com/kferr/habkit/pkg/kernel"
	"github.com/kferr/habkit/pkg/kernel/sdfx"
	"github.com/kferr/habkit/pkg/lifesupport"
	"github.com/kferr/habkit/pkg/script"
	"github.com/kferr/habkit/pkg/store"
	"github.com/kferr/habkit/pkg/tessellate"
)

// layoutChangedEvent is emitted to the frontend whenever the registry,
// selection, or crew count changes, so the viewport re-renders.
const layoutChangedEvent = "layout:changed"

// App is the Wails backend. It owns the layout, crew count, and
// persistence, and exposes methods to the frontend via bindings. Bindings
// may be invoked concurrently by the runtime, so all state access is
// serialized by mu.
type App struct {
	ctx context.Context

	mu     sync.Mutex
	layout *habitat.Layout
	crew   int

	store  *store.Store
	slot   string
	tess   *tessellate.Tessellator
	script *script.Engine
}

// Snapshot is the full editor state sent to the frontend after every
// operation. Warning and Error carry the user-visible messages for the
// two failure cases the UI knows about.
type Snapshot struct {
	Modules  []habitat.Module    `json:"modules"`
	Selected string              `json:"selected"`
	Crew     int                 `json:"crew"`
	Estimate lifesupport.Display `json:"estimate"`
	Warning  string              `json:"warning,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// MeshResult is the JSON-serializable mesh response for one module shape.
type MeshResult struct {
	Mesh  *kernel.Mesh `json:"mesh,omitempty"`
	Error string       `json:"error,omitempty"`
}

// ScriptError is a JSON-serializable console error for the frontend.
type ScriptError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ScriptResult bundles the state snapshot and any console errors.
type ScriptResult struct {
	Snapshot Snapshot      `json:"snapshot"`
	Errors   []ScriptError `json:"errors"`
}

// NewApp creates an App from the on-disk preferences.
func NewApp() *App {
	return NewAppWithPrefs(config.Load(config.DataDir()))
}

// NewAppWithPrefs creates an App with explicit preferences. Tests use it
// with a temporary store directory.
func NewAppWithPrefs(p config.Prefs) *App {
	storeDir := p.StoreDir
	if storeDir == "" {
		storeDir = filepath.Join(config.DataDir(), "layouts")
	}
	layout := habitat.New()
	if p.PalettePath != "" {
		if pal, err := habitat.LoadPalette(p.PalettePath); err != nil {
			slog.Warn("palette not loaded, using defaults", "path", p.PalettePath, "err", err)
		} else {
			layout.SetPalette(pal)
		}
	}
	return &App{
		layout: layout,
		crew:   p.DefaultCrew,
		store:  store.New(storeDir),
		slot:   p.Slot,
		tess:   tessellate.New(sdfx.New()),
		script: script.NewEngine(),
	}
}

// startup is called by Wails on app startup. The context is saved so
// dialog and event runtime methods can be used later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// snapshotLocked builds a Snapshot. Callers hold mu.
func (a *App) snapshotLocked() Snapshot {
	return Snapshot{
		Modules:  a.layout.Modules(),
		Selected: a.layout.SelectedID(),
		Crew:     a.crew,
		Estimate: lifesupport.ForCrew(a.crew).Display(),
	}
}

// notifyChanged tells the viewport to re-render. Safe to call without a
// live Wails context (headless tests).
func (a *App) notifyChanged() {
	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, layoutChangedEvent)
	}
}

// warn shows a blocking warning dialog when a window context exists.
func (a *App) warn(title, message string) {
	if a.ctx == nil {
		return
	}
	_, _ = runtime.MessageDialog(a.ctx, runtime.MessageDialogOptions{
		Type:    runtime.WarningDialog,
		Title:   title,
		Message: message,
	})
}

// Snapshot returns the current editor state.
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// AddModule creates a new randomly-typed module and selects it.
func (a *App) AddModule() Snapshot {
	a.mu.Lock()
	m := a.layout.Add()
	snap := a.snapshotLocked()
	a.mu.Unlock()

	slog.Debug("module added", "id", m.ID, "type", m.Type)
	a.notifyChanged()
	return snap
}

// DeleteSelected removes the selected module. With no selection the
// registry is untouched and the snapshot carries a warning.
func (a *App) DeleteSelected() Snapshot {
	a.mu.Lock()
	err := a.layout.DeleteSelected()
	snap := a.snapshotLocked()
	a.mu.Unlock()

	if err != nil {
		snap.Warning = "Select a module to delete first."
		a.warn("No module selected", snap.Warning)
		return snap
	}
	a.notifyChanged()
	return snap
}

// SelectModule is the click-to-select path from the viewport.
func (a *App) SelectModule(id string) Snapshot {
	a.mu.Lock()
	a.layout.Select(id)
	snap := a.snapshotLocked()
	a.mu.Unlock()

	a.notifyChanged()
	return snap
}

// ApplyPositionUpdate consumes a drag or gizmo position message from the
// viewport and moves the corresponding module.
func (a *App) ApplyPositionUpdate(u habitat.PositionUpdate) Snapshot {
	a.mu.Lock()
	a.layout.ApplyPositionUpdate(u)
	snap := a.snapshotLocked()
	a.mu.Unlock()
	return snap
}

// SetLabel edits the selected module's label. No selection is a silent
// no-op.
func (a *App) SetLabel(label string) Snapshot {
	return a.update(func(l *habitat.Layout) { l.SetLabel(label) })
}

// SetColor edits the selected module's display color.
func (a *App) SetColor(color string) Snapshot {
	return a.update(func(l *habitat.Layout) { l.SetColor(color) })
}

// SetSize edits the selected module's scale factor. Values are stored
// as-is; the tessellator guards against degenerate geometry.
func (a *App) SetSize(size float64) Snapshot {
	return a.update(func(l *habitat.Layout) { l.SetSize(size) })
}

// SetModuleType edits the selected module's shape.
func (a *App) SetModuleType(name string) Snapshot {
	t, err := habitat.ParseType(name)
	if err != nil {
		a.mu.Lock()
		snap := a.snapshotLocked()
		a.mu.Unlock()
		snap.Error = err.Error()
		return snap
	}
	return a.update(func(l *habitat.Layout) { l.SetType(t) })
}

func (a *App) update(fn func(*habitat.Layout)) Snapshot {
	a.mu.Lock()
	fn(a.layout)
	snap := a.snapshotLocked()
	a.mu.Unlock()

	a.notifyChanged()
	return snap
}

// SetCrew updates the crew count and returns the recomputed estimate.
func (a *App) SetCrew(crew int) Snapshot {
	if crew < 0 {
		crew = 0
	}
	a.mu.Lock()
	a.crew = crew
	snap := a.snapshotLocked()
	a.mu.Unlock()
	return snap
}

// SaveLayout writes the registry to the configured slot, overwriting any
// prior save.
func (a *App) SaveLayout() Snapshot {
	a.mu.Lock()
	modules := a.layout.Modules()
	snap := a.snapshotLocked()
	a.mu.Unlock()

	if err := a.store.Save(a.slot, modules); err != nil {
		slog.Error("save failed", "slot", a.slot, "err", err)
		snap.Error = "Could not save the layout: " + err.Error()
	}
	return snap
}

// LoadLayout replaces the registry from the configured slot. A missing
// slot is a no-op.
func (a *App) LoadLayout() Snapshot {
	modules, found, err := a.store.Load(a.slot)

	a.mu.Lock()
	if err == nil && found {
		a.layout.Replace(modules)
	}
	snap := a.snapshotLocked()
	a.mu.Unlock()

	if err != nil {
		slog.Error("load failed", "slot", a.slot, "err", err)
		snap.Error = "Could not load the layout: " + err.Error()
		return snap
	}
	if found {
		a.notifyChanged()
	}
	return snap
}

// ExportLayout asks for a destination file and writes the layout document
// to it.
func (a *App) ExportLayout() Snapshot {
	if a.ctx == nil {
		snap := a.Snapshot()
		snap.Error = "export requires a window"
		return snap
	}
	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Export layout",
		DefaultFilename: store.ExportFilename,
	})
	if err != nil || path == "" {
		return a.Snapshot() // cancelled
	}
	return a.exportTo(path)
}

func (a *App) exportTo(path string) Snapshot {
	a.mu.Lock()
	modules := a.layout.Modules()
	snap := a.snapshotLocked()
	a.mu.Unlock()

	if err := store.Export(path, modules); err != nil {
		slog.Error("export failed", "path", path, "err", err)
		snap.Error = "Could not export the layout: " + err.Error()
	}
	return snap
}

// ImportLayout asks for a layout file and replaces the registry with its
// contents. A file that does not decode leaves the registry unchanged.
func (a *App) ImportLayout() Snapshot {
	if a.ctx == nil {
		snap := a.Snapshot()
		snap.Error = "import requires a window"
		return snap
	}
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Import layout",
		Filters: []runtime.FileFilter{
			{DisplayName: "Layout documents", Pattern: "*.json"},
		},
	})
	if err != nil || path == "" {
		return a.Snapshot() // cancelled
	}
	return a.importFrom(path)
}

func (a *App) importFrom(path string) Snapshot {
	modules, err := store.Import(path)
	if err != nil {
		a.mu.Lock()
		snap := a.snapshotLocked()
		a.mu.Unlock()
		snap.Error = "The selected file is not a valid layout document."
		slog.Warn("import rejected", "path", path, "err", err)
		a.warn("Import failed", snap.Error)
		return snap
	}

	a.mu.Lock()
	a.layout.Replace(modules)
	snap := a.snapshotLocked()
	a.mu.Unlock()

	a.notifyChanged()
	return snap
}

// ModuleMesh returns the triangle mesh for one module shape at a given
// size. Meshes are centered on the origin; the viewport translates them
// to each module's position. The tessellator synchronizes itself, so a
// slow first tessellation never stalls registry bindings.
func (a *App) ModuleMesh(typeName string, size float64) MeshResult {
	t, err := habitat.ParseType(typeName)
	if err != nil {
		return MeshResult{Error: err.Error()}
	}

	mesh, err := a.tess.MeshFor(t, size)
	if err != nil {
		slog.Error("tessellation failed", "type", t, "size", size, "err", err)
		return MeshResult{Error: err.Error()}
	}
	return MeshResult{Mesh: mesh}
}

// EvalScript runs console source against the layout and returns the new
// state plus any console errors.
func (a *App) EvalScript(source string) ScriptResult {
	a.mu.Lock()
	evalErrs, err := a.script.Evaluate(source, a.layout)
	snap := a.snapshotLocked()
	a.mu.Unlock()

	result := ScriptResult{Snapshot: snap, Errors: []ScriptError{}}
	if err != nil {
		slog.Error("console evaluation failed", "err", err)
		result.Errors = append(result.Errors, ScriptError{Message: err.Error()})
		return result
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, ScriptError{Line: e.Line, Message: e.Message})
	}
	if len(result.Errors) == 0 {
		a.notifyChanged()
	}
	return result
}
