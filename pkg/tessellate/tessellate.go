// Package tessellate turns module shapes into triangle meshes using a
// geometry kernel. Meshes are produced at the origin and cached per
// (type, size); the viewport places them at each module's position, so
// dragging a module never re-tessellates.
package tessellate

import (
	"fmt"
	"sync"

	"github.com/kferr/habkit/pkg/habitat"
	"github.com/kferr/habkit/pkg/kernel"
)

// minSize is the smallest scale the tessellator will build geometry for.
// The registry stores sizes permissively; clamping here only avoids
// handing the kernel a degenerate solid.
const minSize = 1e-3

// Proportions of the composite shapes, relative to module size.
const (
	solarWingSpan   = 2.2  // panel width along the truss
	solarWingDepth  = 1.0  // panel depth
	solarWingThick  = 0.05 // panel thickness
	solarTrussLen   = 2.3  // truss length along the wing axis
	solarTrussRad   = 0.06
	tunnelLength    = 2.0
	tunnelOuterRad  = 0.35
	tunnelWallThick = 0.07
)

// meshKey identifies one cached mesh.
type meshKey struct {
	t    habitat.ModuleType
	size float64
}

// Tessellator builds and caches module meshes. It carries its own lock so
// mesh requests, which can take a while at full resolution, never block
// callers that only touch registry state.
type Tessellator struct {
	k kernel.Kernel

	mu    sync.Mutex
	cache map[meshKey]*kernel.Mesh
}

// New creates a tessellator on top of the given kernel.
func New(k kernel.Kernel) *Tessellator {
	return &Tessellator{
		k:     k,
		cache: make(map[meshKey]*kernel.Mesh),
	}
}

// MeshFor returns the triangle mesh for a module type at a given size.
// Results are cached; repeated calls for the same type and size return
// the same mesh. Safe for concurrent use.
func (t *Tessellator) MeshFor(mt habitat.ModuleType, size float64) (*kernel.Mesh, error) {
	if size < minSize {
		size = minSize
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	key := meshKey{t: mt, size: size}
	if m, ok := t.cache[key]; ok {
		return m, nil
	}

	solid, err := t.solidFor(mt, size)
	if err != nil {
		return nil, err
	}
	mesh, err := t.k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate %s: %w", mt, err)
	}
	t.cache[key] = mesh
	return mesh, nil
}

// solidFor builds the centered solid for one module type. The kernel's
// cylinders and cones run along Z; shapes that stand upright are rotated
// onto Y, and the tunnel is laid flat along X.
func (t *Tessellator) solidFor(mt habitat.ModuleType, s float64) (kernel.Solid, error) {
	k := t.k
	switch mt {
	case habitat.TypeCube:
		return k.Box(s, s, s), nil

	case habitat.TypeSphere:
		return k.Sphere(s / 2), nil

	case habitat.TypeCylinder:
		return k.Rotate(k.Cylinder(s, s/2), 90, 0, 0), nil

	case habitat.TypeCone:
		return k.Rotate(k.Cone(s, s/2, 0), 90, 0, 0), nil

	case habitat.TypeSolar:
		// Panel wings on a truss running along X.
		wings := k.Box(solarWingSpan*s, solarWingThick*s, solarWingDepth*s)
		truss := k.Rotate(k.Cylinder(solarTrussLen*s, solarTrussRad*s), 0, 90, 0)
		return k.Union(wings, truss), nil

	case habitat.TypeTunnel:
		// Hollow tube along X: outer shell minus a slightly longer bore.
		outer := k.Cylinder(tunnelLength*s, tunnelOuterRad*s)
		bore := k.Cylinder(tunnelLength*s*1.05, (tunnelOuterRad-tunnelWallThick)*s)
		return k.Rotate(k.Difference(outer, bore), 0, 90, 0), nil
	}
	return nil, fmt.Errorf("no geometry for module type %q", mt)
}
