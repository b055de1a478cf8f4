package tessellate

import (
	"sync"
	"testing"

	"github.com/kferr/habkit/pkg/habitat"
	"github.com/kferr/habkit/pkg/kernel"
)

// fakeSolid records the primitive that produced it.
type fakeSolid struct {
	kind string
	dims [3]float64
}

func (s *fakeSolid) BoundingBox() (min, max [3]float64) {
	return [3]float64{}, s.dims
}

// fakeKernel implements kernel.Kernel without any real geometry so the
// shape mapping and cache can be tested quickly.
type fakeKernel struct {
	toMeshCalls int
}

func (k *fakeKernel) Box(x, y, z float64) kernel.Solid {
	return &fakeSolid{kind: "box", dims: [3]float64{x, y, z}}
}
func (k *fakeKernel) Sphere(r float64) kernel.Solid {
	return &fakeSolid{kind: "sphere", dims: [3]float64{r, r, r}}
}
func (k *fakeKernel) Cylinder(h, r float64) kernel.Solid {
	return &fakeSolid{kind: "cylinder", dims: [3]float64{r, r, h}}
}
func (k *fakeKernel) Cone(h, r0, r1 float64) kernel.Solid {
	return &fakeSolid{kind: "cone", dims: [3]float64{r0, r1, h}}
}
func (k *fakeKernel) Union(a, b kernel.Solid) kernel.Solid        { return &fakeSolid{kind: "union"} }
func (k *fakeKernel) Difference(a, b kernel.Solid) kernel.Solid   { return &fakeSolid{kind: "difference"} }
func (k *fakeKernel) Intersection(a, b kernel.Solid) kernel.Solid { return &fakeSolid{kind: "intersection"} }
func (k *fakeKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid { return s }
func (k *fakeKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid    { return s }

func (k *fakeKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	k.toMeshCalls++
	return &kernel.Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:  []uint32{0, 1, 2},
	}, nil
}

func TestMeshForAllTypes(t *testing.T) {
	ts := New(&fakeKernel{})
	for _, mt := range habitat.ModuleTypes {
		mesh, err := ts.MeshFor(mt, 1)
		if err != nil {
			t.Errorf("%s: %v", mt, err)
			continue
		}
		if mesh.IsEmpty() {
			t.Errorf("%s: empty mesh", mt)
		}
	}
}

func TestMeshForUnknownType(t *testing.T) {
	ts := New(&fakeKernel{})
	if _, err := ts.MeshFor("pyramid", 1); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestMeshCache(t *testing.T) {
	fk := &fakeKernel{}
	ts := New(fk)

	for i := 0; i < 5; i++ {
		if _, err := ts.MeshFor(habitat.TypeCube, 1); err != nil {
			t.Fatal(err)
		}
	}
	if fk.toMeshCalls != 1 {
		t.Errorf("ToMesh calls = %d, want 1 (cache miss only once)", fk.toMeshCalls)
	}

	// A different size is a different cache entry.
	if _, err := ts.MeshFor(habitat.TypeCube, 2); err != nil {
		t.Fatal(err)
	}
	if fk.toMeshCalls != 2 {
		t.Errorf("ToMesh calls = %d, want 2", fk.toMeshCalls)
	}
}

func TestMeshForIsSafeConcurrently(t *testing.T) {
	fk := &fakeKernel{}
	ts := New(fk)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, mt := range habitat.ModuleTypes {
				if _, err := ts.MeshFor(mt, 1); err != nil {
					t.Errorf("%s: %v", mt, err)
				}
			}
		}()
	}
	wg.Wait()

	// One build per type regardless of how the goroutines interleave.
	if fk.toMeshCalls != len(habitat.ModuleTypes) {
		t.Errorf("ToMesh calls = %d, want %d", fk.toMeshCalls, len(habitat.ModuleTypes))
	}
}

func TestDegenerateSizeIsClamped(t *testing.T) {
	ts := New(&fakeKernel{})
	for _, size := range []float64{0, -1} {
		mesh, err := ts.MeshFor(habitat.TypeSphere, size)
		if err != nil {
			t.Fatalf("size %v: %v", size, err)
		}
		if mesh.IsEmpty() {
			t.Errorf("size %v: empty mesh", size)
		}
	}
}
