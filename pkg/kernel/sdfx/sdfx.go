// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"

	"github.com/chazu/shadecut/pkg/geom"
	"github.com/chazu/shadecut/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel with the default mesh resolution.
func New() *SdfxKernel {
	return &SdfxKernel{cells: DefaultMeshCells}
}

// NewWithCells returns a kernel meshing with the given number of marching
// cubes cells along the longest axis. Non-positive values use the default.
func NewWithCells(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// polygon builds the cross-section of the shade from the same vertex ring
// the pane calculator reasons about.
func polygon(radius float64, sides int) (sdf.SDF2, error) {
	ring := geom.Vertices(radius, 0, sides)
	vertices := make([]v2.Vec, len(ring))
	for i, p := range ring {
		vertices[i] = v2.Vec{X: p.X, Y: p.Y}
	}
	return sdf.Polygon2D(vertices)
}

// Frustum lofts the bottom polygon into the top polygon. sdf.Loft3D centers
// the solid on the origin, so it is lifted by half its height to stand on
// z=0 like the shade's bottom rim.
func (k *SdfxKernel) Frustum(bottomRadius, topRadius, height float64, sides int) (kernel.Solid, error) {
	if sides < 3 {
		return nil, fmt.Errorf("sdfx: frustum needs at least 3 sides, got %d", sides)
	}
	bottom, err := polygon(bottomRadius, sides)
	if err != nil {
		return nil, fmt.Errorf("sdfx: bottom polygon: %w", err)
	}
	top, err := polygon(topRadius, sides)
	if err != nil {
		return nil, fmt.Errorf("sdfx: top polygon: %w", err)
	}
	s, err := sdf.Loft3D(bottom, top, height, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: loft: %w", err)
	}
	m := sdf.Translate3d(v3.Vec{X: 0, Y: 0, Z: height / 2})
	return wrap(sdf.Transform3D(s, m)), nil
}

// Cylinder creates a column with its base on z=0.
func (k *SdfxKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder: %w", err)
	}
	m := sdf.Translate3d(v3.Vec{X: 0, Y: 0, Z: height / 2})
	return wrap(sdf.Transform3D(s, m)), nil
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
