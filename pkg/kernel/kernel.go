// Package kernel defines the abstract geometry kernel interface used to
// build preview solids of the shade and the glass. The kernel abstraction
// keeps the sdfx backend out of the rest of the system.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Frustum returns a regular sides-gon frustum standing on z=0, its
	// first vertex on the +X axis. Radii are circumscribed.
	Frustum(bottomRadius, topRadius, height float64, sides int) (Solid, error)
	// Cylinder returns a round column standing on z=0.
	Cylinder(height, radius float64) (Solid, error)
	// Translate moves a solid by (x, y, z).
	Translate(s Solid, x, y, z float64) Solid

	// ToMesh tessellates a solid into triangles.
	ToMesh(s Solid) (*Mesh, error)
}
