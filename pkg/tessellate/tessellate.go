// Package tessellate turns a lampshade snapshot and its solved contact into
// triangle meshes using a geometry kernel. One mesh is produced per part.
package tessellate

import (
	"fmt"

	"github.com/chazu/shadecut/pkg/contact"
	"github.com/chazu/shadecut/pkg/kernel"
	"github.com/chazu/shadecut/pkg/shade"
)

// Part names carried on the produced meshes.
const (
	PartShade = "shade"
	PartGlass = "glass"
)

// Scene produces the shade mesh and, when the contact is defined, a glass
// column mesh. The shade stands on z=0 with its bottom rim there. The glass
// column has the rim radius, its top at the contact height, and extends
// down by the bowl depth. A flat shade yields no shade mesh. The scene is
// read-only and never mutates its inputs.
func Scene(snap shade.Snapshot, res contact.Result, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}

	var meshes []*kernel.Mesh

	if snap.Shade.Height > 0 {
		m, err := shadeMesh(snap.Shade, k)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}

	if res.Defined() {
		m, err := glassMesh(snap.Glass, res, k)
		if err != nil {
			return nil, err
		}
		if m != nil {
			meshes = append(meshes, m)
		}
	}

	return meshes, nil
}

func shadeMesh(s shade.Shade, k kernel.Kernel) (*kernel.Mesh, error) {
	solid, err := k.Frustum(s.BottomRadius, s.TopRadius, s.Height, s.Sides)
	if err != nil {
		return nil, fmt.Errorf("tessellate: shade frustum: %w", err)
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", PartShade, err)
	}
	mesh.PartName = PartShade
	return mesh, nil
}

// columnDepth is the bowl depth when known. Otherwise the column reaches
// the shade's bottom rim, or covers the shade's covered height when the
// contact sits on the bottom rim itself.
func columnDepth(g shade.Glass, res contact.Result) float64 {
	switch {
	case g.BowlDepth > 0:
		return g.BowlDepth
	case res.ContactHeight > 0:
		return res.ContactHeight
	default:
		return res.CoveredHeight
	}
}

func glassMesh(g shade.Glass, res contact.Result, k kernel.Kernel) (*kernel.Mesh, error) {
	depth := columnDepth(g, res)
	if depth <= 0 {
		return nil, nil
	}
	solid, err := k.Cylinder(depth, g.RimRadius)
	if err != nil {
		return nil, fmt.Errorf("tessellate: glass column: %w", err)
	}
	solid = k.Translate(solid, 0, 0, res.ContactHeight-depth)

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", PartGlass, err)
	}
	mesh.PartName = PartGlass
	return mesh, nil
}
