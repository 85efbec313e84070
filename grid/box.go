// Package grid computes 3D search volumes for docking runs: bounding boxes,
// padded boxes around atom selections, whole-receptor blind docking boxes,
// and a geometric binding pocket heuristic.
package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tikz/dock/pdbqt"
)

const (
	// minBoxSize is the floor for padded box dimensions, in Angstroms.
	minBoxSize = 10.0

	// blindPadding is the default padding around the whole receptor.
	blindPadding = 10.0

	// defaultBlindSize is the box used when the receptor has no atoms.
	defaultBlindSize = 60.0
)

// Box is an axis-aligned rectangular search volume handed to the engine.
type Box struct {
	Center r3.Vec
	Size   r3.Vec
}

// Extent is the min/max corner pair of an axis-aligned bounding box.
type Extent struct {
	Min r3.Vec
	Max r3.Vec
}

// Contains returns true if the point lies inside the box, boundaries included.
func (b Box) Contains(p r3.Vec) bool {
	half := r3.Scale(0.5, b.Size)
	min := r3.Sub(b.Center, half)
	max := r3.Add(b.Center, half)
	return p.X >= min.X && p.X <= max.X &&
		p.Y >= min.Y && p.Y <= max.Y &&
		p.Z >= min.Z && p.Z <= max.Z
}

// BoundingBox returns the extent of the given atoms.
// An empty atom set yields a degenerate all-zero extent.
func BoundingBox(atoms []pdbqt.Atom) Extent {
	if len(atoms) == 0 {
		return Extent{}
	}

	min := r3.Vec{X: atoms[0].X, Y: atoms[0].Y, Z: atoms[0].Z}
	max := min
	for _, a := range atoms[1:] {
		min.X = math.Min(min.X, a.X)
		min.Y = math.Min(min.Y, a.Y)
		min.Z = math.Min(min.Z, a.Z)
		max.X = math.Max(max.X, a.X)
		max.Y = math.Max(max.Y, a.Y)
		max.Z = math.Max(max.Z, a.Z)
	}

	return Extent{Min: min, Max: max}
}

// GeometricCenter returns the mean position of the given atoms,
// or the origin for an empty set.
func GeometricCenter(atoms []pdbqt.Atom) r3.Vec {
	if len(atoms) == 0 {
		return r3.Vec{}
	}

	var sum r3.Vec
	for _, a := range atoms {
		sum = r3.Add(sum, r3.Vec{X: a.X, Y: a.Y, Z: a.Z})
	}
	return r3.Scale(1/float64(len(atoms)), sum)
}

// CenteredBox returns a box centered on the atoms' bounding box midpoint,
// sized to the coordinate span plus padding on each side, with a 10 A floor
// per axis.
func CenteredBox(atoms []pdbqt.Atom, padding float64) Box {
	extent := BoundingBox(atoms)
	span := r3.Sub(extent.Max, extent.Min)

	return Box{
		Center: r3.Scale(0.5, r3.Add(extent.Min, extent.Max)),
		Size: r3.Vec{
			X: math.Max(span.X+2*padding, minBoxSize),
			Y: math.Max(span.Y+2*padding, minBoxSize),
			Z: math.Max(span.Z+2*padding, minBoxSize),
		},
	}
}

// BlindBox returns a box spanning the whole receptor plus padding, for blind
// docking over the entire surface. With no atoms it falls back to a fixed
// 60 A box at the origin.
func BlindBox(atoms []pdbqt.Atom, padding float64) Box {
	if len(atoms) == 0 {
		return Box{
			Size: r3.Vec{X: defaultBlindSize, Y: defaultBlindSize, Z: defaultBlindSize},
		}
	}

	return CenteredBox(atoms, padding)
}

// ResidueCenteredBox returns a padded box around the atoms whose residue
// name and number match one of the whitespace or comma separated selector
// tokens, e.g. "HIS57 SER195". The match count is returned alongside; when
// nothing matches, the box is zero and the error names the selector.
func ResidueCenteredBox(atoms []pdbqt.Atom, selector string, padding float64) (Box, int, error) {
	tokens := strings.FieldsFunc(strings.ToUpper(selector), func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(tokens) == 0 {
		return Box{}, 0, fmt.Errorf("empty residue selector")
	}

	wanted := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		wanted[tok] = true
	}

	var matched []pdbqt.Atom
	for _, a := range atoms {
		key := strings.ToUpper(a.Residue) + strconv.Itoa(a.ResidueNumber)
		if wanted[key] {
			matched = append(matched, a)
		}
	}

	if len(matched) == 0 {
		return Box{}, 0, fmt.Errorf("no atoms matched selector %q", selector)
	}

	return CenteredBox(matched, padding), len(matched), nil
}
