package grid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tikz/dock/pdbqt"
)

const (
	// cellSize is the occupancy grid resolution, in Angstroms.
	cellSize = 3.0

	// minPocketAtoms is the atom count below which detection is meaningless.
	minPocketAtoms = 10

	// enclosureThreshold separates buried pockets from open solvent grooves
	// at this grid resolution: minimum occupied cells in the 5x5x5
	// neighborhood of a cavity candidate.
	enclosureThreshold = 30

	clusterRadius   = 10.0 // candidate interaction radius for seed scoring
	collectRadius   = 15.0 // candidates within this range of the seed form the pocket
	pocketPadding   = 8.0  // padding around the collected candidate cells
	minPocketSize   = 20.0 // floor for pocket box dimensions
	fallbackBoxSize = 25.0 // box used when no cavity candidate exists
)

// Pocket is a heuristically detected binding cavity. The confidence score
// and label are advisory; the box is always usable as a search volume.
type Pocket struct {
	Box        Box
	Confidence float64
	Label      string
}

// occupancyGrid is a dense boolean grid over the receptor's bounding box.
// A dense array trades memory for constant-time neighborhood lookups, which
// dominate the enclosure scoring pass.
type occupancyGrid struct {
	origin     r3.Vec
	nx, ny, nz int
	cells      []bool
}

// candidate is an unoccupied interior cell enclosed enough to sit in a cavity.
type candidate struct {
	pos       r3.Vec
	enclosure int
}

// DetectPocket scans the receptor for the most enclosed empty region and
// proposes a search box around it. It returns nil when the receptor has
// fewer than 10 atoms; every other input produces a usable box, falling back
// to a fixed-size box at the geometric center when no cavity stands out.
func DetectPocket(atoms []pdbqt.Atom) *Pocket {
	if len(atoms) < minPocketAtoms {
		return nil
	}

	g := newOccupancyGrid(atoms)
	candidates := g.cavityCandidates()

	if len(candidates) == 0 {
		return &Pocket{
			Box: Box{
				Center: GeometricCenter(atoms),
				Size:   r3.Vec{X: fallbackBoxSize, Y: fallbackBoxSize, Z: fallbackBoxSize},
			},
			Confidence: 0.3,
			Label:      "center-fallback",
		}
	}

	seed := selectSeed(candidates)

	var cluster []r3.Vec
	for _, c := range candidates {
		if distance(c.pos, seed.pos) <= collectRadius {
			cluster = append(cluster, c.pos)
		}
	}

	box := enclosingBox(cluster, pocketPadding, minPocketSize)
	confidence := math.Min(1, float64(len(cluster))/20)

	label := "shallow-cleft"
	switch {
	case confidence > 0.7:
		label = "deep-cavity"
	case confidence > 0.4:
		label = "surface-pocket"
	}

	return &Pocket{Box: box, Confidence: confidence, Label: label}
}

// newOccupancyGrid discretizes the atoms' bounding box into cubic cells and
// marks every atom's cell plus its full 3x3x3 neighborhood as occupied,
// a coarse van der Waals dilation.
func newOccupancyGrid(atoms []pdbqt.Atom) *occupancyGrid {
	extent := BoundingBox(atoms)
	span := r3.Sub(extent.Max, extent.Min)

	g := &occupancyGrid{
		origin: extent.Min,
		nx:     int(span.X/cellSize) + 1,
		ny:     int(span.Y/cellSize) + 1,
		nz:     int(span.Z/cellSize) + 1,
	}
	g.cells = make([]bool, g.nx*g.ny*g.nz)

	for _, a := range atoms {
		ci := int((a.X - g.origin.X) / cellSize)
		cj := int((a.Y - g.origin.Y) / cellSize)
		ck := int((a.Z - g.origin.Z) / cellSize)

		for di := -1; di <= 1; di++ {
			for dj := -1; dj <= 1; dj++ {
				for dk := -1; dk <= 1; dk++ {
					g.set(ci+di, cj+dj, ck+dk)
				}
			}
		}
	}

	return g
}

func (g *occupancyGrid) index(i, j, k int) int {
	return (i*g.ny+j)*g.nz + k
}

func (g *occupancyGrid) inBounds(i, j, k int) bool {
	return i >= 0 && i < g.nx && j >= 0 && j < g.ny && k >= 0 && k < g.nz
}

func (g *occupancyGrid) set(i, j, k int) {
	if g.inBounds(i, j, k) {
		g.cells[g.index(i, j, k)] = true
	}
}

func (g *occupancyGrid) occupied(i, j, k int) bool {
	return g.inBounds(i, j, k) && g.cells[g.index(i, j, k)]
}

// cellCenter returns the spatial position of a cell's midpoint.
func (g *occupancyGrid) cellCenter(i, j, k int) r3.Vec {
	return r3.Vec{
		X: g.origin.X + (float64(i)+0.5)*cellSize,
		Y: g.origin.Y + (float64(j)+0.5)*cellSize,
		Z: g.origin.Z + (float64(k)+0.5)*cellSize,
	}
}

// cavityCandidates scores every unoccupied interior cell by how many of the
// 124 cells in its 5x5x5 neighborhood are occupied, and retains those
// enclosed beyond the threshold.
func (g *occupancyGrid) cavityCandidates() []candidate {
	var candidates []candidate

	for i := 1; i < g.nx-1; i++ {
		for j := 1; j < g.ny-1; j++ {
			for k := 1; k < g.nz-1; k++ {
				if g.occupied(i, j, k) {
					continue
				}

				enclosure := 0
				for di := -2; di <= 2; di++ {
					for dj := -2; dj <= 2; dj++ {
						for dk := -2; dk <= 2; dk++ {
							if di == 0 && dj == 0 && dk == 0 {
								continue
							}
							if g.occupied(i+di, j+dj, k+dk) {
								enclosure++
							}
						}
					}
				}

				if enclosure >= enclosureThreshold {
					candidates = append(candidates, candidate{
						pos:       g.cellCenter(i, j, k),
						enclosure: enclosure,
					})
				}
			}
		}
	}

	return candidates
}

// selectSeed picks the candidate maximizing its own enclosure plus the
// distance-weighted enclosure of every other candidate within reach, so that
// tight clusters of enclosed cells win over isolated ones.
func selectSeed(candidates []candidate) candidate {
	best := candidates[0]
	bestScore := math.Inf(-1)

	for _, c := range candidates {
		score := float64(c.enclosure)
		for _, other := range candidates {
			d := distance(c.pos, other.pos)
			if d > 0 && d <= clusterRadius {
				score += float64(other.enclosure) / d
			}
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}

	return best
}

// enclosingBox returns a padded box around the given points with a size floor
// per axis.
func enclosingBox(points []r3.Vec, padding, floor float64) Box {
	min, max := points[0], points[0]
	for _, p := range points[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		min.Z = math.Min(min.Z, p.Z)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
		max.Z = math.Max(max.Z, p.Z)
	}

	span := r3.Sub(max, min)
	return Box{
		Center: r3.Scale(0.5, r3.Add(min, max)),
		Size: r3.Vec{
			X: math.Max(span.X+2*padding, floor),
			Y: math.Max(span.Y+2*padding, floor),
			Z: math.Max(span.Z+2*padding, floor),
		},
	}
}

func distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}
