package grid

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/tikz/dock/pdbqt"
)

func atomAt(x, y, z float64) pdbqt.Atom {
	return pdbqt.Atom{X: x, Y: y, Z: z}
}

func TestBoundingBoxEmpty(t *testing.T) {
	extent := BoundingBox(nil)
	assert.Equal(t, Extent{}, extent)
}

func TestCenteredBoxSize(t *testing.T) {
	atoms := []pdbqt.Atom{
		atomAt(-3, 0, 1),
		atomAt(5, 2, 1),
		atomAt(1, -4, 7),
	}

	for _, padding := range []float64{0, 2, 5, 10} {
		box := CenteredBox(atoms, padding)
		assert.Equal(t, math.Max(8+2*padding, 10), box.Size.X, "padding %v", padding)
		assert.Equal(t, math.Max(6+2*padding, 10), box.Size.Y, "padding %v", padding)
		assert.Equal(t, math.Max(6+2*padding, 10), box.Size.Z, "padding %v", padding)
	}
}

func TestCenteredBoxFloor(t *testing.T) {
	// A single atom has zero span on every axis.
	box := CenteredBox([]pdbqt.Atom{atomAt(1, 2, 3)}, 2)
	assert.Equal(t, r3.Vec{X: 10, Y: 10, Z: 10}, box.Size)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, box.Center)
}

func TestBlindBoxExact(t *testing.T) {
	atoms := []pdbqt.Atom{
		atomAt(-10, -5, 0),
		atomAt(10, 5, 8),
	}

	box := BlindBox(atoms, 10)
	assert.Equal(t, r3.Vec{X: 0, Y: 0, Z: 4}, box.Center)
	assert.Equal(t, r3.Vec{X: 40, Y: 30, Z: 28}, box.Size)
}

func TestBlindBoxContainsAllAtoms(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	var atoms []pdbqt.Atom
	for i := 0; i < 200; i++ {
		atoms = append(atoms, atomAt(
			rng.Float64()*80-40,
			rng.Float64()*80-40,
			rng.Float64()*80-40,
		))
	}

	box := BlindBox(atoms, 10)
	for _, a := range atoms {
		assert.True(t, box.Contains(r3.Vec{X: a.X, Y: a.Y, Z: a.Z}))
	}
}

func TestBlindBoxEmptyReceptor(t *testing.T) {
	box := BlindBox(nil, 10)
	assert.Equal(t, r3.Vec{}, box.Center)
	assert.Equal(t, r3.Vec{X: 60, Y: 60, Z: 60}, box.Size)
}

func TestResidueCenteredBox(t *testing.T) {
	atoms := []pdbqt.Atom{
		{Residue: "HIS", ResidueNumber: 57, X: 1, Y: 1, Z: 1},
		{Residue: "HIS", ResidueNumber: 57, X: 3, Y: 3, Z: 3},
		{Residue: "SER", ResidueNumber: 195, X: 5, Y: 5, Z: 5},
		{Residue: "GLY", ResidueNumber: 1, X: 50, Y: 50, Z: 50},
	}

	box, count, err := ResidueCenteredBox(atoms, "HIS57 SER195", 4)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, r3.Vec{X: 3, Y: 3, Z: 3}, box.Center)
	assert.Equal(t, r3.Vec{X: 12, Y: 12, Z: 12}, box.Size)

	_, count, err = ResidueCenteredBox(atoms, "ARG999", 4)
	assert.Error(t, err)
	assert.Zero(t, count)

	_, _, err = ResidueCenteredBox(atoms, "   ", 4)
	assert.Error(t, err)
}

func TestGeometricCenter(t *testing.T) {
	assert.Equal(t, r3.Vec{}, GeometricCenter(nil))

	atoms := []pdbqt.Atom{atomAt(0, 0, 0), atomAt(2, 4, 6)}
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, GeometricCenter(atoms))
}

func TestLigandBoxes(t *testing.T) {
	var atoms []pdbqt.Atom

	// A real ligand: six HETATM records in one residue.
	for i := 0; i < 6; i++ {
		atoms = append(atoms, pdbqt.Atom{
			Het: true, Residue: "STI", Chain: 'A', ResidueNumber: 301,
			X: float64(i), Y: 0, Z: 0,
		})
	}
	// Waters and a lone ion are ignored.
	atoms = append(atoms,
		pdbqt.Atom{Het: true, Residue: "HOH", Chain: 'A', ResidueNumber: 401, X: 20},
		pdbqt.Atom{Het: true, Residue: "ZN", Chain: 'A', ResidueNumber: 501, X: 30},
	)
	// A fragment below the atom count cutoff.
	atoms = append(atoms,
		pdbqt.Atom{Het: true, Residue: "EDO", Chain: 'A', ResidueNumber: 601, X: 40},
		pdbqt.Atom{Het: true, Residue: "EDO", Chain: 'A', ResidueNumber: 601, X: 41},
	)

	sites := LigandBoxes(atoms)
	require.Len(t, sites, 1)
	assert.Equal(t, "Ligand STI", sites[0].Name)
	assert.Equal(t, 2.5, sites[0].Box.Center.X)
	assert.Contains(t, sites[0].Description, "residue 301")
}

func TestSiteBoxes(t *testing.T) {
	// Two SITE lines for the same site id; GLY 193 matches no atom but still
	// counts toward the record's residue total.
	text := "SITE     1 AC1  4 HIS A  57  SER A 195  ASP A 102\n" +
		"SITE     2 AC1  4 GLY A 193\n"

	atoms := []pdbqt.Atom{
		{Residue: "HIS", Chain: 'A', ResidueNumber: 57, X: 0, Y: 0, Z: 0},
		{Residue: "HIS", Chain: 'A', ResidueNumber: 57, X: 2, Y: 0, Z: 0},
		{Residue: "SER", Chain: 'A', ResidueNumber: 195, X: 4, Y: 2, Z: 0},
		{Residue: "ASP", Chain: 'A', ResidueNumber: 102, X: 2, Y: 1, Z: 0},
		{Residue: "GLY", Chain: 'A', ResidueNumber: 1, X: 50, Y: 50, Z: 50},
	}

	sites := SiteBoxes(text, atoms)
	require.Len(t, sites, 1)
	assert.Equal(t, "Site AC1", sites[0].Name)
	assert.Contains(t, sites[0].Description, "4 residues")
	assert.Equal(t, r3.Vec{X: 2, Y: 1, Z: 0}, sites[0].Box.Center)

	assert.Empty(t, SiteBoxes("", atoms), "no SITE records")
	assert.Empty(t, SiteBoxes(text, nil), "records matching no atoms are skipped")
}

func TestSitesDeduplicates(t *testing.T) {
	text := "SITE     1 AC1  2 HIS A  57  SER A 195\n"

	atoms := []pdbqt.Atom{
		{Residue: "HIS", Chain: 'A', ResidueNumber: 57, X: 0},
		{Residue: "SER", Chain: 'A', ResidueNumber: 195, X: 4, Y: 2},
	}
	// A ligand whose box lands on the same center as the SITE record.
	for i := 0; i <= 4; i++ {
		atoms = append(atoms, pdbqt.Atom{
			Het: true, Residue: "STI", Chain: 'A', ResidueNumber: 301,
			X: float64(i), Y: 1,
		})
	}

	sites := Sites(text, atoms)
	require.Len(t, sites, 1)
	assert.Equal(t, "Site AC1", sites[0].Name, "SITE records take precedence over ligand boxes")

	// A ligand far from any site survives the dedupe.
	for i := 0; i <= 4; i++ {
		atoms = append(atoms, pdbqt.Atom{
			Het: true, Residue: "NAG", Chain: 'B', ResidueNumber: 401,
			X: float64(i) + 80, Y: 1,
		})
	}
	sites = Sites(text, atoms)
	require.Len(t, sites, 2)
	assert.Equal(t, "Ligand NAG", sites[1].Name)
}
