package dock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tikz/dock/engine"
	"github.com/tikz/dock/pdbqt"
)

const rawReceptor = `HEADER    HYDROLASE                               01-JAN-00   1ABC
ATOM      1  N   MET A   1      27.340  24.430   2.614  1.00  9.67           N
ATOM      2  CA  MET A   1      26.266  25.413   2.842  1.00 10.38           C
ATOM      3  C   MET A   1      26.913  26.639   3.531  1.00  9.62           C
HETATM    4  O   HOH A 201      10.000  10.000  10.000  1.00  0.00           O
TER
END
`

const rawLigand = `COMPND    LIGAND
HETATM    1  C1  STI A   1       1.000   2.000   3.000  1.00  0.00           C
HETATM    2  C2  STI A   1       2.000   2.500   3.200  1.00  0.00           C
END
`

// okEngine is a stand-in binary that emits one pose and its affinity table.
const okEngine = `#!/bin/sh
out=""
prev=""
for a in "$@"; do
	if [ "$prev" = "--out" ]; then out="$a"; fi
	prev="$a"
done
cat > "$out" <<'EOF'
MODEL 1
REMARK VINA RESULT:    -8.1      0.000      0.000
ATOM      1  C1  STI A   1       1.000   2.000   3.000  1.00  0.00     0.100 C
ENDMDL
EOF
echo "mode |   affinity | dist from best mode"
echo "-----+------------+----------+----------"
echo "   1       -8.1      0.000      0.000"
echo ""
`

func TestPrepareReceptor(t *testing.T) {
	prepared, err := PrepareReceptor(rawReceptor)
	require.NoError(t, err)

	assert.True(t, pdbqt.IsDockingReady(prepared))
	assert.NotContains(t, prepared, "HOH", "waters are stripped from the receptor")

	// Already-prepared input passes through untouched.
	again, err := PrepareReceptor(prepared)
	require.NoError(t, err)
	assert.Equal(t, prepared, again)

	_, err = PrepareReceptor("HETATM    4  O   HOH A 201      10.000  10.000  10.000\n")
	assert.Error(t, err, "nothing left after polymer filtering")
}

func TestPrepareLigand(t *testing.T) {
	prepared, err := PrepareLigand(rawLigand)
	require.NoError(t, err)

	assert.True(t, pdbqt.IsDockingReady(prepared))
	assert.Contains(t, prepared, "STI", "non-polymer ligand residues are kept")
}

func TestSuggestBoxFallsBackToBlind(t *testing.T) {
	atoms := pdbqt.ParseAtoms(rawReceptor)
	box := SuggestBox(atoms)
	assert.Greater(t, box.Size.X, 0.0)
}

func TestPipelineDock(t *testing.T) {
	enginePath := filepath.Join(t.TempDir(), "vina")
	require.NoError(t, os.WriteFile(enginePath, []byte(okEngine), 0755))

	p := New(engine.Config{EnginePath: enginePath}, nil)

	res, err := p.Dock(engine.Job{
		Receptor: rawReceptor,
		Ligand:   rawLigand,
		Params:   engine.DefaultParams(),
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Len(t, res.Poses, 1)
	assert.Equal(t, -8.1, res.Poses[0].Affinity)
}
