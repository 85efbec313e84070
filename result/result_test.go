package result

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vinaLog = `#################################################################
# If you used AutoDock Vina in your work, please cite:          #
#################################################################

Detected 1 CPU
Reading input ... done.
Performing search ... done.

mode |   affinity | dist from best mode
     | (kcal/mol) | rmsd l.b.| rmsd u.b.
-----+------------+----------+----------
   1       -7.2      0.000      0.000
   2       -6.8      1.100      2.300
   3       -6.1      2.500      4.100

Writing output ... done.
`

const vinaOutput = `MODEL 1
REMARK VINA RESULT:    -7.2      0.000      0.000
ATOM      1  C1  LIG A   1       1.000   2.000   3.000  1.00  0.00     0.100 C
ENDMDL
MODEL 2
REMARK VINA RESULT:    -6.8      1.100      2.300
ATOM      1  C1  LIG A   1       2.000   3.000   4.000  1.00  0.00     0.100 C
ENDMDL
MODEL 3
REMARK VINA RESULT:    -6.1      2.500      4.100
ATOM      1  C1  LIG A   1       3.000   4.000   5.000  1.00  0.00     0.100 C
ENDMDL
`

func TestParseAffinityTable(t *testing.T) {
	log := "mode |   affinity\n-----\n   1  -7.2  0.0  0.0\n   2  -6.8  1.1  2.3\n\n"

	rows := ParseAffinityTable(log)
	require.Len(t, rows, 2)
	assert.Equal(t, AffinityRow{Mode: 1, Affinity: -7.2}, rows[0])
	assert.Equal(t, AffinityRow{Mode: 2, Affinity: -6.8, RMSDLower: 1.1, RMSDUpper: 2.3}, rows[1])
}

func TestParseAffinityTableRealLog(t *testing.T) {
	rows := ParseAffinityTable(vinaLog)
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].Mode)
	assert.Equal(t, -7.2, rows[0].Affinity)
	assert.Equal(t, 4.1, rows[2].RMSDUpper)
}

func TestParseAffinityTableMalformedRows(t *testing.T) {
	log := strings.Join([]string{
		"mode |   affinity",
		"-----+------------",
		"   1       -7.2      0.000      0.000",
		"   x       -9.9      0.000      0.000", // non-numeric mode
		"   2       junk      0.000      0.000", // non-numeric affinity
		"   3       -6.0",                       // too few fields
		"   4       -5.5      0.100      0.200",
		"",
		"   9       -9.0      0.000      0.000", // past the blank line
	}, "\n")

	rows := ParseAffinityTable(log)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Mode)
	assert.Equal(t, 4, rows[1].Mode)
}

func TestParseAffinityTableNoHeader(t *testing.T) {
	assert.Empty(t, ParseAffinityTable("   1  -7.2  0.0  0.0\n"))
	assert.Empty(t, ParseAffinityTable(""))
}

func TestSplitPoses(t *testing.T) {
	blocks := SplitPoses(vinaOutput)
	require.Len(t, blocks, 3)

	assert.True(t, strings.HasPrefix(blocks[0], "MODEL 1"))
	assert.Contains(t, blocks[0], "REMARK VINA RESULT:    -7.2")
	assert.Contains(t, blocks[0], "ENDMDL")
	assert.NotContains(t, blocks[0], "MODEL 2")
}

func TestSplitPosesNoMarkers(t *testing.T) {
	text := "ATOM      1  C1  LIG A   1       1.000   2.000   3.000\n"
	blocks := SplitPoses(text)
	require.Len(t, blocks, 1)
	assert.Equal(t, text, blocks[0])
}

func TestAssemble(t *testing.T) {
	res := Assemble(vinaLog, vinaOutput)

	require.Len(t, res.Poses, 3)
	assert.Equal(t, -7.2, res.Poses[0].Affinity)
	assert.Equal(t, 3, res.Poses[2].Mode)
	assert.Contains(t, res.Poses[1].Structure, "MODEL 2")
	assert.Equal(t, vinaLog, res.RawLog)
	assert.Equal(t, vinaOutput, res.RawOutput)

	best := res.Best()
	require.NotNil(t, best)
	assert.Equal(t, 1, best.Mode)
}

func TestAssembleTruncatesToShorter(t *testing.T) {
	// Log reports three modes but the structure file only has one block.
	oneBlock := strings.Join(strings.Split(vinaOutput, "\n")[:4], "\n") + "\n"

	res := Assemble(vinaLog, oneBlock)
	assert.Len(t, res.Poses, 1)

	// And the other way around.
	res = Assemble("mode |   affinity\n   1  -7.2  0.0  0.0\n\n", vinaOutput)
	assert.Len(t, res.Poses, 1)
}

func TestExtractAffinityFromBlock(t *testing.T) {
	blocks := SplitPoses(vinaOutput)

	affinity, err := ExtractAffinityFromBlock(blocks[1])
	require.NoError(t, err)
	assert.Equal(t, -6.8, affinity)

	_, err = ExtractAffinityFromBlock("ATOM      1  C1  LIG\n")
	assert.Error(t, err)
}

func TestBestEmpty(t *testing.T) {
	res := Assemble("", "")
	assert.Nil(t, res.Best())
}
