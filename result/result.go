// Package result decodes the docking engine's mixed output: the affinity
// table printed to the log and the multi-model PDBQT structure file, zipped
// together into a ranked pose list.
package result

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// AffinityRow is one line of the engine's result table.
type AffinityRow struct {
	Mode      int
	Affinity  float64 // kcal/mol, more negative binds stronger
	RMSDLower float64
	RMSDUpper float64
}

// Pose is one candidate placement returned by a docking run.
type Pose struct {
	Mode      int
	Affinity  float64
	RMSDLower float64
	RMSDUpper float64
	Structure string // the pose's PDBQT model block
}

// Result holds the decoded poses of one docking run along with the raw
// engine artifacts they came from.
type Result struct {
	Poses     []Pose
	RawOutput string
	RawLog    string
}

// Best returns the first pose, which the engine emits in ascending affinity
// order, or nil when the run produced none.
func (r *Result) Best() *Pose {
	if len(r.Poses) == 0 {
		return nil
	}
	return &r.Poses[0]
}

// ParseAffinityTable extracts result rows from the engine log. The table
// starts after a header line containing both "mode" and "affinity" and ends
// at the first blank line. Separator lines and rows that fail to parse are
// skipped; the parse itself never fails.
func ParseAffinityTable(logText string) []AffinityRow {
	var rows []AffinityRow
	inTable := false

	for _, line := range strings.Split(logText, "\n") {
		if !inTable {
			if strings.Contains(line, "mode") && strings.Contains(line, "affinity") {
				inTable = true
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			break
		}

		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		mode, err := strconv.Atoi(fields[0])
		if err != nil {
			continue // separator or stray text
		}
		affinity, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}

		// RMSD bounds are best-effort; a bad column zeroes the value.
		lower, _ := strconv.ParseFloat(fields[2], 64)
		upper, _ := strconv.ParseFloat(fields[3], 64)

		rows = append(rows, AffinityRow{
			Mode:      mode,
			Affinity:  affinity,
			RMSDLower: lower,
			RMSDUpper: upper,
		})
	}

	return rows
}

// SplitPoses segments multi-model PDBQT output on MODEL/ENDMDL pairs.
// Engines that omit model framing yield a single block equal to the input.
func SplitPoses(structureText string) []string {
	var blocks []string
	var current strings.Builder
	inModel := false

	for _, line := range strings.Split(structureText, "\n") {
		if strings.HasPrefix(line, "MODEL") {
			inModel = true
			current.Reset()
			current.WriteString(line)
			current.WriteByte('\n')
			continue
		}

		if strings.HasPrefix(line, "ENDMDL") {
			if inModel {
				current.WriteString(line)
				current.WriteByte('\n')
				blocks = append(blocks, current.String())
				inModel = false
			}
			continue
		}

		if inModel {
			current.WriteString(line)
			current.WriteByte('\n')
		}
	}

	if len(blocks) == 0 {
		return []string{structureText}
	}

	return blocks
}

// Assemble zips affinity table rows to pose blocks by position, truncating
// to the shorter list when the engine emits them out of step.
//
// Nothing cross-checks a block's embedded affinity remark against the table
// row it is paired with; if the engine ever reorders one of the two streams,
// scores would attach to the wrong pose. Kept as-is to match the engine's
// documented behavior.
func Assemble(logText, structureText string) Result {
	rows := ParseAffinityTable(logText)
	blocks := SplitPoses(structureText)

	n := len(rows)
	if len(blocks) < n {
		n = len(blocks)
	}

	poses := make([]Pose, 0, n)
	for i := 0; i < n; i++ {
		poses = append(poses, Pose{
			Mode:      rows[i].Mode,
			Affinity:  rows[i].Affinity,
			RMSDLower: rows[i].RMSDLower,
			RMSDUpper: rows[i].RMSDUpper,
			Structure: blocks[i],
		})
	}

	return Result{
		Poses:     poses,
		RawOutput: structureText,
		RawLog:    logText,
	}
}

// ExtractAffinityFromBlock pulls the affinity out of a single pose's
// embedded result remark, for when only the pose text is at hand.
func ExtractAffinityFromBlock(poseText string) (float64, error) {
	for _, line := range strings.Split(poseText, "\n") {
		if !strings.HasPrefix(line, "REMARK") || !strings.Contains(line, "RESULT") {
			continue
		}

		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}

		fields := strings.Fields(line[idx+1:])
		if len(fields) == 0 {
			continue
		}

		affinity, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, errors.Wrap(err, "parse affinity remark")
		}
		return affinity, nil
	}

	return 0, errors.New("no result remark in pose block")
}
