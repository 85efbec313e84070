package pdbqt

import (
	"fmt"
	"strconv"
	"strings"
)

// reservedRecords are PDB header and metadata record types that the docking
// engine rejects. Their presence marks a file as plain PDB, not PDBQT.
var reservedRecords = []string{
	"HEADER", "TITLE", "COMPND", "SOURCE", "KEYWDS", "EXPDTA", "AUTHOR",
	"REVDAT", "SEQRES", "HELIX", "SHEET", "SSBOND", "CRYST1", "ANISOU",
	"CONECT", "MASTER",
}

// structuralRecords are non-atom lines preserved verbatim during conversion.
var structuralRecords = []string{"TER", "END", "ENDMDL", "MODEL"}

// polymerResidues is the allow-list used by KeepPolymer: the standard amino
// acids plus common protonation-variant codes.
var polymerResidues = map[string]bool{
	"ALA": true, "ARG": true, "ASN": true, "ASP": true, "CYS": true,
	"GLN": true, "GLU": true, "GLY": true, "HIS": true, "ILE": true,
	"LEU": true, "LYS": true, "MET": true, "PHE": true, "PRO": true,
	"SER": true, "THR": true, "TRP": true, "TYR": true, "VAL": true,
	"HID": true, "HIE": true, "HIP": true, "HSD": true, "HSE": true,
	"HSP": true, "CYX": true, "CYM": true, "ASH": true, "GLH": true,
	"LYN": true,
}

// Convert re-emits every atom record of a PDB or PDBQT text in the
// fixed-width docking format: the original record through the coordinate
// columns is preserved byte for byte, followed by occupancy, temperature
// factor, a placeholder partial charge and the inferred atom type.
// Terminator and model marker lines pass through unchanged; everything else
// is dropped.
func Convert(text string) string {
	var out strings.Builder

	for _, line := range strings.Split(text, "\n") {
		if IsAtomRecord(line) {
			converted, ok := convertAtomLine(line)
			if ok {
				out.WriteString(converted)
				out.WriteByte('\n')
			}
			continue
		}
		if isStructuralRecord(line) {
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}

	return out.String()
}

// convertAtomLine rewrites a single atom record. The slice up to column 54
// keeps the original coordinate digits exactly as read.
func convertAtomLine(line string) (string, bool) {
	atom, ok := parseAtomLine(line)
	if !ok {
		return "", false
	}

	occupancy := atom.Occupancy
	if len(line) < 60 {
		occupancy = 1.00
	}

	atomType := AssignAtomType(atom.Residue, atom.Name)

	return fmt.Sprintf("%s%6.2f%6.2f    %6.3f %-2s",
		line[:54], occupancy, atom.BFactor, 0.0, atomType), true
}

// IsDockingReady returns true only if the text is already in the docking
// format: it has at least one atom record, carries none of the reserved PDB
// header records, and every atom line has a parseable partial charge column.
func IsDockingReady(text string) bool {
	atomCount := 0

	for _, line := range strings.Split(text, "\n") {
		for _, record := range reservedRecords {
			if strings.HasPrefix(line, record) {
				return false
			}
		}

		if !IsAtomRecord(line) {
			continue
		}
		if len(line) < 76 {
			return false
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(line[70:76]), 64); err != nil {
			return false
		}
		atomCount++
	}

	return atomCount > 0
}

// KeepPolymer drops atom records whose residue is not a standard amino acid
// or protonation variant, removing waters, ions and co-crystallized ligands
// from receptor input. Non-atom lines pass through unfiltered.
func KeepPolymer(text string) string {
	var kept []string

	for _, line := range strings.Split(text, "\n") {
		if IsAtomRecord(line) {
			// A record too short to carry a residue name is dropped too.
			if len(line) < 20 || !polymerResidues[strings.TrimSpace(line[17:20])] {
				continue
			}
		}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}

func isStructuralRecord(line string) bool {
	for _, record := range structuralRecords {
		if strings.HasPrefix(line, record) {
			return true
		}
	}
	return false
}
