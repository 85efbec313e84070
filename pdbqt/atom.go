// Package pdbqt reads and writes the fixed-column atomic structure format
// used by rigid docking engines. It parses ATOM/HETATM records from PDB or
// PDBQT text, infers AutoDock atom types, and converts plain PDB input into
// engine-ready PDBQT.
package pdbqt

import (
	"strconv"
	"strings"
)

// Atom represents a single ATOM or HETATM record.
// All fields come from the fixed character columns of the record.
type Atom struct {
	Serial        int
	Name          string
	AltLoc        byte
	Residue       string
	Chain         byte
	ResidueNumber int
	ICode         byte
	X             float64
	Y             float64
	Z             float64
	Occupancy     float64
	BFactor       float64
	PartialCharge float64
	Type          string
	Het           bool // record was a HETATM
}

// IsAtomRecord returns true if the line carries atom coordinates,
// either as an ATOM or HETATM record.
func IsAtomRecord(line string) bool {
	return strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM")
}

// ParseAtoms extracts all ATOM and HETATM records from PDB or PDBQT text.
// Malformed or truncated lines are skipped; the returned slice may be empty
// but the call never fails.
func ParseAtoms(text string) []Atom {
	var atoms []Atom

	for _, line := range strings.Split(text, "\n") {
		atom, ok := parseAtomLine(line)
		if ok {
			atoms = append(atoms, atom)
		}
	}

	return atoms
}

// parseAtomLine parses a single record by fixed columns.
// https://www.wwpdb.org/documentation/file-format-content/format23/sect9.html#ATOM
func parseAtomLine(line string) (Atom, bool) {
	if !IsAtomRecord(line) {
		return Atom{}, false
	}
	if len(line) < 54 {
		return Atom{}, false
	}

	var atom Atom
	var err error

	atom.Het = strings.HasPrefix(line, "HETATM")
	atom.Serial, _ = strconv.Atoi(strings.TrimSpace(line[6:11]))
	atom.Name = strings.TrimSpace(line[12:16])
	atom.AltLoc = line[16]
	atom.Residue = strings.TrimSpace(line[17:20])
	atom.Chain = line[21]
	atom.ResidueNumber, _ = strconv.Atoi(strings.TrimSpace(line[22:26]))
	atom.ICode = line[26]

	atom.X, err = strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
	if err != nil {
		return Atom{}, false
	}
	atom.Y, err = strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
	if err != nil {
		return Atom{}, false
	}
	atom.Z, err = strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
	if err != nil {
		return Atom{}, false
	}

	if len(line) >= 60 {
		atom.Occupancy, _ = strconv.ParseFloat(strings.TrimSpace(line[54:60]), 64)
	}
	if len(line) >= 66 {
		atom.BFactor, _ = strconv.ParseFloat(strings.TrimSpace(line[60:66]), 64)
	}
	if len(line) >= 76 {
		atom.PartialCharge, _ = strconv.ParseFloat(strings.TrimSpace(line[70:76]), 64)
	}
	if len(line) >= 79 {
		atom.Type = strings.TrimSpace(line[77:79])
	}

	return atom, true
}
