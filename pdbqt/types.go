package pdbqt

import "strings"

// AutoDock atom types used by the docking engine. Carbons are split into
// aliphatic (C) and aromatic (A); nitrogens and oxygens into plain and
// hydrogen-bond acceptor variants (N/NA, OA); SA marks acceptor sulfur in
// disulfide or thioether context; HD marks polar, donor-capable hydrogen.
//
// Typing for non-standard residues falls back to an element guess from the
// atom name. This is a best-effort heuristic good enough to keep the engine
// running, not a chemically rigorous assignment.

// sideChainTypes maps residue name and atom name to a docking atom type,
// for side chain atoms of the standard amino acids.
var sideChainTypes = map[string]map[string]string{
	"ALA": {"CB": "C"},
	"ARG": {"CB": "C", "CG": "C", "CD": "C", "NE": "N", "CZ": "C", "NH1": "N", "NH2": "N"},
	"ASN": {"CB": "C", "CG": "C", "OD1": "OA", "ND2": "N"},
	"ASP": {"CB": "C", "CG": "C", "OD1": "OA", "OD2": "OA"},
	"CYS": {"CB": "C", "SG": "SA"},
	"GLN": {"CB": "C", "CG": "C", "CD": "C", "OE1": "OA", "NE2": "N"},
	"GLU": {"CB": "C", "CG": "C", "CD": "C", "OE1": "OA", "OE2": "OA"},
	"HIS": {"CB": "C", "CG": "A", "ND1": "NA", "CD2": "A", "CE1": "A", "NE2": "NA"},
	"ILE": {"CB": "C", "CG1": "C", "CG2": "C", "CD1": "C"},
	"LEU": {"CB": "C", "CG": "C", "CD1": "C", "CD2": "C"},
	"LYS": {"CB": "C", "CG": "C", "CD": "C", "CE": "C", "NZ": "N"},
	"MET": {"CB": "C", "CG": "C", "SD": "SA", "CE": "C"},
	"PHE": {"CB": "C", "CG": "A", "CD1": "A", "CD2": "A", "CE1": "A", "CE2": "A", "CZ": "A"},
	"PRO": {"CB": "C", "CG": "C", "CD": "C"},
	"SER": {"CB": "C", "OG": "OA"},
	"THR": {"CB": "C", "OG1": "OA", "CG2": "C"},
	"TRP": {"CB": "C", "CG": "A", "CD1": "A", "CD2": "A", "NE1": "N", "CE2": "A", "CE3": "A", "CZ2": "A", "CZ3": "A", "CH2": "A"},
	"TYR": {"CB": "C", "CG": "A", "CD1": "A", "CD2": "A", "CE1": "A", "CE2": "A", "CZ": "A", "OH": "OA"},
	"VAL": {"CB": "C", "CG1": "C", "CG2": "C"},
}

// backboneTypes covers the peptide backbone shared by every residue.
var backboneTypes = map[string]string{
	"N":   "N",
	"CA":  "C",
	"C":   "C",
	"O":   "OA",
	"OXT": "OA",
}

// twoLetterElements maps leading two-letter element symbols found in atom
// names of HETATM groups and modified residues.
var twoLetterElements = map[string]string{
	"CL": "Cl",
	"BR": "Br",
	"FE": "Fe",
	"ZN": "Zn",
	"MG": "Mg",
	"MN": "Mn",
}

// singleLetterElements maps a leading element letter to a docking atom type.
var singleLetterElements = map[byte]string{
	'H': "HD",
	'C': "C",
	'N': "N",
	'O': "OA",
	'S': "S",
	'P': "P",
	'F': "F",
	'I': "I",
}

// AssignAtomType infers the docking atom type for an atom given its residue
// and atom name. Lookup order: residue-specific side chain table, generic
// backbone table, element guess from the atom name. Always returns a usable
// type; unknown atoms default to aliphatic carbon.
func AssignAtomType(residue, atomName string) string {
	residue = strings.ToUpper(strings.TrimSpace(residue))
	atomName = strings.ToUpper(strings.TrimSpace(atomName))

	// Protonation variants share the parent residue's side chain typing.
	if parent, ok := residueVariants[residue]; ok {
		residue = parent
	}

	if byResidue, ok := sideChainTypes[residue]; ok {
		if t, ok := byResidue[atomName]; ok {
			return t
		}
		if t, ok := backboneTypes[atomName]; ok {
			return t
		}
	}

	if t, ok := backboneTypes[atomName]; ok {
		return t
	}

	return elementGuess(atomName)
}

// elementGuess infers a type from the leading character(s) of the atom name,
// ignoring leading digits as in hydrogen names like 1HB.
func elementGuess(atomName string) string {
	name := strings.TrimLeft(atomName, "0123456789 ")
	if name == "" {
		return "C"
	}

	if len(name) >= 2 {
		if t, ok := twoLetterElements[name[:2]]; ok {
			return t
		}
	}
	if t, ok := singleLetterElements[name[0]]; ok {
		return t
	}

	return "C"
}

// residueVariants maps common protonation-state residue codes to the
// standard residue they derive from.
var residueVariants = map[string]string{
	"HID": "HIS", "HIE": "HIS", "HIP": "HIS",
	"HSD": "HIS", "HSE": "HIS", "HSP": "HIS",
	"CYX": "CYS", "CYM": "CYS",
	"ASH": "ASP", "GLH": "GLU", "LYN": "LYS",
}
