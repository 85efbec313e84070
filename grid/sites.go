package grid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tikz/dock/pdbqt"
)

// solventResidues are water and common ion codes ignored when looking for
// co-crystallized ligands.
var solventResidues = map[string]bool{
	"HOH": true, "WAT": true, "TIP": true, "SOL": true,
	"NA": true, "CL": true, "K": true, "MG": true,
	"CA": true, "ZN": true, "MN": true, "FE": true,
}

// minLigandAtoms filters out small fragments when grouping HETATM residues.
const minLigandAtoms = 5

// siteResidueOffsets are the start columns of the up-to-four residue entries
// on a SITE record line: name at the offset, chain 4 past it, sequence number
// in the following 4 columns.
var siteResidueOffsets = [4]int{18, 29, 40, 51}

// SiteBox is a candidate search volume derived from the structure's own
// annotations: a SITE record or a co-crystallized ligand.
type SiteBox struct {
	Name        string
	Description string
	Box         Box
}

// Sites proposes candidate search volumes for a receptor: boxes around the
// residues named by SITE records first, then boxes around co-crystallized
// ligands, deduplicated across both sources.
func Sites(text string, atoms []pdbqt.Atom) []SiteBox {
	var sites []SiteBox
	for _, s := range append(siteCandidates(text, atoms), ligandCandidates(atoms)...) {
		sites = appendUnique(sites, s)
	}
	return sites
}

// SiteBoxes returns a padded box around each SITE record's residues.
func SiteBoxes(text string, atoms []pdbqt.Atom) []SiteBox {
	var sites []SiteBox
	for _, s := range siteCandidates(text, atoms) {
		sites = appendUnique(sites, s)
	}
	return sites
}

// LigandBoxes groups non-solvent HETATM records by residue and proposes a
// padded box around each group of at least 5 atoms.
func LigandBoxes(atoms []pdbqt.Atom) []SiteBox {
	var sites []SiteBox
	for _, s := range ligandCandidates(atoms) {
		sites = appendUnique(sites, s)
	}
	return sites
}

// siteResidue identifies one residue named by a SITE record. The record
// carries chain and sequence number only; the residue name is informational.
type siteResidue struct {
	chain byte
	seq   int
}

// siteCandidates parses SITE records and centers a box on each named site's
// atoms. Sites whose residues match no atom are skipped.
func siteCandidates(text string, atoms []pdbqt.Atom) []SiteBox {
	residues := make(map[string][]siteResidue)
	var order []string

	for _, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(line, "SITE ") || len(line) < 14 {
			continue
		}

		id := strings.TrimSpace(line[11:14])
		if id == "" {
			continue
		}
		if _, seen := residues[id]; !seen {
			order = append(order, id)
		}

		for _, off := range siteResidueOffsets {
			if len(line) < off+9 {
				break
			}
			if strings.TrimSpace(line[off:off+3]) == "" {
				continue
			}
			seq, err := strconv.Atoi(strings.TrimSpace(line[off+5 : off+9]))
			if err != nil {
				continue
			}
			residues[id] = append(residues[id], siteResidue{chain: line[off+4], seq: seq})
		}
	}

	var sites []SiteBox
	for _, id := range order {
		wanted := make(map[siteResidue]bool, len(residues[id]))
		for _, r := range residues[id] {
			wanted[r] = true
		}

		var matched []pdbqt.Atom
		for _, a := range atoms {
			if wanted[siteResidue{chain: a.Chain, seq: a.ResidueNumber}] {
				matched = append(matched, a)
			}
		}
		if len(matched) == 0 {
			continue
		}

		sites = append(sites, SiteBox{
			Name:        "Site " + id,
			Description: fmt.Sprintf("Site record %s (%d residues)", id, len(residues[id])),
			Box:         CenteredBox(matched, 5),
		})
	}

	return sites
}

func ligandCandidates(atoms []pdbqt.Atom) []SiteBox {
	type key struct {
		residue string
		chain   byte
		number  int
	}

	groups := make(map[key][]pdbqt.Atom)
	var order []key

	for _, a := range atoms {
		if !a.Het || solventResidues[a.Residue] {
			continue
		}
		k := key{a.Residue, a.Chain, a.ResidueNumber}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], a)
	}

	var sites []SiteBox
	for _, k := range order {
		group := groups[k]
		if len(group) < minLigandAtoms {
			continue
		}

		sites = append(sites, SiteBox{
			Name: "Ligand " + k.residue,
			Description: fmt.Sprintf("Chain %s, residue %d (%d atoms)",
				string(k.chain), k.number, len(group)),
			Box: CenteredBox(group, 5),
		})
	}

	return sites
}

// appendUnique drops the box when its center lies within 2 A of one already
// collected.
func appendUnique(sites []SiteBox, s SiteBox) []SiteBox {
	for _, u := range sites {
		if distance(u.Box.Center, s.Box.Center) < 2 {
			return sites
		}
	}
	return append(sites, s)
}
