// Package remote declares the contracts for the pipeline's upstream
// collaborators: structure and compound databases, format conversion, and
// session persistence. Implementations live outside this module; the
// pipeline only consumes these interfaces.
package remote

import (
	"context"

	"github.com/tikz/dock/engine"
	"github.com/tikz/dock/result"
)

// Structure is a receptor fetched from a structure database.
type Structure struct {
	Accession string
	Title     string
	Text      string // structural text, PDB format
}

// StructureFetcher retrieves structures by database accession,
// e.g. a PDB ID from RCSB.
type StructureFetcher interface {
	FetchByAccession(ctx context.Context, accession string) (Structure, error)
}

// Compound is a small molecule from a compound database, carrying its
// structure blob in the database's native format plus any computed
// descriptors the database provides.
type Compound struct {
	ID          string
	Name        string
	Format      string // e.g. "sdf", "mol2", "pdb"
	Data        []byte
	Descriptors map[string]float64
}

// CompoundService looks up ligands by name or identifier.
type CompoundService interface {
	Search(ctx context.Context, query string) ([]Compound, error)
	Fetch(ctx context.Context, id string) (Compound, error)
}

// FormatConverter translates arbitrary small-molecule formats into the
// fixed-column atomic record format used by the docking pipeline.
type FormatConverter interface {
	ToAtomRecords(ctx context.Context, data []byte, format string) (string, error)
}

// Session is a complete job configuration together with its decoded result,
// as saved and restored by a persistence service.
type Session struct {
	ID     string
	Name   string
	Job    engine.Job
	Result *result.Result
}

// SessionStore saves and restores docking sessions.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Load(ctx context.Context, id string) (Session, error)
	List(ctx context.Context) ([]Session, error)
}
