// Package dock ties the docking pipeline together: receptor and ligand
// preparation, search volume selection and a single engine run, returning
// ranked poses.
package dock

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tikz/dock/engine"
	"github.com/tikz/dock/grid"
	"github.com/tikz/dock/pdbqt"
	"github.com/tikz/dock/result"
)

// Pipeline runs complete dockings against one engine controller.
type Pipeline struct {
	Engine *engine.Controller
}

// New returns a pipeline for the given engine configuration.
// A nil logger disables logging.
func New(cfg engine.Config, log *zap.Logger) *Pipeline {
	return &Pipeline{Engine: engine.NewController(cfg, log)}
}

// PrepareReceptor turns raw receptor text into engine-ready docking format:
// non-polymer atoms are stripped and the result converted unless it already
// is valid PDBQT.
func PrepareReceptor(text string) (string, error) {
	if pdbqt.IsDockingReady(text) {
		return text, nil
	}

	prepared := pdbqt.Convert(pdbqt.KeepPolymer(text))
	if !pdbqt.IsDockingReady(prepared) {
		return "", fmt.Errorf("receptor has no usable atom records")
	}

	return prepared, nil
}

// PrepareLigand converts raw ligand text into docking format. Unlike the
// receptor path, non-polymer residues are kept: the ligand usually is one.
func PrepareLigand(text string) (string, error) {
	if pdbqt.IsDockingReady(text) {
		return text, nil
	}

	prepared := pdbqt.Convert(text)
	if !pdbqt.IsDockingReady(prepared) {
		return "", fmt.Errorf("ligand has no usable atom records")
	}

	return prepared, nil
}

// SuggestBox proposes a search volume for the receptor: the detected binding
// pocket when the heuristic finds one, otherwise a blind box over the whole
// structure.
func SuggestBox(receptorAtoms []pdbqt.Atom) grid.Box {
	if pocket := grid.DetectPocket(receptorAtoms); pocket != nil {
		return pocket.Box
	}
	return grid.BlindBox(receptorAtoms, 10)
}

// Dock prepares both inputs, picks a search box when the job does not carry
// one, runs the engine and waits for the decoded result.
func (p *Pipeline) Dock(job engine.Job) (*result.Result, error) {
	receptor, err := PrepareReceptor(job.Receptor)
	if err != nil {
		return nil, fmt.Errorf("prepare receptor: %v", err)
	}
	job.Receptor = receptor

	ligand, err := PrepareLigand(job.Ligand)
	if err != nil {
		return nil, fmt.Errorf("prepare ligand: %v", err)
	}
	job.Ligand = ligand

	if job.Box.Size.X == 0 && job.Box.Size.Y == 0 && job.Box.Size.Z == 0 {
		job.Box = SuggestBox(pdbqt.ParseAtoms(receptor))
	}

	run, err := p.Engine.Submit(job)
	if err != nil {
		return nil, fmt.Errorf("submit: %v", err)
	}

	return run.Wait()
}
