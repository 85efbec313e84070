package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/tikz/dock/result"
)

// Staged file names inside a run's private directory.
const (
	receptorFile = "receptor.pdbqt"
	ligandFile   = "ligand.pdbqt"
	outputFile   = "out.pdbqt"
)

// execute drives one job from staging to settlement. It runs in its own
// goroutine; all communication with the caller goes through the Run handle.
func (c *Controller) execute(ctx context.Context, run *Run, job Job) {
	log := c.log.With(zap.String("job", job.ID))

	run.emit(Initializing, 5, "loading engine")

	enginePath, err := checkEngine(c.cfg.EnginePath)
	if err != nil {
		log.Error("engine init failed", zap.Error(err))
		run.settle(Failed, nil, err)
		return
	}
	run.emit(Initializing, 15, "engine ready")

	dir, err := os.MkdirTemp(c.cfg.WorkDir, "dock-run-")
	if err != nil {
		run.settle(Failed, nil, errors.Wrap(ErrMount, err.Error()))
		return
	}
	// Staged files are job-scoped; remove them regardless of outcome.
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn("staging cleanup failed", zap.Error(err))
		}
	}()

	run.emit(FilesStaged, 20, "staging input files")

	receptorPath := filepath.Join(dir, receptorFile)
	ligandPath := filepath.Join(dir, ligandFile)
	outputPath := filepath.Join(dir, outputFile)

	if err := os.WriteFile(receptorPath, []byte(job.Receptor), 0644); err != nil {
		run.settle(Failed, nil, errors.Wrap(ErrMount, err.Error()))
		return
	}
	if err := os.WriteFile(ligandPath, []byte(job.Ligand), 0644); err != nil {
		run.settle(Failed, nil, errors.Wrap(ErrMount, err.Error()))
		return
	}
	run.emit(FilesStaged, 25, "input files staged")

	args := buildArgs(job, receptorPath, ligandPath, outputPath)
	log.Info("invoking engine", zap.Strings("args", args))

	var engineLog bytes.Buffer
	cmd := exec.CommandContext(ctx, enginePath, args...)
	cmd.Dir = dir
	cmd.Stdout = &engineLog
	cmd.Stderr = &engineLog
	// Stop waiting on inherited pipes once the context kills the engine,
	// so a terminated run settles promptly.
	cmd.WaitDelay = time.Second

	run.emit(Executing, 30, "engine running")

	if err := cmd.Run(); err != nil {
		status, cause := classifyExit(ctx, run, err, engineLog.String())
		log.Warn("engine did not complete", zap.Stringer("status", status), zap.Error(cause))
		run.settle(status, nil, cause)
		return
	}

	output, err := os.ReadFile(outputPath)
	if err != nil || len(bytes.TrimSpace(output)) == 0 {
		run.settle(Failed, nil, errors.Wrap(ErrNoOutput, "engine exited cleanly without writing poses"))
		return
	}

	run.emit(ParsingOutput, 90, "decoding poses")
	res := result.Assemble(engineLog.String(), string(output))

	log.Info("job completed", zap.Int("poses", len(res.Poses)))
	run.settle(Completed, &res, nil)
}

// checkEngine resolves the engine binary the same way the exec call would:
// bare names search PATH, explicit paths are checked directly.
func checkEngine(path string) (string, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", errors.Wrap(ErrEngineInit, err.Error())
	}
	return resolved, nil
}

// buildArgs assembles the engine's command line. Execution is always forced
// onto a single core: the isolated run context cannot reliably hand off
// multi-core work to this engine build.
func buildArgs(job Job, receptorPath, ligandPath, outputPath string) []string {
	args := []string{
		"--receptor", receptorPath,
		"--ligand", ligandPath,
		"--center_x", formatCoord(job.Box.Center.X),
		"--center_y", formatCoord(job.Box.Center.Y),
		"--center_z", formatCoord(job.Box.Center.Z),
		"--size_x", formatCoord(job.Box.Size.X),
		"--size_y", formatCoord(job.Box.Size.Y),
		"--size_z", formatCoord(job.Box.Size.Z),
		"--exhaustiveness", fmt.Sprintf("%d", job.Params.Exhaustiveness),
		"--num_modes", fmt.Sprintf("%d", job.Params.NumModes),
		"--energy_range", formatCoord(job.Params.EnergyRange),
	}

	if job.Params.Seed != nil {
		args = append(args, "--seed", fmt.Sprintf("%d", *job.Params.Seed))
	}

	args = append(args, "--cpu", "1", "--out", outputPath)
	return args
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// classifyExit maps a failed engine process to the settlement taxonomy:
// an abort requested by the caller, a wall clock timeout, or a crash.
func classifyExit(ctx context.Context, run *Run, exitErr error, logText string) (Status, error) {
	if run.aborted.Load() {
		return Aborted, ErrAborted
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return TimedOut, ErrTimeout
	}

	detail := exitErr.Error()
	if tail := logTail(logText, 3); tail != "" {
		detail += ": " + tail
	}
	return Failed, errors.Wrap(ErrCrashed, detail)
}

// logTail returns the last n non-empty log lines joined on " | ".
func logTail(text string, n int) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var kept []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, strings.TrimSpace(l))
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, " | ")
}
