// Package engine orchestrates docking runs against an external rigid-docking
// engine binary. Each submitted job gets its own isolated execution context:
// a private staging directory, a single engine process, a wall clock timeout
// and best-effort cleanup, with at most one active run per controller.
package engine

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultTimeout is the wall clock limit for a run when the job does not
// set its own.
const DefaultTimeout = 60 * time.Second

// Parameter ranges accepted by the engine.
const (
	minExhaustiveness, maxExhaustiveness = 1, 128
	minNumModes, maxNumModes             = 1, 20
	minEnergyRange, maxEnergyRange       = 0.0, 10.0
	minBoxDim, maxBoxDim                 = 1.0, 200.0
)

// Config holds the controller's fixed settings.
type Config struct {
	// EnginePath is the docking engine binary.
	EnginePath string

	// WorkDir is the base directory for per-run staging directories.
	// Empty uses the OS temp dir.
	WorkDir string

	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration
}

// Controller owns docking runs for one session. Submitting a new job tears
// down the active one first, so at most one engine process runs at a time;
// contexts are never pooled or reused between jobs.
type Controller struct {
	cfg Config
	log *zap.Logger

	mu     sync.Mutex
	active *Run
}

// NewController returns a controller for the given engine binary.
// A nil logger disables logging.
func NewController(cfg Config, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Controller{cfg: cfg, log: log}
}

// Submit starts a docking run for the job and returns immediately with its
// handle. A run already active for this controller is aborted first.
// Validation failures are reported synchronously; everything after that
// settles through the handle.
func (c *Controller) Submit(job Job) (*Run, error) {
	if err := validateJob(&job); err != nil {
		return nil, err
	}

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	run := newRun(job.ID, cancel)

	c.mu.Lock()
	prev := c.active
	c.active = run
	c.mu.Unlock()

	if prev != nil {
		prev.Abort()
	}

	c.log.Info("job submitted",
		zap.String("job", job.ID),
		zap.Duration("timeout", timeout))

	go func() {
		// The displaced run settles before the replacement starts, so two
		// engine processes never overlap.
		if prev != nil {
			<-prev.Done()
		}
		c.execute(ctx, run, job)
	}()

	return run, nil
}

// Abort terminates the active run, if any. Idempotent.
func (c *Controller) Abort() {
	c.mu.Lock()
	run := c.active
	c.mu.Unlock()

	if run != nil {
		run.Abort()
	}
}

// Active returns the handle of the currently active run, or nil.
func (c *Controller) Active() *Run {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil && c.active.Status().Terminal() {
		return nil
	}
	return c.active
}

// Version runs the engine binary with --help and returns the first line
// mentioning a version, or a placeholder when none is found.
func (c *Controller) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, c.cfg.EnginePath, "--help")
	out, _ := cmd.CombinedOutput() // the engine exits non-zero on --help

	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for i := 0; i < 10 && scanner.Scan(); i++ {
		if strings.Contains(strings.ToLower(scanner.Text()), "version") {
			return strings.TrimSpace(scanner.Text()), nil
		}
	}

	if len(out) == 0 {
		return "", errors.Wrap(ErrEngineInit, "engine binary not runnable")
	}
	return "unknown version", nil
}

// validateJob rejects submissions the engine is known to choke on.
func validateJob(job *Job) error {
	if strings.TrimSpace(job.Receptor) == "" {
		return fmt.Errorf("empty receptor")
	}
	if strings.TrimSpace(job.Ligand) == "" {
		return fmt.Errorf("empty ligand")
	}

	for axis, dim := range map[string]float64{
		"x": job.Box.Size.X, "y": job.Box.Size.Y, "z": job.Box.Size.Z,
	} {
		if dim < minBoxDim || dim > maxBoxDim {
			return fmt.Errorf("box size %s=%.2f outside [%v, %v]", axis, dim, minBoxDim, maxBoxDim)
		}
	}

	p := &job.Params
	if p.Exhaustiveness == 0 && p.NumModes == 0 && p.EnergyRange == 0 {
		*p = DefaultParams()
	}
	if p.Exhaustiveness < minExhaustiveness || p.Exhaustiveness > maxExhaustiveness {
		return fmt.Errorf("exhaustiveness %d outside [%d, %d]", p.Exhaustiveness, minExhaustiveness, maxExhaustiveness)
	}
	if p.NumModes < minNumModes || p.NumModes > maxNumModes {
		return fmt.Errorf("num modes %d outside [%d, %d]", p.NumModes, minNumModes, maxNumModes)
	}
	if p.EnergyRange < minEnergyRange || p.EnergyRange > maxEnergyRange {
		return fmt.Errorf("energy range %.2f outside [%v, %v]", p.EnergyRange, minEnergyRange, maxEnergyRange)
	}

	return nil
}
