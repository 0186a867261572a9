// Package compiler dispatches the external SSL/TP2 compiler binaries as
// background processes and hands their stdout back for diagnostic parsing.
// The compiler itself is a black box; only its text output matters.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Result carries the outcome of one compile run. Stdout is the sole input to
// diagnostic parsing regardless of exit status.
type Result struct {
	JobID    string
	Path     string
	Seq      uint64
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Runner executes compile requests in the background. Every request for a
// file gets a monotonically increasing sequence stamp, and completions whose
// stamp is no longer the latest for that file are dropped instead of
// delivered. This closes the save-vs-callback race: diagnostics from a stale
// compile can never overwrite fresher ones.
type Runner struct {
	logger  *log.Logger
	timeout time.Duration

	mu     sync.Mutex
	latest map[string]uint64
}

// NewRunner builds a Runner. A nil logger falls back to log.Default.
func NewRunner(logger *log.Logger, timeout time.Duration) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		logger:  logger,
		timeout: timeout,
		latest:  make(map[string]uint64),
	}
}

// Start launches argv against path with the working directory set to the
// file's directory. onDone runs on a background goroutine once the process
// exits, unless a newer Start for the same path superseded this run first.
// The returned stamp identifies the run.
func (r *Runner) Start(ctx context.Context, path string, argv []string, onDone func(Result)) (uint64, error) {
	if len(argv) == 0 {
		return 0, errors.New("compiler command required")
	}
	seq := r.stamp(path)
	jobID := uuid.NewString()

	runCtx := ctx
	cancel := func() {}
	if r.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
	}

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = filepath.Dir(path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return 0, err
	}
	r.logger.Printf("compiler: job=%s seq=%d path=%s cmd=%v", jobID, seq, path, argv)

	go func() {
		defer cancel()
		err := cmd.Wait()
		exitCode := 0
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
			err = nil
		}
		if !r.isLatest(path, seq) {
			r.logger.Printf("compiler: job=%s seq=%d superseded, dropping result", jobID, seq)
			return
		}
		onDone(Result{
			JobID:    jobID,
			Path:     path,
			Seq:      seq,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: exitCode,
			Err:      err,
		})
	}()
	return seq, nil
}

func (r *Runner) stamp(path string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest[path]++
	return r.latest[path]
}

func (r *Runner) isLatest(path string, seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest[path] == seq
}
