// internal/checks/runner.go
package checks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/camcheck/internal/browser"
)

// DefaultShutdownTimeout bounds closing the session when no other limit is set.
const DefaultShutdownTimeout = 15 * time.Second

// SessionOpener starts the browser session a run executes against.
type SessionOpener func(ctx context.Context) (browser.Session, error)

// Runner executes a suite sequentially against a single session.
type Runner struct {
	checks          []Check
	target          Target
	out             io.Writer
	logger          *zap.Logger
	screenshotDir   string
	shutdownTimeout time.Duration

	now      func() time.Time
	newRunID func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithScreenshotDir enables failure screenshots written under dir.
func WithScreenshotDir(dir string) Option {
	return func(r *Runner) { r.screenshotDir = dir }
}

// WithShutdownTimeout bounds the final session close.
func WithShutdownTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.shutdownTimeout = d
		}
	}
}

// NewRunner creates a runner that prints one result line per check to out.
func NewRunner(checks []Check, target Target, out io.Writer, logger *zap.Logger, opts ...Option) *Runner {
	r := &Runner{
		checks:          checks,
		target:          target,
		out:             out,
		logger:          logger.Named("runner"),
		shutdownTimeout: DefaultShutdownTimeout,
		now:             time.Now,
		newRunID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run opens a session, executes every check in order and closes the session.
// A session that fails to open is fatal: no check runs and nothing is closed.
// Otherwise the report is always returned, along with an error wrapping
// ErrChecksFailed when any check failed.
func (r *Runner) Run(ctx context.Context, open SessionOpener) (*Report, error) {
	report := &Report{RunID: r.newRunID(), Started: r.now()}
	log := r.logger.With(zap.String("run_id", report.RunID))

	log.Info("Starting browser session.", zap.String("url", r.target.URL))
	session, err := open(ctx)
	if err != nil {
		log.Error("Browser session failed to start.", zap.Error(err))
		return nil, fmt.Errorf("starting browser session: %w", err)
	}

	for _, check := range r.checks {
		res := r.runCheck(ctx, session, check, log)
		if !res.Passed() {
			res.Screenshot = r.captureFailure(ctx, session, report.RunID, check.Name, log)
		}
		report.Results = append(report.Results, res)
		fmt.Fprintln(r.out, res.Line())
	}

	r.closeSession(ctx, session, log)
	report.Finished = r.now()

	log.Info("Run finished.",
		zap.Int("passed", report.Passed()),
		zap.Int("failed", report.Failed()),
		zap.Duration("duration", report.Finished.Sub(report.Started)),
	)
	return report, report.Err()
}

// runCheck executes one check. A cancelled run context fails the check without
// touching the browser; a panic is reported as an error outcome.
func (r *Runner) runCheck(ctx context.Context, session browser.Session, check Check, log *zap.Logger) (res Result) {
	res.Name = check.Name
	start := r.now()
	log = log.With(zap.String("check", check.Name))

	defer func() {
		if p := recover(); p != nil {
			log.Error("Check panicked.", zap.Any("panic", p), zap.String("stack", string(debug.Stack())))
			res.Err = fmt.Errorf("check panicked: %v", p)
		}
		res.Duration = r.now().Sub(start)
		res.Outcome = Classify(res.Err)

		if res.Passed() {
			log.Info("Check passed.", zap.Duration("duration", res.Duration))
		} else {
			log.Warn("Check failed.", zap.String("outcome", string(res.Outcome)), zap.Error(res.Err), zap.Duration("duration", res.Duration))
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	log.Debug("Running check.")
	res.Err = check.Run(ctx, session, r.target)
	return res
}

// captureFailure writes a screenshot of the page for a failed check and returns
// its path. Capture problems are logged, never propagated.
func (r *Runner) captureFailure(ctx context.Context, session browser.Session, runID, name string, log *zap.Logger) string {
	if r.screenshotDir == "" || ctx.Err() != nil {
		return ""
	}
	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.shutdownTimeout)
	defer cancel()

	png, err := session.Screenshot(shotCtx)
	if err != nil {
		log.Warn("Could not capture failure screenshot.", zap.String("check", name), zap.Error(err))
		return ""
	}
	if err := os.MkdirAll(r.screenshotDir, 0o755); err != nil {
		log.Warn("Could not create screenshot directory.", zap.String("dir", r.screenshotDir), zap.Error(err))
		return ""
	}
	path := filepath.Join(r.screenshotDir, fmt.Sprintf("%s-%s.png", runID, name))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		log.Warn("Could not write failure screenshot.", zap.String("path", path), zap.Error(err))
		return ""
	}
	log.Info("Saved failure screenshot.", zap.String("check", name), zap.String("path", path))
	return path
}

// closeSession closes the session with a fresh deadline so it also runs after
// the run context was cancelled. Close errors are only logged.
func (r *Runner) closeSession(ctx context.Context, session browser.Session, log *zap.Logger) {
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.shutdownTimeout)
	defer cancel()

	if err := session.Close(closeCtx); err != nil {
		log.Warn("Error closing browser session.", zap.Error(err))
		return
	}
	log.Debug("Browser session closed.")
}
