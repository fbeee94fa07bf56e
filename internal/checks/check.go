// internal/checks/check.go
package checks

import (
	"context"
	"time"

	"github.com/xkilldash9x/camcheck/internal/browser"
	"github.com/xkilldash9x/camcheck/internal/config"
)

// Target carries the per-run parameters every check receives.
type Target struct {
	URL string
	// UploadFile is the local path sent to the file input. It has no default.
	UploadFile string
	// ElementTimeout bounds each wait for an element to appear.
	ElementTimeout time.Duration
	// ResultsTimeout bounds the wait for the comparison results.
	ResultsTimeout time.Duration
}

// TargetFromConfig builds the run target from the loaded configuration.
func TargetFromConfig(cfg *config.Config) Target {
	return Target{
		URL:            cfg.Target.URL,
		UploadFile:     cfg.Target.UploadFile,
		ElementTimeout: cfg.Timeouts.Element,
		ResultsTimeout: cfg.Timeouts.Results,
	}
}

// Check is one named step of the suite. Checks share the session and run in
// order, so a check may rely on page state left by the ones before it.
type Check struct {
	Name string
	Run  func(ctx context.Context, s browser.Session, t Target) error
}
