// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/camcheck/internal/browser"
	"github.com/xkilldash9x/camcheck/internal/config"
	"github.com/xkilldash9x/camcheck/internal/observability"
	"github.com/xkilldash9x/camcheck/internal/service"
)

// resetForTest isolates a test from global logger state, stray environment
// overrides and any camcheck.yaml in the working directory.
func resetForTest(t *testing.T) {
	t.Helper()
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	t.Chdir(t.TempDir())
	t.Setenv("CAMCHECK_LOGGER_LEVEL", "fatal")

	orig := newSessionFactory
	t.Cleanup(func() { newSessionFactory = orig })
}

// newPristineRootCmd returns a fresh command tree with captured output.
func newPristineRootCmd(args ...string) (*cobra.Command, *bytes.Buffer) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	return cmd, &out
}

// fakeFactory hands out a fakeSession and records the config it was given.
type fakeFactory struct {
	session *fakeSession
	err     error
	cfg     *config.Config
}

func (f *fakeFactory) Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (browser.Session, error) {
	f.cfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func useFactory(f *fakeFactory) {
	newSessionFactory = func() service.SessionFactory { return f }
}

// fakeSession renders a page where every element exists and is shown, except
// the ids listed in missing.
type fakeSession struct {
	mu       sync.Mutex
	missing  map[string]bool
	visited  []string
	uploaded []string
	closed   int
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visited = append(s.visited, url)
	return nil
}

func (s *fakeSession) find(loc browser.Locator, cond browser.Condition, timeout time.Duration) (browser.Element, error) {
	if s.missing[loc.Value] {
		return nil, &browser.TimeoutError{Locator: loc, Condition: cond, Timeout: timeout}
	}
	return &fakeElement{s: s, loc: loc}, nil
}

func (s *fakeSession) WaitPresent(ctx context.Context, loc browser.Locator, timeout time.Duration) (browser.Element, error) {
	return s.find(loc, browser.ConditionPresent, timeout)
}

func (s *fakeSession) WaitVisible(ctx context.Context, loc browser.Locator, timeout time.Duration) (browser.Element, error) {
	return s.find(loc, browser.ConditionVisible, timeout)
}

func (s *fakeSession) Screenshot(ctx context.Context) ([]byte, error) { return []byte("\x89PNG"), nil }

func (s *fakeSession) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

type fakeElement struct {
	s   *fakeSession
	loc browser.Locator
}

func (e *fakeElement) Locator() browser.Locator                       { return e.loc }
func (e *fakeElement) Click(ctx context.Context) error                { return nil }
func (e *fakeElement) IsDisplayed(ctx context.Context) (bool, error) { return true, nil }

func (e *fakeElement) SendKeys(ctx context.Context, keys string) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	e.s.uploaded = append(e.s.uploaded, keys)
	return nil
}

func (e *fakeElement) Attribute(ctx context.Context, name string) (string, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if len(e.s.uploaded) == 0 {
		return "", nil
	}
	return e.s.uploaded[len(e.s.uploaded)-1], nil
}
