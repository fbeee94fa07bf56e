// internal/browser/cdp/session.go
package cdp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/camcheck/internal/browser"
	"github.com/xkilldash9x/camcheck/internal/config"
)

// Session drives a local Chrome over the DevTools protocol.
type Session struct {
	// ctx is the tab context returned by chromedp.NewContext. It outlives the
	// run context so the browser can still be shut down after an interrupt.
	ctx          context.Context
	cancel       context.CancelFunc
	allocCancel  context.CancelFunc
	logger       *zap.Logger
	pollInterval time.Duration

	closeOnce sync.Once
	closeErr  error
}

var _ browser.Session = (*Session)(nil)

// NewSession launches Chrome and opens one tab. When camera access is enabled
// the videoCapture permission is granted to every origin before any check runs.
func NewSession(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := logger.Named("cdp")

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), AllocatorOptions(cfg.Browser)...)
	tabCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(log.Sugar().Debugf),
		chromedp.WithErrorf(log.Sugar().Debugf),
	)

	s := &Session{
		ctx:          tabCtx,
		cancel:       cancel,
		allocCancel:  allocCancel,
		logger:       log,
		pollInterval: cfg.Timeouts.PollInterval,
	}

	log.Info("Launching Chrome.", zap.Bool("headless", cfg.Browser.Headless), zap.String("binary", cfg.Browser.Binary))
	// The first Run allocates the browser; it must use the tab context itself.
	if err := chromedp.Run(tabCtx); err != nil {
		s.release()
		return nil, fmt.Errorf("%w: launching chrome: %w", browser.ErrStartup, err)
	}

	if cfg.Browser.AllowCamera {
		if err := s.run(ctx, grantCamera()); err != nil {
			s.release()
			return nil, fmt.Errorf("%w: granting camera permission: %w", browser.ErrStartup, err)
		}
	}

	chromedp.ListenTarget(tabCtx, s.onEvent)
	log.Info("Chrome session ready.")
	return s, nil
}

// grantCamera grants videoCapture on the default browser context. Permission
// commands are browser-scoped, so they go to the browser executor.
func grantCamera() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		c := chromedp.FromContext(ctx)
		if c == nil || c.Browser == nil {
			return errors.New("no browser attached to context")
		}
		return cdpbrowser.GrantPermissions([]cdpbrowser.PermissionType{cdpbrowser.PermissionTypeVideoCapture}).
			Do(cdp.WithExecutor(ctx, c.Browser))
	})
}

// onEvent mirrors page console output and uncaught exceptions into the log.
func (s *Session) onEvent(ev interface{}) {
	switch ev := ev.(type) {
	case *runtime.EventConsoleAPICalled:
		args := make([]string, 0, len(ev.Args))
		for _, arg := range ev.Args {
			if len(arg.Value) > 0 {
				args = append(args, string(arg.Value))
			} else if arg.Description != "" {
				args = append(args, arg.Description)
			}
		}
		s.logger.Debug("Page console.", zap.String("type", ev.Type.String()), zap.String("message", strings.Join(args, " ")))
	case *runtime.EventExceptionThrown:
		if ev.ExceptionDetails != nil {
			s.logger.Warn("Uncaught page exception.", zap.String("error", ev.ExceptionDetails.Error()))
		}
	}
}

// run executes actions on the tab, bounded by both the session and ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating.", zap.String("url", url))
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// WaitPresent polls until an element matching loc is in the DOM.
func (s *Session) WaitPresent(ctx context.Context, loc browser.Locator, timeout time.Duration) (browser.Element, error) {
	return s.wait(ctx, loc, browser.ConditionPresent, timeout)
}

// WaitVisible polls until an element matching loc is in the DOM and visible.
func (s *Session) WaitVisible(ctx context.Context, loc browser.Locator, timeout time.Duration) (browser.Element, error) {
	return s.wait(ctx, loc, browser.ConditionVisible, timeout)
}

func (s *Session) wait(ctx context.Context, loc browser.Locator, cond browser.Condition, timeout time.Duration) (browser.Element, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	opts := append(queryOptions(loc), chromedp.RetryInterval(s.pollInterval))
	if cond == browser.ConditionVisible {
		opts = append(opts, chromedp.NodeVisible)
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Debug("Waiting for element.", zap.Stringer("locator", loc), zap.String("condition", string(cond)), zap.Duration("timeout", timeout))
	var nodes []*cdp.Node
	err := s.run(waitCtx, chromedp.Nodes(loc.Value, &nodes, opts...))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return nil, &browser.TimeoutError{Locator: loc, Condition: cond, Timeout: timeout}
		}
		return nil, fmt.Errorf("waiting for %s of %s: %w", cond, loc, err)
	}
	if len(nodes) == 0 {
		return nil, &browser.TimeoutError{Locator: loc, Condition: cond, Timeout: timeout}
	}
	return &element{s: s, node: nodes[0], loc: loc}, nil
}

// queryOptions maps a locator onto chromedp's selector kinds.
func queryOptions(loc browser.Locator) []chromedp.QueryOption {
	switch loc.Strategy {
	case browser.StrategyXPath:
		return []chromedp.QueryOption{chromedp.BySearch}
	case browser.StrategyCSS:
		return []chromedp.QueryOption{chromedp.ByQuery}
	default:
		return []chromedp.QueryOption{chromedp.ByID}
	}
}

// Screenshot captures the viewport as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("capturing screenshot: %w", err)
	}
	return buf, nil
}

// Close closes the browser gracefully, bounded by ctx, then tears down the
// allocator. Only the first call does any work.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		done := make(chan error, 1)
		go func() { done <- chromedp.Cancel(s.ctx) }()

		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				s.closeErr = fmt.Errorf("closing chrome: %w", err)
			}
		case <-ctx.Done():
			s.closeErr = fmt.Errorf("closing chrome: %w", ctx.Err())
		}
		// Kills the process if the graceful close did not finish.
		s.release()
		s.logger.Info("Chrome session closed.")
	})
	return s.closeErr
}

func (s *Session) release() {
	s.cancel()
	s.allocCancel()
}
