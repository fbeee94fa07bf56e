// internal/browser/webdriver/session.go
package webdriver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/camcheck/internal/browser"
	"github.com/xkilldash9x/camcheck/internal/config"
	"github.com/xkilldash9x/camcheck/internal/observability"
)

// Browser preferences that pre-grant camera access, so getUserMedia never prompts.
const (
	// 1 = allow, 2 = deny.
	firefoxCameraPref = "permissions.default.camera"
	chromeCameraPref  = "profile.default_content_setting_values.media_stream_camera"
)

// Function variables so tests can run without a driver binary or a live endpoint.
var (
	newRemote        = selenium.NewRemote
	startGeckoDriver = func(path string, port int, opts ...selenium.ServiceOption) (driverService, error) {
		return selenium.NewGeckoDriverService(path, port, opts...)
	}
	startChromeDriver = func(path string, port int, opts ...selenium.ServiceOption) (driverService, error) {
		return selenium.NewChromeDriverService(path, port, opts...)
	}
)

// driverService is the part of *selenium.Service the session needs.
type driverService interface {
	Stop() error
}

// Session drives a browser over the W3C WebDriver protocol.
type Session struct {
	wd           selenium.WebDriver
	service      driverService
	serviceLog   io.WriteCloser
	logger       *zap.Logger
	pollInterval time.Duration

	closeOnce sync.Once
	closeErr  error
}

var _ browser.Session = (*Session)(nil)

// Capabilities builds the desired capabilities for the configured browser,
// including the camera permission when it is enabled.
func Capabilities(cfg *config.Config) selenium.Capabilities {
	caps := selenium.Capabilities{"browserName": cfg.Browser.Name}
	args := append([]string(nil), cfg.Browser.Args...)

	switch cfg.Browser.Name {
	case config.BrowserChrome:
		if cfg.Browser.Headless {
			args = append(args, "--headless=new")
		}
		cc := chrome.Capabilities{Path: cfg.Browser.Binary, W3C: true}
		if cfg.Browser.AllowCamera {
			cc.Prefs = map[string]interface{}{chromeCameraPref: 1}
			args = append(args, "--use-fake-ui-for-media-stream")
		}
		cc.Args = args
		caps.AddChrome(cc)
	default:
		if cfg.Browser.Headless {
			args = append(args, "-headless")
		}
		fc := firefox.Capabilities{Binary: cfg.Browser.Binary, Args: args}
		if cfg.Browser.AllowCamera {
			fc.Prefs = map[string]interface{}{firefoxCameraPref: 1}
		}
		caps.AddFirefox(fc)
	}
	return caps
}

// NewSession starts (or connects to) a WebDriver endpoint and opens a browser session.
// When cfg.WebDriver.DriverPath is set, geckodriver or chromedriver is launched
// locally and stopped again by Close.
func NewSession(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := logger.Named("webdriver").With(zap.String("browser", cfg.Browser.Name))
	selenium.SetDebug(cfg.WebDriver.Debug)

	s := &Session{
		logger:       log,
		pollInterval: cfg.Timeouts.PollInterval,
	}

	urlPrefix := cfg.WebDriver.RemoteURL
	if cfg.WebDriver.DriverPath != "" {
		prefix, err := s.startService(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: starting driver %s: %w", browser.ErrStartup, cfg.WebDriver.DriverPath, err)
		}
		urlPrefix = prefix
	}

	log.Info("Opening WebDriver session.", zap.String("endpoint", urlPrefix), zap.Bool("headless", cfg.Browser.Headless))
	wd, err := newRemote(Capabilities(cfg), urlPrefix)
	if err != nil {
		s.stopService()
		return nil, fmt.Errorf("%w: connecting to %s: %w", browser.ErrStartup, urlPrefix, err)
	}
	s.wd = wd
	log.Info("WebDriver session ready.", zap.String("session_id", wd.SessionID()))
	return s, nil
}

// startService launches the local driver binary and returns its URL prefix.
func (s *Session) startService(cfg *config.Config) (string, error) {
	s.serviceLog = observability.LineWriter(s.logger.Named("driver"), zapcore.DebugLevel)
	opts := []selenium.ServiceOption{selenium.Output(s.serviceLog)}

	var (
		svc    driverService
		err    error
		prefix string
	)
	switch cfg.Browser.Name {
	case config.BrowserChrome:
		svc, err = startChromeDriver(cfg.WebDriver.DriverPath, cfg.WebDriver.Port, opts...)
		prefix = fmt.Sprintf("http://localhost:%d/wd/hub", cfg.WebDriver.Port)
	default:
		svc, err = startGeckoDriver(cfg.WebDriver.DriverPath, cfg.WebDriver.Port, opts...)
		prefix = fmt.Sprintf("http://localhost:%d", cfg.WebDriver.Port)
	}
	if err != nil {
		s.serviceLog.Close()
		s.serviceLog = nil
		return "", err
	}
	s.service = svc
	s.logger.Info("Driver service started.", zap.String("path", cfg.WebDriver.DriverPath), zap.Int("port", cfg.WebDriver.Port))
	return prefix, nil
}

func (s *Session) stopService() error {
	var errs []error
	if s.service != nil {
		if err := s.service.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping driver service: %w", err))
		}
		s.service = nil
	}
	if s.serviceLog != nil {
		s.serviceLog.Close()
		s.serviceLog = nil
	}
	return errors.Join(errs...)
}

// Navigate loads url in the current window.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Debug("Navigating.", zap.String("url", url))
	if err := s.wd.Get(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// WaitPresent polls until an element matching loc exists.
func (s *Session) WaitPresent(ctx context.Context, loc browser.Locator, timeout time.Duration) (browser.Element, error) {
	return s.wait(ctx, loc, browser.ConditionPresent, timeout)
}

// WaitVisible polls until an element matching loc exists and is displayed.
func (s *Session) WaitVisible(ctx context.Context, loc browser.Locator, timeout time.Duration) (browser.Element, error) {
	return s.wait(ctx, loc, browser.ConditionVisible, timeout)
}

func (s *Session) wait(ctx context.Context, loc browser.Locator, cond browser.Condition, timeout time.Duration) (browser.Element, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	by, value := seleniumBy(loc)

	var (
		found   selenium.WebElement
		lastErr error
	)
	condition := func(wd selenium.WebDriver) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		we, err := wd.FindElement(by, value)
		if err != nil {
			lastErr = err
			return false, nil
		}
		if cond == browser.ConditionVisible {
			shown, err := we.IsDisplayed()
			if err != nil {
				// Usually a stale reference after a re-render; look it up again.
				lastErr = err
				return false, nil
			}
			if !shown {
				lastErr = nil
				return false, nil
			}
		}
		found = we
		return true, nil
	}

	s.logger.Debug("Waiting for element.", zap.Stringer("locator", loc), zap.String("condition", string(cond)), zap.Duration("timeout", timeout))
	if err := s.wd.WaitWithTimeoutAndInterval(condition, timeout, s.pollInterval); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if found == nil {
			return nil, &browser.TimeoutError{Locator: loc, Condition: cond, Timeout: timeout, LastErr: lastErr}
		}
		return nil, err
	}
	return &element{wd: s.wd, we: found, loc: loc}, nil
}

// Screenshot captures the current viewport as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.wd.Screenshot()
}

// Close quits the browser and stops the local driver service, if any. The quit
// is bounded by ctx; the driver service is stopped either way. It is safe to
// call more than once; only the first call does any work.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		var errs []error

		done := make(chan error, 1)
		go func() { done <- s.wd.Quit() }()

		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, fmt.Errorf("quitting session: %w", err))
			}
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("quitting session: %w", ctx.Err()))
		}
		if err := s.stopService(); err != nil {
			errs = append(errs, err)
		}
		s.closeErr = errors.Join(errs...)
		s.logger.Info("WebDriver session closed.")
	})
	return s.closeErr
}

// seleniumBy maps a locator onto the WebDriver lookup strategy.
func seleniumBy(loc browser.Locator) (string, string) {
	switch loc.Strategy {
	case browser.StrategyXPath:
		return selenium.ByXPATH, loc.Value
	case browser.StrategyCSS:
		return selenium.ByCSSSelector, loc.Value
	default:
		return selenium.ByID, loc.Value
	}
}
