// File: internal/service/factory.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/camcheck/internal/browser"
	"github.com/xkilldash9x/camcheck/internal/browser/cdp"
	"github.com/xkilldash9x/camcheck/internal/browser/webdriver"
	"github.com/xkilldash9x/camcheck/internal/config"
)

// SessionFactory opens the browser session for a run. It is the seam the run
// command is tested through.
type SessionFactory interface {
	Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (browser.Session, error)
}

type openFunc func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (browser.Session, error)

// concreteFactory is the production implementation of the SessionFactory.
type concreteFactory struct {
	backends map[string]openFunc
}

// NewSessionFactory creates a factory that picks the backend named by browser.driver.
func NewSessionFactory() SessionFactory {
	return &concreteFactory{
		backends: map[string]openFunc{
			config.DriverWebDriver: openWebDriver,
			config.DriverCDP:       openCDP,
		},
	}
}

// The wrappers keep a nil *Session from becoming a non-nil browser.Session.
func openWebDriver(ctx context.Context, cfg *config.Config, logger *zap.Logger) (browser.Session, error) {
	s, err := webdriver.NewSession(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openCDP(ctx context.Context, cfg *config.Config, logger *zap.Logger) (browser.Session, error) {
	s, err := cdp.NewSession(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Open starts the configured backend.
func (f *concreteFactory) Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (browser.Session, error) {
	open, ok := f.backends[cfg.Browser.Driver]
	if !ok {
		return nil, fmt.Errorf("%w: unknown browser driver %q", browser.ErrStartup, cfg.Browser.Driver)
	}
	logger.Debug("Opening browser session.", zap.String("driver", cfg.Browser.Driver))
	return open(ctx, cfg, logger)
}
