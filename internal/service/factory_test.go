package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/camcheck/internal/browser"
	"github.com/xkilldash9x/camcheck/internal/config"
)

// stubSession satisfies browser.Session for identity checks.
type stubSession struct{ browser.Session }

func TestNewSessionFactory(t *testing.T) {
	f, ok := NewSessionFactory().(*concreteFactory)
	require.True(t, ok)
	assert.Contains(t, f.backends, config.DriverWebDriver)
	assert.Contains(t, f.backends, config.DriverCDP)
}

func TestOpen(t *testing.T) {
	webdriverSession := &stubSession{}
	cdpSession := &stubSession{}
	factory := &concreteFactory{backends: map[string]openFunc{
		config.DriverWebDriver: func(context.Context, *config.Config, *zap.Logger) (browser.Session, error) {
			return webdriverSession, nil
		},
		config.DriverCDP: func(context.Context, *config.Config, *zap.Logger) (browser.Session, error) {
			return cdpSession, nil
		},
	}}
	ctx := context.Background()
	logger := zap.NewNop()

	tests := []struct {
		name    string
		driver  string
		want    browser.Session
		wantErr string
	}{
		{name: "WebDriver", driver: config.DriverWebDriver, want: webdriverSession},
		{name: "CDP", driver: config.DriverCDP, want: cdpSession},
		{name: "Unknown", driver: "playwright", wantErr: `unknown browser driver "playwright"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			cfg.Browser.Driver = tt.driver

			got, err := factory.Open(ctx, cfg, logger)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, browser.ErrStartup)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestOpenWrappersReturnNilOnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := config.NewDefaultConfig()

	s, err := openWebDriver(ctx, cfg, zap.NewNop())
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, s, "a failed open must yield a nil interface")

	s, err = openCDP(ctx, cfg, zap.NewNop())
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, s)
}
