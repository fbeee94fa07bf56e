// internal/checks/mocks_test.go
package checks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/camcheck/internal/browser"
)

// MockSession is a mock implementation of browser.Session.
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Navigate(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockSession) WaitPresent(ctx context.Context, loc browser.Locator, timeout time.Duration) (browser.Element, error) {
	args := m.Called(ctx, loc, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(browser.Element), args.Error(1)
}

func (m *MockSession) WaitVisible(ctx context.Context, loc browser.Locator, timeout time.Duration) (browser.Element, error) {
	args := m.Called(ctx, loc, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(browser.Element), args.Error(1)
}

func (m *MockSession) Screenshot(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSession) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockElement is a mock implementation of browser.Element.
type MockElement struct {
	mock.Mock
	loc browser.Locator
}

func newMockElement(loc browser.Locator) *MockElement {
	return &MockElement{loc: loc}
}

func (m *MockElement) Locator() browser.Locator { return m.loc }

func (m *MockElement) Click(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockElement) SendKeys(ctx context.Context, keys string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockElement) IsDisplayed(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockElement) Attribute(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

// shownElement is an element whose visibility check succeeds.
func shownElement(loc browser.Locator) *MockElement {
	el := newMockElement(loc)
	el.On("IsDisplayed", mock.Anything).Return(true, nil)
	return el
}

// openerFor returns a SessionOpener that hands out s.
func openerFor(s browser.Session) SessionOpener {
	return func(context.Context) (browser.Session, error) { return s, nil }
}

// liveContext matches contexts that are not cancelled.
var liveContext = mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })
