// internal/browser/webdriver/helpers_test.go
package webdriver

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tebeka/selenium"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errNoSuchElement = errors.New("no such element: Unable to locate element")

// fakeDriver implements the slice of selenium.WebDriver the session uses. Calling
// anything else panics on the nil embedded interface, which flags unexpected use.
type fakeDriver struct {
	selenium.WebDriver

	mu       sync.Mutex
	elements map[string]*fakeElement
	// appearAfter holds how many lookups of a key fail before it is found.
	appearAfter map[string]int
	lookups     map[string]int
	visited     []string
	getErr      error
	quitCalls   int
	quitErr     error
	quitBlock   chan struct{}
	scriptArgs  []interface{}
	scriptRet   interface{}
	screenshot  []byte
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		elements:    map[string]*fakeElement{},
		appearAfter: map[string]int{},
		lookups:     map[string]int{},
	}
}

func key(by, value string) string { return by + "=" + value }

func (f *fakeDriver) add(by, value string, el *fakeElement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.elements[key(by, value)] = el
}

func (f *fakeDriver) SessionID() string { return "fake-session" }

func (f *fakeDriver) Get(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visited = append(f.visited, url)
	return f.getErr
}

func (f *fakeDriver) FindElement(by, value string) (selenium.WebElement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(by, value)
	f.lookups[k]++
	el, ok := f.elements[k]
	if !ok || f.lookups[k] <= f.appearAfter[k] {
		return nil, fmt.Errorf("%w: %s", errNoSuchElement, k)
	}
	return el, nil
}

// WaitWithTimeoutAndInterval mirrors the library's polling loop.
func (f *fakeDriver) WaitWithTimeoutAndInterval(condition selenium.Condition, timeout, interval time.Duration) error {
	start := time.Now()
	for {
		done, err := condition(f)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if elapsed := time.Since(start); elapsed > timeout {
			return fmt.Errorf("timeout after %v", elapsed)
		}
		time.Sleep(interval)
	}
}

func (f *fakeDriver) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scriptArgs = args
	return f.scriptRet, nil
}

func (f *fakeDriver) Screenshot() ([]byte, error) { return f.screenshot, nil }

func (f *fakeDriver) Quit() error {
	f.mu.Lock()
	f.quitCalls++
	block, err := f.quitBlock, f.quitErr
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return err
}

// fakeElement implements the slice of selenium.WebElement the session uses.
type fakeElement struct {
	selenium.WebElement

	mu sync.Mutex
	// hiddenFor is how many IsDisplayed calls report false before it turns true.
	hiddenFor    int
	neverVisible bool
	displayCalls int
	clicks       int
	keys         []string
	clickErr     error
}

func (e *fakeElement) IsDisplayed() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.displayCalls++
	if e.neverVisible {
		return false, nil
	}
	return e.displayCalls > e.hiddenFor, nil
}

func (e *fakeElement) Click() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clicks++
	return e.clickErr
}

func (e *fakeElement) SendKeys(keys string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keys = append(e.keys, keys)
	return nil
}

// fakeService records Stop calls.
type fakeService struct {
	stops int
}

func (s *fakeService) Stop() error {
	s.stops++
	return nil
}

// stubRemote replaces the session constructor for the duration of the test.
func stubRemote(t *testing.T, wd selenium.WebDriver, err error) *[]string {
	t.Helper()
	var endpoints []string
	orig := newRemote
	newRemote = func(caps selenium.Capabilities, urlPrefix string) (selenium.WebDriver, error) {
		endpoints = append(endpoints, urlPrefix)
		if err != nil {
			return nil, err
		}
		return wd, nil
	}
	t.Cleanup(func() { newRemote = orig })
	return &endpoints
}
