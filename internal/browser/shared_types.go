// internal/browser/shared_types.go
package browser

import "fmt"

// Strategy is the way a Locator's value is interpreted.
type Strategy string

const (
	StrategyID    Strategy = "id"
	StrategyCSS   Strategy = "css"
	StrategyXPath Strategy = "xpath"
)

// Locator identifies an element on the page.
type Locator struct {
	Strategy Strategy
	Value    string
}

// ByID locates the element whose id attribute equals id.
func ByID(id string) Locator { return Locator{Strategy: StrategyID, Value: id} }

// ByCSS locates the first element matching a CSS selector.
func ByCSS(selector string) Locator { return Locator{Strategy: StrategyCSS, Value: selector} }

// ByXPath locates the first element matching an XPath expression.
func ByXPath(expr string) Locator { return Locator{Strategy: StrategyXPath, Value: expr} }

// String renders the locator as "strategy=value", e.g. id=video.
func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.Strategy, l.Value)
}

// Validate rejects locators a backend cannot translate.
func (l Locator) Validate() error {
	switch l.Strategy {
	case StrategyID, StrategyCSS, StrategyXPath:
	default:
		return fmt.Errorf("unsupported locator strategy %q", l.Strategy)
	}
	if l.Value == "" {
		return fmt.Errorf("empty %s locator", l.Strategy)
	}
	return nil
}
