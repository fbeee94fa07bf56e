// internal/browser/webdriver/element.go
package webdriver

import (
	"context"
	"fmt"

	"github.com/tebeka/selenium"

	"github.com/xkilldash9x/camcheck/internal/browser"
)

// attributeJS reads the live DOM property first and falls back to the content
// attribute. The plain W3C attribute endpoint only sees markup, so the value of
// a file input set through SendKeys would read back empty.
const attributeJS = `var e = arguments[0], n = arguments[1];
var p = e[n];
if (p !== undefined && p !== null && typeof p !== 'object' && typeof p !== 'function') { return String(p); }
var a = e.getAttribute(n);
return a === null ? '' : a;`

// element adapts a selenium.WebElement to browser.Element.
type element struct {
	wd  selenium.WebDriver
	we  selenium.WebElement
	loc browser.Locator
}

func (e *element) Locator() browser.Locator { return e.loc }

func (e *element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.we.Click(); err != nil {
		return fmt.Errorf("clicking %s: %w", e.loc, err)
	}
	return nil
}

func (e *element) SendKeys(ctx context.Context, keys string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.we.SendKeys(keys); err != nil {
		return fmt.Errorf("sending keys to %s: %w", e.loc, err)
	}
	return nil
}

func (e *element) IsDisplayed(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	shown, err := e.we.IsDisplayed()
	if err != nil {
		return false, fmt.Errorf("checking visibility of %s: %w", e.loc, err)
	}
	return shown, nil
}

func (e *element) Attribute(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, err := e.wd.ExecuteScript(attributeJS, []interface{}{e.we, name})
	if err != nil {
		return "", fmt.Errorf("reading %s of %s: %w", name, e.loc, err)
	}
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	default:
		return fmt.Sprint(val), nil
	}
}
