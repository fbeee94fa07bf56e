// internal/browser/cdp/element.go
package cdp

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/camcheck/internal/browser"
)

const (
	// Same rules as the WebDriver "element displayed" algorithm, minus opacity.
	visibleJS = `function() {
	if (!this.isConnected) { return false; }
	const style = window.getComputedStyle(this);
	if (style.display === 'none' || style.visibility === 'hidden') { return false; }
	const rect = this.getBoundingClientRect();
	return rect.width > 0 && rect.height > 0;
}`

	// Live DOM property first, then the content attribute.
	attributeJS = `function(name) {
	const p = this[name];
	if (p !== undefined && p !== null && typeof p !== 'object' && typeof p !== 'function') { return String(p); }
	const a = this.getAttribute(name);
	return a === null ? '' : a;
}`
)

// element is a node resolved by one of the Session waits.
type element struct {
	s    *Session
	node *cdp.Node
	loc  browser.Locator
}

func (e *element) Locator() browser.Locator { return e.loc }

func (e *element) Click(ctx context.Context) error {
	if err := e.s.run(ctx, chromedp.MouseClickNode(e.node)); err != nil {
		return fmt.Errorf("clicking %s: %w", e.loc, err)
	}
	return nil
}

// SendKeys types keys into the element. File inputs get keys as the path of the
// file to attach, the way WebDriver treats them.
func (e *element) SendKeys(ctx context.Context, keys string) error {
	ids := []cdp.NodeID{e.node.NodeID}
	var action chromedp.Action
	if e.isFileInput() {
		action = chromedp.SetUploadFiles(ids, []string{keys}, chromedp.ByNodeID)
	} else {
		action = chromedp.SendKeys(ids, keys, chromedp.ByNodeID)
	}
	if err := e.s.run(ctx, action); err != nil {
		return fmt.Errorf("sending keys to %s: %w", e.loc, err)
	}
	return nil
}

func (e *element) isFileInput() bool {
	return strings.EqualFold(e.node.NodeName, "input") && strings.EqualFold(e.node.AttributeValue("type"), "file")
}

func (e *element) IsDisplayed(ctx context.Context) (bool, error) {
	var shown bool
	err := e.s.run(ctx, e.callFunction(visibleJS, &shown))
	if err != nil {
		return false, fmt.Errorf("checking visibility of %s: %w", e.loc, err)
	}
	return shown, nil
}

func (e *element) Attribute(ctx context.Context, name string) (string, error) {
	var value string
	err := e.s.run(ctx, e.callFunction(attributeJS, &value, name))
	if err != nil {
		return "", fmt.Errorf("reading %s of %s: %w", name, e.loc, err)
	}
	return value, nil
}

// callFunction runs fn with the element bound to this.
func (e *element) callFunction(fn string, res any, args ...any) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithBackendNodeID(e.node.BackendNodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("resolving node: %w", err)
		}
		defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

		return chromedp.CallFunctionOn(fn, res, onObject(obj.ObjectID), args...).Do(ctx)
	})
}

func onObject(id runtime.RemoteObjectID) chromedp.CallOption {
	return func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
		return p.WithObjectID(id).WithReturnByValue(true)
	}
}
