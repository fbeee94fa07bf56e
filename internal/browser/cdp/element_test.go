// internal/browser/cdp/element_test.go
package cdp

import (
	"context"
	"testing"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/camcheck/internal/browser"
)

func TestIsFileInput(t *testing.T) {
	tests := []struct {
		name string
		node *cdp.Node
		want bool
	}{
		{"File input", &cdp.Node{NodeName: "INPUT", Attributes: []string{"id", "upload", "type", "file"}}, true},
		{"Mixed case type", &cdp.Node{NodeName: "input", Attributes: []string{"type", "File"}}, true},
		{"Text input", &cdp.Node{NodeName: "INPUT", Attributes: []string{"type", "text"}}, false},
		{"Input without type", &cdp.Node{NodeName: "INPUT"}, false},
		{"Button typed file", &cdp.Node{NodeName: "BUTTON", Attributes: []string{"type", "file"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &element{node: tt.node}
			assert.Equal(t, tt.want, e.isFileInput())
		})
	}
}

func TestOnObject(t *testing.T) {
	p := onObject("obj-1")(runtime.CallFunctionOn(visibleJS))

	assert.Equal(t, runtime.RemoteObjectID("obj-1"), p.ObjectID)
	assert.True(t, p.ReturnByValue)
	assert.Equal(t, visibleJS, p.FunctionDeclaration)
	assert.Zero(t, p.ExecutionContextID, "the object id alone selects the context")
}

// Without a browser behind the session every action fails fast, and each
// operation names the element it was working on.
func TestElementOperationsWithoutBrowser(t *testing.T) {
	s := &Session{ctx: context.Background()}
	loc := browser.ByID("upload")
	e := &element{
		s:    s,
		node: &cdp.Node{NodeID: 7, BackendNodeID: 11, NodeName: "INPUT", Attributes: []string{"type", "file"}},
		loc:  loc,
	}
	ctx := context.Background()

	assert.Equal(t, loc, e.Locator())

	err := e.Click(ctx)
	require.ErrorIs(t, err, chromedp.ErrInvalidContext)
	assert.Contains(t, err.Error(), "clicking id=upload")

	err = e.SendKeys(ctx, "/tmp/photo.jpg")
	require.ErrorIs(t, err, chromedp.ErrInvalidContext)
	assert.Contains(t, err.Error(), "sending keys to id=upload")

	shown, err := e.IsDisplayed(ctx)
	require.ErrorIs(t, err, chromedp.ErrInvalidContext)
	assert.False(t, shown)
	assert.Contains(t, err.Error(), "checking visibility of id=upload")

	value, err := e.Attribute(ctx, "value")
	require.ErrorIs(t, err, chromedp.ErrInvalidContext)
	assert.Empty(t, value)
	assert.Contains(t, err.Error(), "reading value of id=upload")
}
