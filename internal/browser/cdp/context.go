// internal/browser/cdp/context.go
package cdp

import "context"

// combineContext derives from sessionCtx, which carries the CDP target, and is
// additionally cancelled when opCtx is done. Cancelling the result never closes
// the tab; only the context returned by chromedp.NewContext does that.
func combineContext(sessionCtx, opCtx context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(sessionCtx)
	stop := context.AfterFunc(opCtx, cancel)
	return combined, func() {
		stop()
		cancel()
	}
}
