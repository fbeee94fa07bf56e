// internal/browser/cdp/options.go
package cdp

import (
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/camcheck/internal/config"
)

// allocatorFlags translates the browser config into Chrome command-line flags,
// layered on top of chromedp's defaults. A false value removes a default flag.
func allocatorFlags(cfg config.BrowserConfig) map[string]interface{} {
	flags := map[string]interface{}{
		// Needed on hardened hosts and in containers.
		"no-sandbox":                   true,
		"disable-dev-shm-usage":        true,
		"headless":                     cfg.Headless,
		"hide-scrollbars":              cfg.Headless,
		"mute-audio":                   cfg.Headless,
		"use-fake-ui-for-media-stream": cfg.AllowCamera,
	}

	// Additional flags from the config file's 'args' slice, with or without dashes.
	for _, arg := range cfg.Args {
		arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
		if arg == "" {
			continue
		}
		if key, value, ok := strings.Cut(arg, "="); ok {
			flags[key] = value
			continue
		}
		flags[arg] = true
	}
	return flags
}

// AllocatorOptions builds the chromedp exec allocator options for cfg.
func AllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption(nil), chromedp.DefaultExecAllocatorOptions[:]...)
	for name, value := range allocatorFlags(cfg) {
		opts = append(opts, chromedp.Flag(name, value))
	}
	if cfg.Binary != "" {
		opts = append(opts, chromedp.ExecPath(cfg.Binary))
	}
	return opts
}
