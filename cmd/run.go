// File: cmd/run.go
package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/camcheck/internal/browser"
	"github.com/xkilldash9x/camcheck/internal/checks"
	"github.com/xkilldash9x/camcheck/internal/observability"
	"github.com/xkilldash9x/camcheck/internal/service"
)

// newSessionFactory is swapped out in tests to avoid launching a browser.
var newSessionFactory = service.NewSessionFactory

// runFlags maps each run flag onto the config key it overrides.
var runFlags = map[string]string{
	"url":            "target.url",
	"upload-file":    "target.upload_file",
	"driver":         "browser.driver",
	"browser":        "browser.name",
	"headless":       "browser.headless",
	"remote-url":     "webdriver.remote_url",
	"screenshot-dir": "report.screenshot_dir",
}

// newRunCmd creates the `run` command. Its flags are bound to v at construction,
// so they take precedence over the config file and environment when the root
// command loads the configuration.
func newRunCmd(v *viper.Viper) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the check suite against the target page",
		Long: `Starts one browser session, runs every check in order and closes the session.
One line per check is printed to stdout. The exit status is non-zero when any
check failed or the browser could not be started.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			logger := observability.GetLogger()

			target := checks.TargetFromConfig(cfg)
			if target.UploadFile == "" {
				logger.Warn("No upload file configured; the upload check will fail.", zap.String("hint", "set target.upload_file or CAMCHECK_TARGET_UPLOAD_FILE"))
			}

			factory := newSessionFactory()
			runner := checks.NewRunner(checks.DefaultSuite(), target, cmd.OutOrStdout(), logger,
				checks.WithScreenshotDir(cfg.Report.ScreenshotDir),
				checks.WithShutdownTimeout(cfg.Timeouts.Shutdown),
			)

			_, err = runner.Run(ctx, func(ctx context.Context) (browser.Session, error) {
				return factory.Open(ctx, cfg, logger)
			})
			return err
		},
	}

	flags := runCmd.Flags()
	flags.String("url", "", "URL of the page under test")
	flags.String("upload-file", "", "local file sent to the upload input")
	flags.String("driver", "", "session backend: webdriver or cdp")
	flags.String("browser", "", "browser for the webdriver backend: firefox or chrome")
	flags.Bool("headless", false, "run the browser without a window")
	flags.String("remote-url", "", "WebDriver endpoint when no local driver is started")
	flags.String("screenshot-dir", "", "directory for screenshots of failed checks")

	for name, key := range runFlags {
		// Lookup cannot fail: every name was registered above.
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
	return runCmd
}
