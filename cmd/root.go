// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/camcheck/internal/checks"
	"github.com/xkilldash9x/camcheck/internal/config"
	"github.com/xkilldash9x/camcheck/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

// fallbackLogger is used when the configuration cannot be loaded.
var fallbackLogger = config.LoggerConfig{Level: "info", Format: "console", ServiceName: "camcheck"}

// NewRootCommand builds a fresh command tree with its own viper instance, so
// repeated executions never share flag or config state.
func NewRootCommand() *cobra.Command {
	var cfgFile string
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "camcheck",
		Short:         "camcheck runs browser checks against the webcam photo comparison page.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.SetDefaults(v)
			if err := initializeConfig(v, cfgFile); err != nil {
				observability.InitializeLogger(fallbackLogger)
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(fallbackLogger)
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Starting camcheck", zap.String("version", Version), zap.String("config", v.ConfigFileUsed()))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./camcheck.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)

	rootCmd.AddCommand(newRunCmd(v), newListCmd(), newVersionCmd())
	return rootCmd
}

// Execute runs the command tree with the given context and logs any failure.
// The caller turns the returned error into an exit status.
func Execute(ctx context.Context, args []string) error {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	logger := observability.GetLogger()
	switch {
	case errors.Is(err, checks.ErrChecksFailed):
		logger.Warn("Run finished with failing checks.", zap.Error(err))
	case errors.Is(err, context.Canceled):
		logger.Warn("Run interrupted.")
	default:
		logger.Error("Command execution failed.", zap.Error(err))
	}
	return err
}

// initializeConfig reads the config file and binds CAMCHECK_* environment variables.
// A missing default config file is not an error.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("camcheck")
		v.SetConfigType("yaml")
	}

	config.BindEnvironment(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// configFromContext returns the configuration stored by the root command.
func configFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}
