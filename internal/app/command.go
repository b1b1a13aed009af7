package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tejashwikalptaru/sonik/internal/logger"
)

// levelValue is a pflag.Value accepting DEBUG, INFO, WARN or ERROR.
type levelValue struct {
	level *slog.Level
}

func (v levelValue) String() string {
	if v.level == nil {
		return ""
	}
	return v.level.String()
}

func (v levelValue) Set(s string) error {
	level, ok := logger.ParseLevel(s)
	if !ok {
		return fmt.Errorf("unknown log level %q", s)
	}
	*v.level = level
	return nil
}

func (v levelValue) Type() string {
	return "level"
}

var _ pflag.Value = levelValue{}

// NewCommand returns the root command. Flags override the fields of base.
func NewCommand(base Config) *cobra.Command {
	level := base.LogLevel
	cmd := &cobra.Command{
		Use:          "sonik",
		Short:        "Terminal music player for a local music folder",
		Version:      GetVersionInfo().String(),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := base
			cfg.LogLevel = level
			var err error
			if cfg.DatabaseCreation, err = cmd.Flags().GetString("database_creation"); err != nil {
				return err
			}
			if cfg.Rebuild, err = cmd.Flags().GetBool("rebuild"); err != nil {
				return err
			}
			if cfg.Out == nil {
				cfg.Out = cmd.OutOrStdout()
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.Flags().StringP("database_creation", "d", "", "Create a new configuration with FOLDER as music folder and index it")
	cmd.Flags().BoolP("rebuild", "r", false, "Re-index the configured music folder")
	cmd.Flags().Var(levelValue{&level}, "log-level", "Log level: DEBUG, INFO, WARN or ERROR (default from SONIK_LOG_LEVEL)")
	cmd.MarkFlagsMutuallyExclusive("database_creation", "rebuild")
	return cmd
}

func run(ctx context.Context, cfg Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := NewApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = application.Shutdown()
	}()

	return application.Run(ctx)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewCommand(DefaultConfig()).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
