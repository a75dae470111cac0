package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	get_completions "github.com/walteh/auhtml/cmd/auhtml/get-completions"
	get_hover "github.com/walteh/auhtml/cmd/auhtml/get-hover"
	get_tokens "github.com/walteh/auhtml/cmd/auhtml/get-tokens"
	get_tree "github.com/walteh/auhtml/cmd/auhtml/get-tree"
	pkg_debug "github.com/walteh/auhtml/pkg/debug"
	"github.com/walteh/auhtml/pkg/workspace"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

type rootFlags struct {
	config   string
	logLevel string
}

func newRootCommand(fs afero.Fs) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "auhtml",
		Short:         "Completion and inspection of HTML and Aurelia templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	rootCmd.PersistentFlags().StringVar(&flags.config, "config", "", "config file (default: .auhtml.yaml, .auhtml.yml or .auhtml.hcl in the working directory or a parent)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (overrides log_level of the config)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		ctx, err := setup(cmd.Context(), cmd, fs, flags)
		if err != nil {
			return err
		}
		cmd.SetContext(ctx)
		return nil
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)

	rootCmd.AddCommand(get_completions.NewGetCompletionsCommand())
	rootCmd.AddCommand(get_hover.NewGetHoverCommand())
	rootCmd.AddCommand(get_tokens.NewGetTokensCommand())
	rootCmd.AddCommand(get_tree.NewGetTreeCommand())

	return rootCmd
}

// setup installs the logger and the workspace in ctx.
func setup(ctx context.Context, cmd *cobra.Command, fs afero.Fs, flags *rootFlags) (context.Context, error) {
	level := zerolog.InfoLevel
	if flags.logLevel != "" {
		parsed, err := zerolog.ParseLevel(flags.logLevel)
		if err != nil {
			return nil, errors.Errorf("invalid --log-level: %w", err)
		}
		level = parsed
	}

	logger := pkg_debug.NewLogger(cmd.ErrOrStderr(), level, !color.NoColor).
		With().Str("session", xid.New().String()).Logger()
	ctx = logger.WithContext(ctx)

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Errorf("getting working directory: %w", err)
	}

	ws, err := workspace.Open(ctx, fs, flags.config, wd)
	if err != nil {
		return nil, err
	}

	if flags.logLevel == "" {
		logger = logger.Level(ws.Config.Level())
		ctx = logger.WithContext(ctx)
	}

	zerolog.Ctx(ctx).Debug().Str("config", ws.ConfigPath).Str("version", cmd.Root().Version).Msg("workspace ready")

	return ws.WithContext(ctx), nil
}

func run() error {
	rootCmd := newRootCommand(afero.NewOsFs())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
