package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lensmark/lensmark/pkg/config"
	"github.com/lensmark/lensmark/pkg/logging"
	"github.com/lensmark/lensmark/pkg/util"
)

// Version is set at build time
var Version = "dev"

const defaultConfigFile = "lensmark.yaml"

// globalOptions are shared by every subcommand and filled in before any of them runs
type globalOptions struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd creates the root lensmark command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "lensmark",
		Short: "Hover markdown rendering and AI generated change descriptions",
		Long: `lensmark renders hover markdown with $(icon) references to HTML, generates commit
messages and change explanations with a chat model, and reads cloud integration tokens.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", fmt.Sprintf("Config file (default ./%s if present)", defaultConfigFile))
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(NewRenderCmd(opts))
	rootCmd.AddCommand(NewIconsCmd())
	rootCmd.AddCommand(NewAICmd(opts))
	rootCmd.AddCommand(NewIntegrationsCmd(opts))
	rootCmd.AddCommand(NewConfigCmd(opts))
	rootCmd.AddCommand(NewMCPCmd(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *globalOptions) init(cmd *cobra.Command) error {
	path, optional := o.configPath, false
	if path == "" {
		path, optional = defaultConfigFile, true
	}

	cfg, err := config.Load(path, optional)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, o.verbose)
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = logger

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = util.WithVerbose(ctx, o.verbose)
	ctx = util.WithLogger(ctx, logger)
	cmd.SetContext(ctx)

	return nil
}
