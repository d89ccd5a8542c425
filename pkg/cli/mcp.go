package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lensmark/lensmark/pkg/ai"
	"github.com/lensmark/lensmark/pkg/markdown"
	"github.com/lensmark/lensmark/pkg/mcpserver"
	"github.com/lensmark/lensmark/pkg/util"
)

// NewMCPCmd creates the mcp command
func NewMCPCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the renderer and generator as MCP tools over stdio",
		Long: `Run an MCP server on stdin/stdout exposing render_markdown and render_icons.
generate_commit_message is added when the AI endpoint is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := util.Logger(cmd.Context())
			renderer := markdown.NewRenderer(opts.cfg.Markdown.RendererConfig())

			provider, err := ai.NewProvider(opts.cfg.AI, ai.WithLogger(logger))
			switch {
			case errors.Is(err, ai.ErrNotConfigured):
				logger.Info("ai endpoint not configured, commit message tool disabled")
				provider = nil
			case err != nil:
				return err
			}

			logger.Debug("starting mcp server", zap.String("version", Version))
			return mcpserver.New(renderer, provider, logger, Version).Serve(cmd.Context())
		},
	}
}
