// Package mcpserver exposes markdown rendering and message generation as MCP tools.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/lensmark/lensmark/pkg/ai"
	"github.com/lensmark/lensmark/pkg/codicon"
	"github.com/lensmark/lensmark/pkg/markdown"
)

const (
	ServerName = "lensmark"

	ToolRenderMarkdown        = "render_markdown"
	ToolRenderIcons           = "render_icons"
	ToolGenerateCommitMessage = "generate_commit_message"
)

type RenderMarkdownInput struct {
	Markdown string `json:"markdown" jsonschema:"markdown text, may contain $(icon) references"`
}

type RenderMarkdownOutput struct {
	HTML string `json:"html"`
}

type RenderIconsInput struct {
	Text string `json:"text" jsonschema:"text or HTML containing $(icon) references"`
}

type RenderIconsOutput struct {
	Text string `json:"text"`
}

type GenerateCommitMessageInput struct {
	Model   string `json:"model,omitempty" jsonschema:"model id as vendor:family, defaults to the configured model"`
	Diff    string `json:"diff" jsonschema:"the code diff to describe"`
	Context string `json:"context,omitempty" jsonschema:"additional context from the author"`
}

type GenerateCommitMessageOutput struct {
	Message string `json:"message"`
}

type Server struct {
	renderer *markdown.Renderer
	provider *ai.Provider
	logger   *zap.Logger
	server   *mcp.Server
}

// New registers the tools. provider may be nil, in which case generation tools are not offered.
func New(renderer *markdown.Renderer, provider *ai.Provider, logger *zap.Logger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		renderer: renderer,
		provider: provider,
		logger:   logger,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    ServerName,
			Version: version,
		}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolRenderMarkdown,
		Description: "Render markdown to HTML, turning $(icon) references into inline icon elements",
	}, s.renderMarkdown)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolRenderIcons,
		Description: "Replace $(icon) references in text with inline icon elements",
	}, s.renderIcons)

	if provider != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        ToolGenerateCommitMessage,
			Description: "Generate a commit message for a code diff",
		}, s.generateCommitMessage)
	}

	return s
}

// MCPServer returns the underlying server, e.g. to connect a custom transport.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}

// Serve runs the server on stdio until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) renderMarkdown(ctx context.Context, _ *mcp.CallToolRequest, in RenderMarkdownInput) (*mcp.CallToolResult, RenderMarkdownOutput, error) {
	s.logger.Debug("tool call", zap.String("tool", ToolRenderMarkdown), zap.Int("bytes", len(in.Markdown)))

	if in.Markdown == "" {
		return nil, RenderMarkdownOutput{}, nil
	}

	html, err := s.renderer.Render(ctx, in.Markdown)
	if err != nil {
		return nil, RenderMarkdownOutput{}, fmt.Errorf("failed to render markdown: %w", err)
	}
	return nil, RenderMarkdownOutput{HTML: string(html)}, nil
}

func (s *Server) renderIcons(_ context.Context, _ *mcp.CallToolRequest, in RenderIconsInput) (*mcp.CallToolResult, RenderIconsOutput, error) {
	s.logger.Debug("tool call", zap.String("tool", ToolRenderIcons), zap.Int("bytes", len(in.Text)))
	return nil, RenderIconsOutput{Text: codicon.RenderIconsInText(in.Text)}, nil
}

func (s *Server) generateCommitMessage(ctx context.Context, _ *mcp.CallToolRequest, in GenerateCommitMessageInput) (*mcp.CallToolResult, GenerateCommitMessageOutput, error) {
	s.logger.Debug("tool call", zap.String("tool", ToolGenerateCommitMessage), zap.String("model", in.Model))

	model, err := s.provider.Model(ctx, in.Model)
	if err != nil {
		return nil, GenerateCommitMessageOutput{}, fmt.Errorf("failed to resolve model: %w", err)
	}

	message, err := s.provider.GenerateCommitMessage(ctx, model, in.Diff, ai.Options{Context: in.Context})
	if err != nil {
		return nil, GenerateCommitMessageOutput{}, err
	}
	return nil, GenerateCommitMessageOutput{Message: message}, nil
}
