// Package markdown renders hover markdown to HTML, expanding theme icon references.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/lensmark/lensmark/pkg/codicon"
)

// Config is the parser configuration of a Renderer. It is copied into the Renderer and
// never changes afterwards.
type Config struct {
	// GFM enables GitHub flavored markdown (tables, strikethrough, task lists, autolinks)
	GFM bool `json:"gfm"`

	// AllowRawHTML passes raw HTML in the markdown through to the output
	AllowRawHTML bool `json:"allowRawHtml"`

	// HardWraps renders newlines inside paragraphs as <br>
	HardWraps bool `json:"hardWraps"`
}

// DefaultConfig matches the hover widget setup.
func DefaultConfig() Config {
	return Config{
		GFM:          true,
		AllowRawHTML: true,
	}
}

// Renderer converts markdown to HTML. It holds no mutable state and is safe for concurrent use.
type Renderer struct {
	cfg Config
	md  goldmark.Markdown
}

// NewRenderer builds a Renderer for cfg.
func NewRenderer(cfg Config) *Renderer {
	var exts []goldmark.Extender
	if cfg.GFM {
		exts = append(exts, extension.GFM)
	}

	rendererOpts := []renderer.Option{
		renderer.WithNodeRenderers(util.Prioritized(newCodeRenderer(), 100)),
	}
	if cfg.AllowRawHTML {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}
	if cfg.HardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}

	return &Renderer{
		cfg: cfg,
		md: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithRendererOptions(rendererOpts...),
		),
	}
}

// Config returns the configuration the renderer was built with.
func (r *Renderer) Config() Config {
	return r.cfg
}

// Render escapes backslash-escaped icon tokens, converts the markdown to HTML and replaces the
// remaining icon tokens with icon elements. The result is trusted HTML.
func (r *Renderer) Render(ctx context.Context, raw string) (template.HTML, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	source := codicon.PreEscape(raw)

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}

	return template.HTML(codicon.RenderIconsInText(buf.String())), nil
}
