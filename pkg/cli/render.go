package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lensmark/lensmark/pkg/markdown"
	"github.com/lensmark/lensmark/pkg/util"
)

// NewRenderCmd creates the render command
func NewRenderCmd(opts *globalOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "render [files...]",
		Short: "Render markdown to HTML",
		Long: `Render markdown files to HTML, expanding $(icon) references into icon elements.

Without files the markdown is read from stdin and written to stdout. With files, each one
is rendered concurrently; the HTML is written next to the source (or into --out-dir) with
an .html extension.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer := markdown.NewRenderer(opts.cfg.Markdown.RendererConfig())

			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				html, err := renderer.Render(cmd.Context(), string(data))
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), html)
				return err
			}

			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			logger := util.Logger(cmd.Context())
			g, ctx := errgroup.WithContext(cmd.Context())
			outputs := make([]string, len(args))
			for i, path := range args {
				g.Go(func() error {
					data, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("failed to read '%s': %w", path, err)
					}
					html, err := renderer.Render(ctx, string(data))
					if err != nil {
						return fmt.Errorf("failed to render '%s': %w", path, err)
					}

					out := htmlPath(path, outDir)
					if err := os.WriteFile(out, []byte(html), 0o644); err != nil {
						return fmt.Errorf("failed to write '%s': %w", out, err)
					}
					logger.Debug("rendered markdown", zap.String("source", path), zap.String("output", out))
					outputs[i] = out
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for _, out := range outputs {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Directory for rendered files (default: next to the source)")

	return cmd
}

func htmlPath(path, outDir string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".html"
	if outDir == "" {
		return filepath.Join(filepath.Dir(path), name)
	}
	return filepath.Join(outDir, name)
}
