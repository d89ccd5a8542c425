package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var (
	lt        = []byte("<")
	escapedLt = []byte("&lt;")
)

// codeRenderer replaces the default code renderers. Remote content may carry markup inside
// code, so '<' is escaped and everything else is written as is.
type codeRenderer struct{}

func newCodeRenderer() renderer.NodeRenderer {
	return &codeRenderer{}
}

func (r *codeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindCodeSpan, r.renderCodeSpan)
}

func (r *codeRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	n := node.(*ast.FencedCodeBlock)
	var info []byte
	if n.Info != nil {
		info = bytes.TrimSpace(n.Info.Segment.Value(source))
	}
	writeCodeBlock(w, source, n.Lines(), info)
	return ast.WalkSkipChildren, nil
}

func (r *codeRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	writeCodeBlock(w, source, node.Lines(), nil)
	return ast.WalkSkipChildren, nil
}

func writeCodeBlock(w util.BufWriter, source []byte, lines *text.Segments, info []byte) {
	if len(info) > 0 {
		_, _ = w.WriteString(`<pre class="language-`)
		_, _ = w.Write(util.EscapeHTML(info))
		_, _ = w.WriteString(`"><code>`)
	} else {
		_, _ = w.WriteString("<pre><code>")
	}
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(escapeLt(line.Value(source)))
	}
	_, _ = w.WriteString("</code></pre>\n")
}

func (r *codeRenderer) renderCodeSpan(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</code>")
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString("<code>")
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		var value []byte
		switch t := c.(type) {
		case *ast.Text:
			value = t.Segment.Value(source)
		case *ast.String:
			value = t.Value
		default:
			continue
		}

		if bytes.HasSuffix(value, []byte("\n")) {
			_, _ = w.Write(escapeLt(value[:len(value)-1]))
			_ = w.WriteByte(' ')
			continue
		}
		_, _ = w.Write(escapeLt(value))
	}
	return ast.WalkSkipChildren, nil
}

func escapeLt(b []byte) []byte {
	return bytes.ReplaceAll(b, lt, escapedLt)
}
