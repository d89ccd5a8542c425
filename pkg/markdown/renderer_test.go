package markdown

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestRenderer_Render(t *testing.T) {
	tt := map[string]struct {
		input    string
		expected string
	}{
		"escaped and live icons": {
			input:    `Build $(check) passed \$(not-an-icon) today`,
			expected: "<p>Build <code-icon icon=\"check\"></code-icon> passed $(not-an-icon) today</p>\n",
		},
		"icon with modifier": {
			input:    "$(sync~spin) syncing",
			expected: "<p><code-icon icon=\"sync\" modifier=\"spin\"></code-icon> syncing</p>\n",
		},
		"code span escapes lt only": {
			input:    "`a<b && c>d`",
			expected: "<p><code>a&lt;b && c>d</code></p>\n",
		},
		"fenced code with info": {
			input:    "```go\nif a < b {}\n```",
			expected: "<pre class=\"language-go\"><code>if a &lt; b {}\n</code></pre>\n",
		},
		"fenced code without info": {
			input:    "```\n<script>\n```",
			expected: "<pre><code>&lt;script>\n</code></pre>\n",
		},
		"indented code": {
			input:    "    <b>\n",
			expected: "<pre><code>&lt;b>\n</code></pre>\n",
		},
		"raw html passes": {
			input:    "<b>bold</b>",
			expected: "<p><b>bold</b></p>\n",
		},
	}

	r := NewRenderer(DefaultConfig())
	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			got, err := r.Render(context.Background(), tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(got))
		})
	}
}

func TestRenderer_OrderPreserved(t *testing.T) {
	r := NewRenderer(DefaultConfig())
	got, err := r.Render(context.Background(), `Build $(check) passed \$(not-an-icon) today`)
	require.NoError(t, err)

	out := string(got)
	parts := []string{"Build ", `<code-icon icon="check"></code-icon>`, " passed ", "$(not-an-icon)", " today"}
	last := -1
	for _, p := range parts {
		idx := strings.Index(out, p)
		require.GreaterOrEqual(t, idx, 0, "missing %q", p)
		assert.Greater(t, idx, last, "%q out of order", p)
		last = idx
	}
}

func TestRenderer_EscapedTokenSurvives(t *testing.T) {
	r := NewRenderer(DefaultConfig())
	for _, name := range []string{"check", "git-commit", "sync~spin"} {
		got, err := r.Render(context.Background(), fmt.Sprintf(`text \$(%s) text`, name))
		require.NoError(t, err)
		assert.Contains(t, string(got), fmt.Sprintf("$(%s)", name))
		assert.NotContains(t, string(got), "<code-icon")
	}
}

func TestRenderer_Config(t *testing.T) {
	t.Run("raw html omitted when disabled", func(t *testing.T) {
		r := NewRenderer(Config{GFM: true})
		got, err := r.Render(context.Background(), "<b>bold</b>")
		require.NoError(t, err)
		assert.Contains(t, string(got), "raw HTML omitted")
	})

	t.Run("gfm tables", func(t *testing.T) {
		md := "| a | b |\n|---|---|\n| 1 | 2 |\n"

		got, err := NewRenderer(DefaultConfig()).Render(context.Background(), md)
		require.NoError(t, err)
		assert.Contains(t, string(got), "<table>")

		got, err = NewRenderer(Config{}).Render(context.Background(), md)
		require.NoError(t, err)
		assert.NotContains(t, string(got), "<table>")
	})

	t.Run("config is kept", func(t *testing.T) {
		cfg := Config{GFM: true, HardWraps: true}
		assert.Equal(t, cfg, NewRenderer(cfg).Config())
	})
}

func TestRenderer_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRenderer(DefaultConfig()).Render(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderer_Concurrent(t *testing.T) {
	r := NewRenderer(DefaultConfig())
	g, ctx := errgroup.WithContext(context.Background())
	for i := range 32 {
		g.Go(func() error {
			got, err := r.Render(ctx, fmt.Sprintf("item %d $(check)", i))
			if err != nil {
				return err
			}
			want := fmt.Sprintf("<p>item %d <code-icon icon=\"check\"></code-icon></p>\n", i)
			if string(got) != want {
				return fmt.Errorf("render %d: got %q, want %q", i, got, want)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
