package ai

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lensmark/lensmark/pkg/ai/aitest"
)

func newTestProvider(t *testing.T, cfg Config, opts ...Option) (*Provider, *aitest.Server) {
	t.Helper()

	server := aitest.NewServer()
	t.Cleanup(server.Close)

	cfg.BaseURL = server.BaseURL()
	cfg.APIKey = "test-key"

	p, err := NewProvider(cfg, opts...)
	require.NoError(t, err)
	return p, server
}

func testModel() Model {
	return Model{
		ID:        "openai:gpt-4o",
		Name:      "Openai gpt-4o",
		Vendor:    "openai",
		Family:    "gpt-4o",
		MaxTokens: DefaultMaxInputTokens,
		Provider:  ProviderInfo{ID: ProviderID, Name: "Openai"},
	}
}

func TestNewProvider(t *testing.T) {
	tt := map[string]struct {
		cfg       Config
		expectErr bool
	}{
		"configured":      {cfg: Config{BaseURL: "http://localhost/v1", APIKey: "k"}},
		"missing key":     {cfg: Config{BaseURL: "http://localhost/v1"}, expectErr: true},
		"missing baseURL": {cfg: Config{APIKey: "k"}, expectErr: true},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			p, err := NewProvider(tc.cfg)
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrNotConfigured)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ProviderID, p.ID())
			assert.Equal(t, "OpenAI Compatible", p.Name())
		})
	}
}

func TestProvider_Models(t *testing.T) {
	p, server := newTestProvider(t, Config{MaxInputTokens: 1000})
	server.SetModels(
		aitest.ModelInfo{ID: "gpt-4o", OwnedBy: "openai"},
		aitest.ModelInfo{ID: "llama3", OwnedBy: ""},
	)

	models, err := p.Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)

	assert.Equal(t, Model{
		ID:        "openai:gpt-4o",
		Name:      "Openai gpt-4o",
		Vendor:    "openai",
		Family:    "gpt-4o",
		MaxTokens: 1000,
		Provider:  ProviderInfo{ID: ProviderID, Name: "Openai"},
	}, models[0])
	assert.Equal(t, "openai:llama3", models[1].ID)
	assert.Equal(t, "Bearer test-key", server.LastHeader().Get("Authorization"))
}

func TestProvider_Model(t *testing.T) {
	p, server := newTestProvider(t, Config{Model: "gpt-4o"})
	server.SetModels(
		aitest.ModelInfo{ID: "gpt-4o", OwnedBy: "openai"},
		aitest.ModelInfo{ID: "o3", OwnedBy: "system"},
	)

	tt := map[string]struct {
		id        string
		expected  string
		expectErr error
	}{
		"default model":  {id: "", expected: "openai:gpt-4o"},
		"vendor:family":  {id: "system:o3", expected: "system:o3"},
		"bare family":    {id: "o3", expected: "system:o3"},
		"wrong vendor":   {id: "openai:o3", expectErr: ErrModelNotFound},
		"unknown family": {id: "nope", expectErr: ErrModelNotFound},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			m, err := p.Model(context.Background(), tc.id)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, m.ID)
		})
	}

	t.Run("no default", func(t *testing.T) {
		p, _ := newTestProvider(t, Config{})
		_, err := p.Model(context.Background(), "")
		assert.ErrorIs(t, err, ErrNoModel)
	})
}

func TestProvider_GenerateCommitMessage(t *testing.T) {
	p, server := newTestProvider(t, Config{})
	server.Reply(aitest.Reply{Content: "  Fix parser escape handling\n"})

	msg, err := p.GenerateCommitMessage(context.Background(), testModel(), "diff --git a/x b/x", Options{Context: "fixes #12"})
	require.NoError(t, err)
	assert.Equal(t, "Fix parser escape handling", msg)

	req := server.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, "gpt-4o", req.Model)
	require.Len(t, req.Messages, 4)
	for _, m := range req.Messages {
		assert.Equal(t, "user", m.Role)
	}
	assert.Equal(t, commitMessageSystemPrompt, req.Messages[0].Content)
	assert.Equal(t, "Here is the code diff to use to generate the commit message:\n\ndiff --git a/x b/x", req.Messages[1].Content)
	assert.Contains(t, req.Messages[2].Content, "fixes #12")
	assert.Equal(t, withPeriod(DefaultPrompts.Commit), req.Messages[3].Content)
}

func TestProvider_GenerateCommitMessage_CustomPrompt(t *testing.T) {
	p, server := newTestProvider(t, Config{Prompts: Prompts{Commit: "Use conventional commits"}})
	server.Reply(aitest.Reply{Content: "feat: add thing"})

	_, err := p.GenerateCommitMessage(context.Background(), testModel(), "diff", Options{})
	require.NoError(t, err)

	req := server.LastRequest()
	require.NotNil(t, req)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "Use conventional commits.", req.Messages[2].Content)
}

func TestProvider_GenerateDraftMessage(t *testing.T) {
	tt := map[string]struct {
		opts        Options
		systemText  string
		contextName string
	}{
		"cloud patch": {
			opts:        Options{},
			systemText:  cloudPatchMessageSystemPrompt,
			contextName: "cloud patch title and description",
		},
		"code suggestion": {
			opts:        Options{CodeSuggestion: true},
			systemText:  codeSuggestionMessageSystemPrompt,
			contextName: "code suggestion title and description",
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			p, server := newTestProvider(t, Config{})
			server.Reply(aitest.Reply{Content: "Title\n\nBody"})

			msg, err := p.GenerateDraftMessage(context.Background(), testModel(), "diff", tc.opts)
			require.NoError(t, err)
			assert.Equal(t, "Title\n\nBody", msg)

			req := server.LastRequest()
			require.NotNil(t, req)
			assert.Equal(t, tc.systemText, req.Messages[0].Content)
			assert.True(t, req.MessagesContain("generate the "+tc.contextName))
		})
	}
}

func TestProvider_ExplainChanges(t *testing.T) {
	p, server := newTestProvider(t, Config{})
	server.Reply(aitest.Reply{Content: "It fixes a bug."})

	summary, err := p.ExplainChanges(context.Background(), testModel(), "Fix escapes", "diff")
	require.NoError(t, err)
	assert.Equal(t, "It fixes a bug.", summary)

	req := server.LastRequest()
	require.NotNil(t, req)
	require.Len(t, req.Messages, 4)
	assert.Equal(t, explainChangesSystemPrompt, req.Messages[0].Content)
	assert.Contains(t, req.Messages[1].Content, "Fix escapes")
	assert.Contains(t, req.Messages[2].Content, "diff")
	assert.Equal(t, explainChangesClosingPrompt, req.Messages[3].Content)
}

func TestProvider_TruncatesDiff(t *testing.T) {
	var warnings []string
	p, server := newTestProvider(t, Config{}, WithWarningHandler(func(message string) {
		warnings = append(warnings, message)
	}))
	server.Reply(aitest.Reply{Content: "ok"})

	model := testModel()
	model.MaxTokens = 1000
	maxChars := MaxCharacters(model, commitOutputLength)
	diff := strings.Repeat("x", maxChars+50)

	_, err := p.GenerateCommitMessage(context.Background(), model, diff, Options{})
	require.NoError(t, err)

	req := server.LastRequest()
	require.NotNil(t, req)
	assert.NotContains(t, req.Messages[1].Content, strings.Repeat("x", maxChars+1))
	assert.Contains(t, req.Messages[1].Content, strings.Repeat("x", maxChars))

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "truncated to 2261 characters")
	assert.Contains(t, warnings[0], "Openai's limits")
}

func TestProvider_Errors(t *testing.T) {
	t.Run("empty diff", func(t *testing.T) {
		p, server := newTestProvider(t, Config{})
		_, err := p.GenerateCommitMessage(context.Background(), testModel(), "  ", Options{})
		assert.ErrorIs(t, err, ErrNoChanges)
		_, err = p.ExplainChanges(context.Background(), testModel(), "msg", "")
		assert.ErrorIs(t, err, ErrNoChanges)
		assert.Empty(t, server.Requests())
	})

	t.Run("api error is returned without retry", func(t *testing.T) {
		p, server := newTestProvider(t, Config{})
		server.SetFallback(aitest.Reply{StatusCode: http.StatusTooManyRequests, Error: "rate limited"})

		_, err := p.GenerateCommitMessage(context.Background(), testModel(), "diff", Options{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unable to generate commit message")
		assert.Len(t, server.Requests(), 1)
	})
}
