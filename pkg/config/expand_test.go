package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnv(t *testing.T) {
	tt := map[string]struct {
		value     string
		env       map[string]string
		expected  string
		expectErr bool
	}{
		"no references": {
			value:    "plain-value",
			expected: "plain-value",
		},
		"required set": {
			value:    "${LM_TEST_VAR}",
			env:      map[string]string{"LM_TEST_VAR": "secret"},
			expected: "secret",
		},
		"required unset": {
			value:     "${LM_TEST_VAR}",
			expectErr: true,
		},
		"required empty": {
			value:     "${LM_TEST_VAR}",
			env:       map[string]string{"LM_TEST_VAR": ""},
			expectErr: true,
		},
		"default used": {
			value:    "${LM_TEST_VAR:-fallback}",
			expected: "fallback",
		},
		"default overridden": {
			value:    "${LM_TEST_VAR:-fallback}",
			env:      map[string]string{"LM_TEST_VAR": "set"},
			expected: "set",
		},
		"empty default": {
			value:    "a${LM_TEST_VAR:-}b",
			expected: "ab",
		},
		"nested default": {
			value:    "${LM_TEST_VAR:-${LM_TEST_OTHER}}",
			env:      map[string]string{"LM_TEST_OTHER": "other"},
			expected: "other",
		},
		"embedded": {
			value:    "https://${LM_TEST_HOST}/v1",
			env:      map[string]string{"LM_TEST_HOST": "llm.example.com"},
			expected: "https://llm.example.com/v1",
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			t.Setenv("LM_TEST_VAR", "")
			t.Setenv("LM_TEST_OTHER", "")
			t.Setenv("LM_TEST_HOST", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			got, err := ExpandEnv(tc.value)
			if tc.expectErr {
				assert.ErrorContains(t, err, "required environment variable(s) not set")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestRead_ExpandsSecrets(t *testing.T) {
	t.Setenv("LM_TEST_KEY", "sk-test")
	t.Setenv("LM_TEST_TOKEN", "")

	cfg, err := Read([]byte(`ai:
  baseUrl: ${LM_TEST_URL:-http://localhost:11434/v1}
  apiKey: ${LM_TEST_KEY}
  prompts:
    commit: keep ${literal}
`))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/v1", cfg.AI.BaseURL)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, "keep ${literal}", cfg.AI.Prompts.Commit)

	_, err = Read([]byte("cloud:\n  token: ${LM_TEST_TOKEN}\n"))
	assert.ErrorContains(t, err, "cloud.token")
}
