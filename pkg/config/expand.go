package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// envRefPattern matches ${VAR} and ${VAR:-default}
var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

const maxExpandDepth = 10

// ExpandEnv replaces ${VAR} with the value of VAR and ${VAR:-default} with the value of VAR or
// default. A default may itself hold references. ${VAR} with VAR unset or empty is an error.
func ExpandEnv(value string) (string, error) {
	for range maxExpandDepth {
		var missing []string
		expanded := envRefPattern.ReplaceAllStringFunc(value, func(ref string) string {
			m := envRefPattern.FindStringSubmatch(ref)
			if v := os.Getenv(m[1]); v != "" {
				return v
			}
			if strings.Contains(ref, ":-") {
				return m[2]
			}
			missing = append(missing, ref)
			return ref
		})
		if len(missing) > 0 {
			return "", fmt.Errorf("required environment variable(s) not set: %s", strings.Join(missing, ", "))
		}
		if expanded == value {
			return value, nil
		}
		value = expanded
	}
	return value, nil
}

// expandSecrets expands environment references in the endpoint and credential fields, so
// config files can be committed without secrets.
func (c *Config) expandSecrets() error {
	fields := map[string]*string{
		"ai.baseUrl":    &c.AI.BaseURL,
		"ai.apiKey":     &c.AI.APIKey,
		"cloud.baseUrl": &c.Cloud.BaseURL,
		"cloud.token":   &c.Cloud.Token,
	}
	for name, field := range fields {
		expanded, err := ExpandEnv(*field)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*field = expanded
	}
	return nil
}
