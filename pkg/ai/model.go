package ai

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

const tokensPerCharacter = 3.1

// ProviderInfo identifies the provider serving a model.
type ProviderInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Model is a chat model offered by a provider. ID has the form "vendor:family".
type Model struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Vendor    string       `json:"vendor"`
	Family    string       `json:"family"`
	MaxTokens int          `json:"maxTokens"`
	Provider  ProviderInfo `json:"provider"`
}

// ParseModelID splits "vendor:family". A bare family has an empty vendor.
func ParseModelID(id string) (vendor, family string, err error) {
	if id == "" {
		return "", "", fmt.Errorf("model id must not be empty")
	}
	vendor, family, found := strings.Cut(id, ":")
	if !found {
		return "", id, nil
	}
	if family == "" {
		return "", "", fmt.Errorf("invalid model id '%s': missing family", id)
	}
	return vendor, family, nil
}

// MaxCharacters estimates how many characters of input fit in the model context while
// leaving room for outputLength characters of response.
func MaxCharacters(model Model, outputLength int) int {
	limit := float64(model.MaxTokens)*tokensPerCharacter - float64(outputLength)/tokensPerCharacter
	if limit < 0 {
		return 0
	}
	return int(math.Floor(limit))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func possessive(name string) string {
	if strings.HasSuffix(name, "s") {
		return name + "'"
	}
	return name + "'s"
}
