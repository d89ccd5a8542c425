package ai

import (
	"bytes"
	"strings"
	"text/template"
)

const (
	commitMessageSystemPrompt = `You are an advanced AI programming assistant tasked with summarizing code changes into a concise and meaningful commit message. Compose a commit message that:
- Strictly synthesizes meaningful information from the provided code diff
- Utilizes any additional user-provided context to comprehend the rationale behind the code changes
- Is clear and brief, with an informal yet professional tone, and without superfluous descriptions
- Avoids unnecessary phrases such as "this commit", "this change", and the like
- Avoids direct mention of specific code identifiers, names, or file names, unless they are crucial for understanding the purpose of the changes
- Most importantly emphasizes the 'why' of the change, its benefits, or the problem it addresses rather than only the 'what' that changed

Follow the user's instructions carefully, don't repeat yourself, don't include the code in the output, or make anything up!`

	cloudPatchMessageSystemPrompt = `You are an advanced AI programming assistant tasked with summarizing code changes into a title and description for a cloud patch. The title should be a short summary of the changes and the description should explain their purpose and impact, based only on the provided code diff and any user-provided context.

Do not make any assumptions or invent details that are not supported by the code diff or the user-provided context.`

	codeSuggestionMessageSystemPrompt = `You are an advanced AI programming assistant tasked with summarizing code changes into a title and description for a code suggestion on a pull request. The title should state what the suggestion does and the description should explain why it improves the code under review, based only on the provided code diff and any user-provided context.

Do not make any assumptions or invent details that are not supported by the code diff or the user-provided context.`

	explainChangesSystemPrompt = `You are an advanced AI programming assistant tasked with summarizing code changes into an explanation that is both easy to understand and meaningful. Construct an explanation that:
- Concisely synthesizes meaningful information from the provided code diff
- Incorporates any additional context provided by the user to understand the rationale behind the code changes
- Places the emphasis on the 'why' of the change, clarifying its benefits or addressing the problem that necessitated the change, beyond just detailing the 'what' has changed

Do not make any assumptions or invent details that are not supported by the code diff or the user-provided context.`

	explainChangesClosingPrompt = `Remember to frame your explanation in a way that is suitable for a reviewer to quickly grasp the essence of the changes, the issues they resolve, and their implications on the codebase.`
)

// DefaultPrompts are the trailing instructions used when the configuration leaves them empty.
var DefaultPrompts = Prompts{
	Commit:         "Now, please generate a commit message. Ensure that it includes a precise and informative subject line that succinctly summarizes the crux of the changes in under 50 characters. If necessary, follow with an explanatory body providing insight into the nature of the changes, the reasoning behind them, and any significant consequences or considerations arising from them. Conclude with any relevant issue references at the end of the message",
	CloudPatch:     "Now, please generate a title and optional description. Ensure that the title is a precise and informative summary of the changes in under 50 characters. If necessary, follow with a description providing insight into the nature of the changes and the reasoning behind them",
	CodeSuggestion: "Now, please generate a title and optional description. Ensure that the title is a precise and informative summary of the suggested changes in under 50 characters. If necessary, follow with a description explaining why the suggestion improves the code",
}

var (
	diffPromptTemplate = template.Must(template.New("diffPrompt").Parse(
		`Here is the code diff to use to generate the {{.ContextName}}:

{{.Diff}}`))

	contextPromptTemplate = template.Must(template.New("contextPrompt").Parse(
		`Here is additional context which should be taken into account when generating the {{.ContextName}}:

{{.Context}}`))

	explainMessagePromptTemplate = template.Must(template.New("explainMessagePrompt").Parse(
		`Here is additional context provided by the author of the changes, which should provide some explanation to why these changes where made. Please strongly consider this information when generating your explanation:

{{.Message}}`))

	explainDiffPromptTemplate = template.Must(template.New("explainDiffPrompt").Parse(
		`Now, kindly explain the following code diff in a way that would be clear to someone reviewing or trying to understand these changes:

{{.Diff}}`))
)

// Prompts holds the user-configurable trailing instruction per kind of generated message.
type Prompts struct {
	Commit         string `json:"commit,omitempty" env:"COMMIT"`
	CloudPatch     string `json:"cloudPatch,omitempty" env:"CLOUD_PATCH"`
	CodeSuggestion string `json:"codeSuggestion,omitempty" env:"CODE_SUGGESTION"`
}

type promptData struct {
	ContextName string
	Diff        string
	Context     string
	Message     string
}

// messagePrompt describes one generation request.
type messagePrompt struct {
	systemPrompt string
	customPrompt string
	contextName  string
}

func execute(t *template.Template, data promptData) (string, error) {
	var out bytes.Buffer
	if err := t.Execute(&out, data); err != nil {
		return "", err
	}

	return out.String(), nil
}

// withPeriod makes sure a custom prompt reads as a finished sentence.
func withPeriod(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if !strings.HasSuffix(prompt, ".") {
		prompt += "."
	}
	return prompt
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
