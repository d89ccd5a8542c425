// Package ai generates commit messages, patch descriptions and change explanations with a
// chat language model served over an OpenAI compatible API.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"go.uber.org/zap"
)

const (
	ProviderID   = "openai"
	providerName = "OpenAI Compatible"

	commitOutputLength  = 2600
	explainOutputLength = 3000
)

var (
	ErrNotConfigured = errors.New("ai provider requires a base url and an api key")
	ErrNoModel       = errors.New("no model selected")
	ErrModelNotFound = errors.New("model not found")
	ErrNoChanges     = errors.New("no changes to describe")
	ErrEmptyResponse = errors.New("no completion choices returned")
)

// Options tune a generation request.
type Options struct {
	// Context is extra information from the author to take into account
	Context string

	// CodeSuggestion switches draft messages from cloud patches to code suggestions
	CodeSuggestion bool
}

type Provider struct {
	client     openai.Client
	cfg        Config
	logger     *zap.Logger
	warn       func(string)
	httpClient *http.Client
}

type Option func(*Provider)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// WithWarningHandler receives user facing warnings, such as a truncated diff.
// Warnings are logged when no handler is set.
func WithWarningHandler(fn func(message string)) Option {
	return func(p *Provider) {
		p.warn = fn
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// NewProvider creates a provider for the endpoint in cfg. Requests are not retried.
func NewProvider(cfg Config, opts ...Option) (*Provider, error) {
	if !cfg.IsConfigured() {
		return nil, ErrNotConfigured
	}

	p := &Provider{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.warn == nil {
		p.warn = func(message string) {
			p.logger.Warn(message)
		}
	}

	reqOpts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if p.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(p.httpClient))
	}
	p.client = openai.NewClient(reqOpts...)

	return p, nil
}

func (p *Provider) ID() string {
	return ProviderID
}

func (p *Provider) Name() string {
	return providerName
}

// Models lists the chat models offered by the endpoint.
func (p *Provider) Models(ctx context.Context) ([]Model, error) {
	page, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	models := make([]Model, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, p.modelFor(m.OwnedBy, m.ID))
	}
	return models, nil
}

// Model resolves id, or the configured default model when id is empty.
func (p *Provider) Model(ctx context.Context, id string) (Model, error) {
	if id == "" {
		id = p.cfg.Model
	}
	if id == "" {
		return Model{}, ErrNoModel
	}

	vendor, family, err := ParseModelID(id)
	if err != nil {
		return Model{}, err
	}

	models, err := p.Models(ctx)
	if err != nil {
		return Model{}, err
	}
	for _, m := range models {
		if m.Family == family && (vendor == "" || m.Vendor == vendor) {
			return m, nil
		}
	}

	return Model{}, fmt.Errorf("%w: '%s'", ErrModelNotFound, id)
}

func (p *Provider) modelFor(vendor, family string) Model {
	if vendor == "" {
		vendor = ProviderID
	}
	return Model{
		ID:        vendor + ":" + family,
		Name:      capitalize(vendor) + " " + family,
		Vendor:    vendor,
		Family:    family,
		MaxTokens: p.cfg.maxInputTokens(),
		Provider:  ProviderInfo{ID: ProviderID, Name: capitalize(vendor)},
	}
}

// GenerateCommitMessage writes a commit message for diff.
func (p *Provider) GenerateCommitMessage(ctx context.Context, model Model, diff string, opts Options) (string, error) {
	return p.generateMessage(ctx, model, diff, messagePrompt{
		systemPrompt: commitMessageSystemPrompt,
		customPrompt: withPeriod(orDefault(p.cfg.Prompts.Commit, DefaultPrompts.Commit)),
		contextName:  "commit message",
	}, opts.Context)
}

// GenerateDraftMessage writes a title and description for a cloud patch, or for a code
// suggestion when opts.CodeSuggestion is set.
func (p *Provider) GenerateDraftMessage(ctx context.Context, model Model, diff string, opts Options) (string, error) {
	prompt := messagePrompt{
		systemPrompt: cloudPatchMessageSystemPrompt,
		customPrompt: withPeriod(orDefault(p.cfg.Prompts.CloudPatch, DefaultPrompts.CloudPatch)),
		contextName:  "cloud patch title and description",
	}
	if opts.CodeSuggestion {
		prompt = messagePrompt{
			systemPrompt: codeSuggestionMessageSystemPrompt,
			customPrompt: withPeriod(orDefault(p.cfg.Prompts.CodeSuggestion, DefaultPrompts.CodeSuggestion)),
			contextName:  "code suggestion title and description",
		}
	}

	return p.generateMessage(ctx, model, diff, prompt, opts.Context)
}

// ExplainChanges explains diff to a reviewer, guided by the author's message.
func (p *Provider) ExplainChanges(ctx context.Context, model Model, message, diff string) (string, error) {
	if strings.TrimSpace(diff) == "" {
		return "", ErrNoChanges
	}

	maxChars := MaxCharacters(model, explainOutputLength)
	data := promptData{Message: message, Diff: truncate(diff, maxChars)}

	authorPrompt, err := execute(explainMessagePromptTemplate, data)
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}
	diffPrompt, err := execute(explainDiffPromptTemplate, data)
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}

	summary, err := p.complete(ctx, model, []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(explainChangesSystemPrompt),
		openai.UserMessage(authorPrompt),
		openai.UserMessage(diffPrompt),
		openai.UserMessage(explainChangesClosingPrompt),
	})
	if err != nil {
		return "", fmt.Errorf("unable to explain changes: %w", err)
	}

	p.warnIfTruncated(model, diff, maxChars)
	return summary, nil
}

func (p *Provider) generateMessage(ctx context.Context, model Model, diff string, prompt messagePrompt, extraContext string) (string, error) {
	if strings.TrimSpace(diff) == "" {
		return "", ErrNoChanges
	}

	maxChars := MaxCharacters(model, commitOutputLength)
	data := promptData{
		ContextName: prompt.contextName,
		Diff:        truncate(diff, maxChars),
		Context:     extraContext,
	}

	diffPrompt, err := execute(diffPromptTemplate, data)
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt.systemPrompt),
		openai.UserMessage(diffPrompt),
	}
	if extraContext != "" {
		contextPrompt, err := execute(contextPromptTemplate, data)
		if err != nil {
			return "", fmt.Errorf("failed to build prompt: %w", err)
		}
		messages = append(messages, openai.UserMessage(contextPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt.customPrompt))

	message, err := p.complete(ctx, model, messages)
	if err != nil {
		return "", fmt.Errorf("unable to generate %s: %w", prompt.contextName, err)
	}

	p.warnIfTruncated(model, diff, maxChars)
	return message, nil
}

func (p *Provider) complete(ctx context.Context, model Model, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	p.logger.Debug("sending chat request",
		zap.String("model", model.ID),
		zap.Int("messages", len(messages)))

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model.Family),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func (p *Provider) warnIfTruncated(model Model, diff string, maxChars int) {
	if len(diff) <= maxChars {
		return
	}
	p.warn(fmt.Sprintf("The diff of the changes had to be truncated to %d characters to fit within %s limits.",
		maxChars, possessive(model.Provider.Name)))
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
