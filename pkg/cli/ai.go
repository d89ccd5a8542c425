package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lensmark/lensmark/pkg/ai"
	"github.com/lensmark/lensmark/pkg/util"
)

type aiOptions struct {
	*globalOptions

	model    string
	diffFile string
}

// NewAICmd creates the ai command group
func NewAICmd(global *globalOptions) *cobra.Command {
	opts := &aiOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Generate change descriptions with a chat model",
		Long: `Generate commit messages, cloud patch descriptions and change explanations with a
model served over an OpenAI compatible API. The endpoint is configured under 'ai' in the
config file or with LENSMARK_AI_* variables.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.model, "model", "m", "", "Model id, 'vendor:family' or 'family' (default: configured model)")

	cmd.AddCommand(opts.newModelsCmd())
	cmd.AddCommand(opts.newCommitCmd())
	cmd.AddCommand(opts.newDraftCmd())
	cmd.AddCommand(opts.newExplainCmd())

	return cmd
}

func (o *aiOptions) provider(cmd *cobra.Command) (*ai.Provider, error) {
	errOut := cmd.ErrOrStderr()
	return ai.NewProvider(o.cfg.AI,
		ai.WithLogger(util.Logger(cmd.Context())),
		ai.WithWarningHandler(func(message string) {
			fmt.Fprintln(errOut, color.YellowString("Warning: %s", message))
		}),
	)
}

func (o *aiOptions) readDiff(cmd *cobra.Command) (string, error) {
	if o.diffFile != "" && o.diffFile != "-" {
		data, err := os.ReadFile(o.diffFile)
		if err != nil {
			return "", fmt.Errorf("failed to read diff file '%s': %w", o.diffFile, err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read diff from stdin: %w", err)
	}
	return string(data), nil
}

func (o *aiOptions) addDiffFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.diffFile, "diff-file", "f", "", "File holding the diff (default: stdin)")
}

// generate resolves the provider and model, reads the diff and prints the result of fn.
func (o *aiOptions) generate(cmd *cobra.Command, fn func(p *ai.Provider, model ai.Model, diff string) (string, error)) error {
	p, err := o.provider(cmd)
	if err != nil {
		return err
	}

	diff, err := o.readDiff(cmd)
	if err != nil {
		return err
	}

	model, err := p.Model(cmd.Context(), o.model)
	if err != nil {
		return err
	}
	if util.IsVerbose(cmd.Context()) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Using %s (%d input tokens)\n", model.ID, model.MaxTokens)
	}

	result, err := fn(p, model, diff)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

func (o *aiOptions) newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models offered by the endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := o.provider(cmd)
			if err != nil {
				return err
			}

			models, err := p.Models(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, m := range models {
				marker := " "
				if m.Family == o.cfg.AI.Model || m.ID == o.cfg.AI.Model {
					marker = color.GreenString("*")
				}
				fmt.Fprintf(out, "%s %s\t%s\n", marker, m.ID, m.Name)
			}
			return nil
		},
	}
}

func (o *aiOptions) newCommitCmd() *cobra.Command {
	var extraContext string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Generate a commit message for a diff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.generate(cmd, func(p *ai.Provider, model ai.Model, diff string) (string, error) {
				return p.GenerateCommitMessage(cmd.Context(), model, diff, ai.Options{Context: extraContext})
			})
		},
	}

	o.addDiffFlag(cmd)
	cmd.Flags().StringVar(&extraContext, "context", "", "Additional context from the author")

	return cmd
}

func (o *aiOptions) newDraftCmd() *cobra.Command {
	var (
		extraContext   string
		codeSuggestion bool
	)

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Generate a cloud patch or code suggestion title and description for a diff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.generate(cmd, func(p *ai.Provider, model ai.Model, diff string) (string, error) {
				return p.GenerateDraftMessage(cmd.Context(), model, diff, ai.Options{
					Context:        extraContext,
					CodeSuggestion: codeSuggestion,
				})
			})
		},
	}

	o.addDiffFlag(cmd)
	cmd.Flags().StringVar(&extraContext, "context", "", "Additional context from the author")
	cmd.Flags().BoolVar(&codeSuggestion, "code-suggestion", false, "Describe a code suggestion instead of a cloud patch")

	return cmd
}

func (o *aiOptions) newExplainCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain the changes of a diff to a reviewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.generate(cmd, func(p *ai.Provider, model ai.Model, diff string) (string, error) {
				return p.ExplainChanges(cmd.Context(), model, message, diff)
			})
		},
	}

	o.addDiffFlag(cmd)
	cmd.Flags().StringVar(&message, "message", "", "The author's description of the changes")

	return cmd
}
