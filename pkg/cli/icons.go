package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lensmark/lensmark/pkg/codicon"
)

// NewIconsCmd creates the icons command
func NewIconsCmd() *cobra.Command {
	var (
		preEscape bool
		list      bool
	)

	cmd := &cobra.Command{
		Use:   "icons [text]",
		Short: "Expand $(icon) references in text",
		Long: `Replace $(icon) and $(icon~modifier) references with icon elements. \$(icon) is left
as literal text. The text is taken from the argument or stdin.

Use --pre-escape to only apply the escaping step that runs before markdown parsing, and
--list to print the references found instead of the expanded text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := textArg(cmd, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case list:
				for seg := range codicon.Segments(text) {
					switch {
					case seg.Escaped:
						fmt.Fprintf(out, "%s %s\n", seg.Text, color.New(color.Faint).Sprint("(escaped)"))
					case seg.Icon != nil:
						fmt.Fprintln(out, color.CyanString(seg.Icon.String()))
					}
				}
			case preEscape:
				fmt.Fprint(out, codicon.PreEscape(text))
			default:
				fmt.Fprint(out, codicon.RenderIconsInText(text))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&preEscape, "pre-escape", false, "Only escape \\$(icon) references")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List the icon references found")

	return cmd
}

// textArg returns the single positional argument, or stdin when there is none.
func textArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}
