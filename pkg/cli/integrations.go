package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lensmark/lensmark/pkg/cloudintegration"
	"github.com/lensmark/lensmark/pkg/util"
)

// NewIntegrationsCmd creates the integrations command group
func NewIntegrationsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "integrations",
		Aliases: []string{"int"},
		Short:   "Read connected cloud integrations and their tokens",
	}

	cmd.AddCommand(newIntegrationsListCmd(opts))
	cmd.AddCommand(newIntegrationsTokenCmd(opts))

	return cmd
}

func newService(cmd *cobra.Command, opts *globalOptions) (*cloudintegration.Service, error) {
	logger := util.Logger(cmd.Context())

	svcOpts := []cloudintegration.Option{cloudintegration.WithLogger(logger)}
	if opts.cfg.Log.Telemetry {
		svcOpts = append(svcOpts, cloudintegration.WithTelemetry(&cloudintegration.LogTelemetry{Logger: logger}))
	}

	cfg := opts.cfg.Cloud
	if cfg.UserAgent == "" {
		cfg.UserAgent = "lensmark/" + Version
	}
	return cloudintegration.NewService(cfg, svcOpts...)
}

func newIntegrationsListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the connected integrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd, opts)
			if err != nil {
				return err
			}

			connections, err := svc.Connections(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(connections) == 0 {
				fmt.Fprintln(out, color.YellowString("No connected integrations"))
				return nil
			}
			for _, c := range connections {
				line := fmt.Sprintf("%s\t%s", color.CyanString(c.Provider), c.Type)
				if c.Domain != "" {
					line += "\t" + c.Domain
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func newIntegrationsTokenCmd(opts *globalOptions) *cobra.Command {
	var refreshToken string

	ids := make([]string, 0, len(cloudintegration.IntegrationIDs()))
	for _, id := range cloudintegration.IntegrationIDs() {
		ids = append(ids, string(id))
	}

	cmd := &cobra.Command{
		Use:       "token <integration>",
		Short:     "Print the session of an integration as JSON",
		Long:      fmt.Sprintf("Print the session of an integration as JSON.\n\nIntegrations: %s", strings.Join(ids, ", ")),
		Args:      cobra.ExactArgs(1),
		ValidArgs: ids,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd, opts)
			if err != nil {
				return err
			}

			session, err := svc.ConnectionSession(cmd.Context(), cloudintegration.IntegrationID(args[0]), refreshToken)
			if err != nil {
				return err
			}
			if session == nil {
				return fmt.Errorf("no session for '%s'", args[0])
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(session)
		},
	}

	cmd.Flags().StringVar(&refreshToken, "refresh", "", "Refresh the session using this access token")

	return cmd
}
