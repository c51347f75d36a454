package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"dscmd/command"

	"github.com/spf13/cobra"
)

func newCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the available commands and their parameters",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			for _, d := range command.Definitions() {
				fmt.Fprintf(w, "%s - %s\n", d.Name, d.Description)
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				for _, p := range d.Params {
					flags := ""
					if p.Required {
						flags = "required"
					}
					if len(p.Choices) > 0 {
						flags = strings.TrimSpace(flags + " " + strings.Join(p.Choices, "|"))
					}
					fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.Name, flags, p.Description)
				}
				tw.Flush()
				fmt.Fprintln(w)
			}
		},
	}
}

func newDataStoresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datastores",
		Short: "List configured datastores and check their connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			closer, err := setupLogging(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()

			stores := openDataStores(cmd.Context(), cfg, cmd.ErrOrStderr())
			defer stores.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDRIVER\tSTATUS\tDESCRIPTION")
			for _, ds := range cfg.DataStores {
				driver, description := ds.Driver, ds.Description
				status := "ok"
				if !ds.IsEnabled() {
					status = "disabled"
				} else if open, err := stores.Get(ds.Name); err != nil {
					status = "unavailable"
				} else {
					driver, description = open.Driver(), open.Description()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ds.Name, driver, status, description)
			}
			return tw.Flush()
		},
	}
}
