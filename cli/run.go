package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"dscmd/command"
	"dscmd/processor"
	"dscmd/runner"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var props []string
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run a command file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			closer, err := setupLogging(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()

			cmds, err := processor.ReadCommandFile(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			stores := openDataStores(ctx, cfg, cmd.ErrOrStderr())
			defer stores.Close()

			dir, err := filepath.Abs(filepath.Dir(args[0]))
			if err != nil {
				return err
			}
			proc := processor.New(stores, dir)
			for _, kv := range props {
				name, value, ok := strings.Cut(kv, "=")
				if !ok || name == "" {
					return fmt.Errorf("invalid --property %q, expected Name=Value", kv)
				}
				proc.SetProperty(name, value)
			}

			out := make(chan runner.OutputMsg)
			go runner.Run(ctx, proc, cmds, out)
			return printOutput(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringArrayVarP(&props, "property", "p", nil, "set a processor property before running (Name=Value)")
	return cmd
}

// printOutput drains out. It returns an error when any command failed.
func printOutput(w io.Writer, out <-chan runner.OutputMsg) error {
	var failure error
	for m := range out {
		if m.Line != "" {
			fmt.Fprintln(w, m.Line)
		}
		if m.Done && m.ErrMsg != "" {
			failure = errors.New(m.ErrMsg)
		}
	}
	return failure
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Validate command parameters without running",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmds, err := processor.ReadCommandFile(args[0])
			if err != nil {
				return err
			}
			failed := processor.CheckAll(cmds)

			w := cmd.OutOrStdout()
			for i, c := range cmds {
				entries := c.Status().Entries(command.PhaseInitialization)
				if len(entries) == 0 {
					continue
				}
				fmt.Fprintf(w, "[%d] %s\n", i+1, c.String())
				for _, e := range entries {
					fmt.Fprintf(w, "    %s: %s (%s)\n", e.Severity, e.Message, e.Recommendation)
				}
			}
			total := 0
			for _, c := range cmds {
				if !c.IsComment() {
					total++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d commands have invalid parameters", failed, total)
			}
			fmt.Fprintf(w, "%d commands OK\n", total)
			return nil
		},
	}
}

func newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format FILE",
		Short: "Print a command file in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmds, err := processor.ReadCommandFile(args[0])
			if err != nil {
				return err
			}
			for _, c := range cmds {
				fmt.Fprintln(cmd.OutOrStdout(), c.String())
			}
			return nil
		},
	}
}
