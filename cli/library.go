package cli

import (
	"fmt"
	"os"

	"dscmd/command"
	"dscmd/db"

	"github.com/spf13/cobra"
)

func newLibraryCmd() *cobra.Command {
	lib := &cobra.Command{
		Use:   "library",
		Short: "Export or import the saved command library",
	}
	lib.AddCommand(
		&cobra.Command{
			Use:   "export [FILE]",
			Short: "Write the library as YAML (stdout when FILE is omitted)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				database, err := openLibrary()
				if err != nil {
					return err
				}
				defer database.Close()

				if len(args) == 0 {
					return database.Export(cmd.OutOrStdout())
				}
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				if err := database.Export(f); err != nil {
					_ = f.Close()
					return err
				}
				return f.Close()
			},
		},
		&cobra.Command{
			Use:   "import FILE",
			Short: "Add commands from a YAML export, skipping ones already saved",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				database, err := openLibrary()
				if err != nil {
					return err
				}
				defer database.Close()

				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				added, skipped, err := database.Import(f, validateCommand)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d added, %d already present\n", added, skipped)
				return nil
			},
		},
	)
	return lib
}

func openLibrary() (*db.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return db.New(cfg.General.Library)
}

// validateCommand rejects command text that does not parse to a known command.
func validateCommand(text string) error {
	c, err := command.Parse(text)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("empty command")
	}
	return nil
}
