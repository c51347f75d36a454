package cli

import (
	"fmt"

	"dscmd/db"
	"dscmd/processor"
	"dscmd/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// The terminal belongs to the editor, so logs go to the file.
	closer, err := setupLogging(cfg, nil)
	if err != nil {
		return err
	}
	defer closer.Close()

	database, err := db.New(cfg.General.Library)
	if err != nil {
		return fmt.Errorf("initializing library: %w", err)
	}
	defer database.Close()

	ctx := cmd.Context()
	stores := openDataStores(ctx, cfg, cmd.ErrOrStderr())
	defer stores.Close()

	app, err := ui.NewApp(ctx, database, processor.New(stores, ""))
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running app: %w", err)
	}
	return nil
}
