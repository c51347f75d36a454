// Package cli wires the dscmd commands: the terminal editor by default, and
// batch subcommands for running and checking command files.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"dscmd/config"
	"dscmd/datastore"
	"dscmd/logging"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dscmd",
		Short: "Edit, check and run datastore commands",
		Long: `dscmd manages datastore commands such as

  DeleteDataStoreTableRows(DataStore="HydroBase",DataStoreTable="staging",DeleteAllRows="True")
  RunSql(DataStore="HydroBase",Sql="update stations set active = 1")
  SetPropertyFromDataStore(DataStore="HydroBase",DataStoreProperty="DatabaseVersion",PropertyName="Version")

Without a subcommand the terminal editor opens on the saved command library.`,
		SilenceUsage: true,
		RunE:         runTUI,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $DSCMD_CONFIG, ./dscmd.toml, ~/.dscmd/config.toml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newRunCmd(),
		newCheckCmd(),
		newFormatCmd(),
		newCommandsCmd(),
		newDataStoresCmd(),
		newLibraryCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadFromEnv()
}

// setupLogging points the logger at w, or at the configured log file when w is nil.
// The returned closer releases the file.
func setupLogging(cfg *config.Config, w io.Writer) (io.Closer, error) {
	level := cfg.General.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if w != nil {
		logging.Reconfigure(logging.Config{Level: level, Output: w})
		return io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(cfg.General.DataDir, 0o755); err != nil {
		return nil, err
	}
	f, err := logging.OpenFile(cfg.General.LogFile)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logging.Reconfigure(logging.Config{Level: level, Output: f})
	return f, nil
}

func dataStoreConfigs(cfg *config.Config) []datastore.Config {
	var out []datastore.Config
	for _, ds := range cfg.DataStores {
		if !ds.IsEnabled() {
			continue
		}
		out = append(out, datastore.Config{
			Name:        ds.Name,
			Driver:      ds.Driver,
			DSN:         ds.DSN,
			Description: ds.Description,
			Timeout:     ds.Timeout.Duration,
			Properties:  ds.Properties,
		})
	}
	return out
}

// openDataStores opens the configured datastores. Unavailable stores are
// reported on errOut and left out; commands using them fail at run time.
func openDataStores(ctx context.Context, cfg *config.Config, errOut io.Writer) *datastore.Registry {
	reg, err := datastore.OpenAll(ctx, dataStoreConfigs(cfg))
	if err != nil {
		fmt.Fprintf(errOut, "Warning: %v\n", err)
	}
	return reg
}
