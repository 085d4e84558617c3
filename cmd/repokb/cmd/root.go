// Package cmd provides the CLI commands for repokb.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/girijashankarj/garry-rag-repo-harness/internal/config"
	"github.com/girijashankarj/garry-rag-repo-harness/internal/logging"
	"github.com/girijashankarj/garry-rag-repo-harness/pkg/version"
)

// DefaultConfigPath is looked up when --config is not given.
const DefaultConfigPath = ".repokb.yaml"

var (
	configPath     string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the repokb CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repokb",
		Short: "Searchable knowledge base over source-controlled documents",
		Long: `repokb builds a redacted, chunked, optionally vectorized index
over one or more source repositories and answers keyword, semantic,
and hybrid queries against it.

Run 'repokb build' to produce the artifact, then 'repokb search'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("repokb version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", DefaultConfigPath, "Path to the configuration file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.repokb/logs/")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if loggingCleanup != nil {
			loggingCleanup()
		}
	}

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setupLogging installs the process-wide logger. Without --debug, logs
// go to stderr at the configured level and nothing touches the log
// directory.
func setupLogging(*cobra.Command, []string) error {
	logCfg := logging.Config{Level: "warn"}
	if debugMode {
		logCfg = logging.DefaultConfig()
		logCfg.Level = "debug"
	}

	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	loggingCleanup = cleanup
	return nil
}

// loadConfig reads the configuration named by --config.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// ExecuteContext runs the CLI with the given context.
func ExecuteContext(ctx context.Context) error {
	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
