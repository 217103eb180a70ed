package cli

import (
	"github.com/chort/cuckoo/internal/report"
	"github.com/spf13/cobra"
)

// Execute builds the root command tree and runs the CLI.
func Execute() error {
	rootOpts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "cuckoo-process",
		Short:         "Run processing modules and signatures over a sandbox analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       report.EngineVersion,
	}
	rootCmd.SetVersionTemplate("cuckoo-process version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&rootOpts.ConfigPath, "config", "", "Path to processing.yml (falls back to CUCKOO_PROCESSING_CONFIG, then ./processing.yml)")

	rootCmd.AddCommand(
		newProcessCmd(rootOpts),
		newReportCmd(),
		newInitCmd(rootOpts),
		newDoctorCmd(rootOpts),
	)

	return rootCmd.Execute()
}

type rootOptions struct {
	ConfigPath string
}
