package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chort/cuckoo/internal/config"
	"github.com/chort/cuckoo/internal/plugins"
	"github.com/chort/cuckoo/internal/report"
)

type doctorCheck struct {
	Name   string
	Status string // "✓" or "✗"
	Detail string
	Error  error
}

func newDoctorCmd(root *rootOptions) *cobra.Command {
	var analysisPath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration, plugin registry, and analysis directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			checks := runDoctorChecks(root.ConfigPath, analysisPath)
			printDoctorReport(cmd, checks)

			for _, check := range checks {
				if check.Error != nil {
					return fmt.Errorf("doctor checks failed")
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "\n✓ All checks passed. Engine is ready.")
			return nil
		},
	}

	cmd.Flags().StringVar(&analysisPath, "analysis", "", "Optional analysis directory to validate")

	return cmd
}

func runDoctorChecks(configPath, analysisPath string) []doctorCheck {
	checks := []doctorCheck{
		checkEngineVersion(),
		checkConfiguration(configPath),
		checkRegistry(),
	}

	if analysisPath != "" {
		checks = append(checks, checkAnalysisDir(analysisPath))
	}

	return checks
}

func checkEngineVersion() doctorCheck {
	if err := report.ValidateVersion(report.EngineVersion); err != nil {
		return doctorCheck{
			Name:   "Engine Version",
			Status: "✗",
			Detail: report.EngineVersion,
			Error:  err,
		}
	}
	return doctorCheck{
		Name:   "Engine Version",
		Status: "✓",
		Detail: report.EngineVersion,
	}
}

func checkConfiguration(path string) doctorCheck {
	resolved := config.ResolvePath(path)
	if _, err := config.Load(path); err != nil {
		return doctorCheck{
			Name:   "Configuration",
			Status: "✗",
			Detail: resolved,
			Error:  err,
		}
	}
	return doctorCheck{
		Name:   "Configuration",
		Status: "✓",
		Detail: resolved,
	}
}

func checkRegistry() doctorCheck {
	registry := plugins.Builtin()
	modules, err := registry.ProcessingModules()
	if err != nil {
		return doctorCheck{Name: "Plugin Registry", Status: "✗", Error: err}
	}
	signatures, err := registry.Signatures()
	if err != nil {
		return doctorCheck{Name: "Plugin Registry", Status: "✗", Error: err}
	}

	if len(modules) == 0 {
		return doctorCheck{
			Name:   "Plugin Registry",
			Status: "✗",
			Detail: "no processing modules registered",
			Error:  fmt.Errorf("empty registry"),
		}
	}

	return doctorCheck{
		Name:   "Plugin Registry",
		Status: "✓",
		Detail: fmt.Sprintf("%d modules, %d signatures", len(modules), len(signatures)),
	}
}

func checkAnalysisDir(path string) doctorCheck {
	info, err := os.Stat(path)
	if err != nil {
		return doctorCheck{
			Name:   "Analysis Directory",
			Status: "✗",
			Detail: path,
			Error:  err,
		}
	}
	if !info.IsDir() {
		return doctorCheck{
			Name:   "Analysis Directory",
			Status: "✗",
			Detail: path,
			Error:  fmt.Errorf("not a directory"),
		}
	}

	return doctorCheck{
		Name:   "Analysis Directory",
		Status: "✓",
		Detail: path,
	}
}

func printDoctorReport(cmd *cobra.Command, checks []doctorCheck) {
	fmt.Fprintln(cmd.OutOrStdout(), "Running engine diagnostics...")

	for _, check := range checks {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %-22s %s\n", check.Status, check.Name+":", check.Detail)
		if check.Error != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "   Error: %v\n", check.Error)
		}
	}
}
