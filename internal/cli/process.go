package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/chort/cuckoo/internal/config"
	"github.com/chort/cuckoo/internal/events"
	"github.com/chort/cuckoo/internal/observability"
	"github.com/chort/cuckoo/internal/plugins"
	"github.com/chort/cuckoo/internal/report"
)

func newProcessCmd(root *rootOptions) *cobra.Command {
	var analysisPath string
	var outputPath string
	var summaryPath string
	var metricsPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run every processing module and signature against an analysis directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if analysisPath == "" {
				return errors.New("--analysis is required")
			}

			provider, err := config.Load(root.ConfigPath)
			if err != nil {
				return err
			}

			emitter := events.NewEmitter(cmd.OutOrStdout())
			if !verbose {
				emitter.SetMinLevel(events.LevelInfo)
			}

			registry := plugins.Builtin()
			processor := report.NewProcessor(analysisPath, registry, provider, emitter)

			var promReg *prometheus.Registry
			if metricsPath != "" {
				promReg = prometheus.NewRegistry()
				processor.SetMetrics(observability.NewPromMetrics(promReg))
			}

			if err := emitter.Emit(events.Event{Level: events.LevelInfo, Type: "process-start", Message: "Starting processing run", Fields: map[string]interface{}{"analysis": analysisPath, "version": report.EngineVersion}}); err != nil {
				return err
			}

			doc, err := processor.Run()
			if err != nil {
				return err
			}

			if outputPath == "" {
				outputPath = filepath.Join(analysisPath, "report.json")
			}
			if err := writeDocument(outputPath, doc); err != nil {
				return err
			}

			matches, _ := doc[report.SignaturesKey].([]report.Match)
			if err := emitter.Emit(events.Event{Level: events.LevelInfo, Type: "report-written", Fields: map[string]interface{}{"path": outputPath, "keys": len(doc), "matches": len(matches)}}); err != nil {
				return err
			}

			if summaryPath != "" {
				if err := writeRunSummary(summaryPath, analysisPath, outputPath, matches); err != nil {
					return err
				}
			}

			if promReg != nil {
				if err := writeMetricsFile(metricsPath, promReg); err != nil {
					return err
				}
			}

			return emitter.Emit(events.Event{Level: events.LevelInfo, Type: "process-finished", Message: "Processing complete", Fields: map[string]interface{}{"matches": len(matches)}})
		},
	}

	cmd.Flags().StringVar(&analysisPath, "analysis", "", "Path to the analysis directory produced by the sandbox")
	cmd.Flags().StringVar(&outputPath, "output", "", "Report path (defaults to <analysis>/report.json)")
	cmd.Flags().StringVar(&summaryPath, "summary-file", "", "Optional path to store summary JSON")
	cmd.Flags().StringVar(&metricsPath, "metrics-file", "", "Optional path to dump prometheus metrics in text format")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Emit debug-level events")

	return cmd
}

func writeDocument(path string, doc report.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func writeRunSummary(path, analysisPath, reportPath string, matches []report.Match) error {
	alerts := 0
	for _, m := range matches {
		if m.Alert {
			alerts++
		}
	}

	summary := map[string]interface{}{
		"generatedAt": time.Now().UTC().Format(time.RFC3339),
		"analysis":    analysisPath,
		"report":      reportPath,
		"matches":     len(matches),
		"alerts":      alerts,
		"version":     report.EngineVersion,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}

	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func writeMetricsFile(path string, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := expfmt.NewEncoder(file, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return err
		}
	}

	return nil
}
