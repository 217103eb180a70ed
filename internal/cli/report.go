package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chort/cuckoo/internal/events"
	"github.com/chort/cuckoo/internal/report"
)

func newReportCmd() *cobra.Command {
	var inputPath string
	var summaryPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate aggregate stats from a finished report document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return errors.New("--input is required")
			}

			data, err := os.ReadFile(inputPath)
			if err != nil {
				return err
			}

			var doc map[string]interface{}
			if err := json.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("parse %s: %w", inputPath, err)
			}

			stats := summarizeDocument(inputPath, doc)

			emitter := events.NewEmitter(cmd.OutOrStdout())
			if err := emitter.Emit(events.Event{Level: events.LevelInfo, Type: "report", Message: "Report summarized", Fields: stats}); err != nil {
				return err
			}

			if summaryPath != "" {
				if err := writeReportSummary(summaryPath, stats); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Summary written to %s\n", summaryPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Path to a report.json document")
	cmd.Flags().StringVar(&summaryPath, "summary-file", "", "Optional path to store summary JSON")
	if err := cmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}

	return cmd
}

func summarizeDocument(path string, doc map[string]interface{}) map[string]interface{} {
	matches, _ := doc[report.SignaturesKey].([]interface{})

	severities := map[string]int{}
	alerts := 0
	for _, raw := range matches {
		match, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if severity, ok := match["severity"].(float64); ok {
			severities[fmt.Sprintf("%d", int(severity))]++
		}
		if alert, ok := match["alert"].(bool); ok && alert {
			alerts++
		}
	}

	return map[string]interface{}{
		"input":       path,
		"generatedAt": time.Now().UTC().Format(time.RFC3339),
		"keys":        len(doc),
		"matches":     len(matches),
		"severities":  severities,
		"alerts":      alerts,
	}
}

func writeReportSummary(path string, stats map[string]interface{}) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
