package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestReportCommandSummarizesDocument(t *testing.T) {
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "report.json")

	doc := map[string]interface{}{
		"info": map[string]interface{}{"id": "1"},
		"signatures": []interface{}{
			map[string]interface{}{"name": "a", "severity": 1, "alert": true},
			map[string]interface{}{"name": "b", "severity": 1, "alert": false},
			map[string]interface{}{"name": "c", "severity": 3, "alert": false},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := os.WriteFile(reportPath, data, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	summaryPath := filepath.Join(dir, "summary.json")
	out := &bytes.Buffer{}
	cmd := newReportCmd()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--input", reportPath, "--summary-file", summaryPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("report failed: %v", err)
	}

	summary, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}

	var stats map[string]interface{}
	if err := json.Unmarshal(summary, &stats); err != nil {
		t.Fatalf("decode summary: %v", err)
	}

	if stats["matches"] != float64(3) {
		t.Fatalf("expected 3 matches, got %v", stats["matches"])
	}
	if stats["alerts"] != float64(1) {
		t.Fatalf("expected 1 alert, got %v", stats["alerts"])
	}

	severities := stats["severities"].(map[string]interface{})
	if severities["1"] != float64(2) || severities["3"] != float64(1) {
		t.Fatalf("unexpected severity histogram: %v", severities)
	}
}

func TestReportCommandRejectsInvalidInput(t *testing.T) {
	dir := t.TempDir()
	badPath := filepath.Join(dir, "report.json")
	if err := os.WriteFile(badPath, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cmd := newReportCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--input", badPath})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected a parse error")
	}
}
