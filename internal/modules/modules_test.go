package modules

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chort/cuckoo/internal/config"
	"github.com/chort/cuckoo/internal/report"
)

func newAnalysisDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

func configure(m report.ProcessingModule, path string, cfg config.Module) report.ProcessingModule {
	m.Configure(path, cfg)
	return m
}

func TestAnalysisInfoDescribesRun(t *testing.T) {
	dir := newAnalysisDir(t)
	m := configure(NewAnalysisInfo(), dir, config.Module{Enabled: true})

	data, err := m.Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	info := data.(map[string]interface{})
	if info["id"] != filepath.Base(dir) {
		t.Fatalf("expected id %q, got %v", filepath.Base(dir), info["id"])
	}
	if info["path"] != dir {
		t.Fatalf("expected path %q, got %v", dir, info["path"])
	}
	if info["version"] != report.EngineVersion {
		t.Fatalf("expected engine version, got %v", info["version"])
	}
	if info["started"] == "" {
		t.Fatal("expected a started timestamp")
	}
}

func TestAnalysisInfoMissingDirIsProcessingError(t *testing.T) {
	m := configure(NewAnalysisInfo(), filepath.Join(t.TempDir(), "absent"), config.Module{Enabled: true})

	_, err := m.Run()
	if err == nil {
		t.Fatal("expected an error for a missing directory")
	}
	if !report.IsProcessingError(err) {
		t.Fatalf("expected a declared processing error, got %T: %v", err, err)
	}
}

func TestDebugTailsLogAndCollectsErrors(t *testing.T) {
	dir := newAnalysisDir(t)
	body := "INFO: starting\nERROR: agent unreachable\nINFO: done\nCRITICAL: giving up\n"
	if err := os.WriteFile(filepath.Join(dir, "analysis.log"), []byte(body), 0o600); err != nil {
		t.Fatalf("write log: %v", err)
	}

	m := configure(NewDebug(), dir, config.Module{Enabled: true})
	data, err := m.Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	debug := data.(map[string]interface{})
	errorLines := debug["errors"].([]string)
	if len(errorLines) != 2 {
		t.Fatalf("expected 2 error lines, got %#v", errorLines)
	}
	if !strings.Contains(debug["log"].(string), "agent unreachable") {
		t.Fatal("expected log content in the fragment")
	}
}

func TestDebugIncludesStderrCapture(t *testing.T) {
	dir := newAnalysisDir(t)
	if err := os.WriteFile(filepath.Join(dir, "analysis.log"), []byte("INFO: starting\n"), 0o600); err != nil {
		t.Fatalf("write log: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "analysis.err"), []byte("Traceback (most recent call last):\n  boom\n"), 0o600); err != nil {
		t.Fatalf("write err: %v", err)
	}

	m := configure(NewDebug(), dir, config.Module{Enabled: true})
	data, err := m.Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	capture := data.(map[string]interface{})["err"].(string)
	if !strings.Contains(capture, "Traceback") {
		t.Fatalf("expected stderr capture in the fragment, got %q", capture)
	}
}

func TestDebugToleratesMissingStderrCapture(t *testing.T) {
	dir := newAnalysisDir(t)
	if err := os.WriteFile(filepath.Join(dir, "analysis.log"), []byte("INFO: starting\n"), 0o600); err != nil {
		t.Fatalf("write log: %v", err)
	}

	m := configure(NewDebug(), dir, config.Module{Enabled: true})
	data, err := m.Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if capture := data.(map[string]interface{})["err"].(string); capture != "" {
		t.Fatalf("expected an empty capture without analysis.err, got %q", capture)
	}
}

func TestDebugRespectsMaxLines(t *testing.T) {
	dir := newAnalysisDir(t)
	body := "one\ntwo\nthree\nfour\n"
	if err := os.WriteFile(filepath.Join(dir, "analysis.log"), []byte(body), 0o600); err != nil {
		t.Fatalf("write log: %v", err)
	}

	cfg := config.Module{Enabled: true, Options: map[string]interface{}{"maxlines": 2}}
	m := configure(NewDebug(), dir, cfg)
	data, err := m.Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	log := data.(map[string]interface{})["log"].(string)
	if log != "three\nfour" {
		t.Fatalf("expected the last 2 lines, got %q", log)
	}
}

func TestDebugMissingLogIsProcessingError(t *testing.T) {
	m := configure(NewDebug(), newAnalysisDir(t), config.Module{Enabled: true})

	_, err := m.Run()
	if !report.IsProcessingError(err) {
		t.Fatalf("expected a declared processing error, got %T: %v", err, err)
	}
}

func TestDroppedInventoriesFiles(t *testing.T) {
	dir := newAnalysisDir(t)
	filesDir := filepath.Join(dir, "files")
	if err := os.MkdirAll(filesDir, 0o755); err != nil {
		t.Fatalf("mkdir files: %v", err)
	}

	payload := []byte("MZ fake executable payload")
	if err := os.WriteFile(filepath.Join(filesDir, "b.bin"), payload, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(filesDir, "a.txt"), []byte("plain text"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	m := configure(NewDropped(), dir, config.Module{Enabled: true})
	data, err := m.Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	dropped := data.([]interface{})
	if len(dropped) != 2 {
		t.Fatalf("expected 2 dropped files, got %d", len(dropped))
	}

	first := dropped[0].(map[string]interface{})
	if first["name"] != "a.txt" {
		t.Fatalf("expected deterministic name order, got %v", first["name"])
	}

	second := dropped[1].(map[string]interface{})
	sum := sha256.Sum256(payload)
	if second["sha256"] != hex.EncodeToString(sum[:]) {
		t.Fatalf("unexpected sha256: %v", second["sha256"])
	}
	if second["size"] != int64(len(payload)) {
		t.Fatalf("unexpected size: %v", second["size"])
	}
	if second["type"] == "" {
		t.Fatal("expected a sniffed content type")
	}
}

func TestDroppedWithoutFilesDirIsEmpty(t *testing.T) {
	m := configure(NewDropped(), newAnalysisDir(t), config.Module{Enabled: true})

	data, err := m.Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if dropped := data.([]interface{}); len(dropped) != 0 {
		t.Fatalf("expected empty inventory, got %#v", dropped)
	}
}

func TestDroppedHonorsMaxFiles(t *testing.T) {
	dir := newAnalysisDir(t)
	filesDir := filepath.Join(dir, "files")
	if err := os.MkdirAll(filesDir, 0o755); err != nil {
		t.Fatalf("mkdir files: %v", err)
	}
	for _, name := range []string{"one", "two", "three"} {
		if err := os.WriteFile(filepath.Join(filesDir, name), []byte(name), 0o600); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}

	cfg := config.Module{Enabled: true, Options: map[string]interface{}{"maxfiles": 2}}
	m := configure(NewDropped(), dir, cfg)
	data, err := m.Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if dropped := data.([]interface{}); len(dropped) != 2 {
		t.Fatalf("expected maxfiles to cap the inventory, got %d", len(dropped))
	}
}
