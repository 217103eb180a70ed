// Package modules holds the processing modules shipped with the engine.
// Each one derives a single keyed fragment from the analysis directory.
package modules

import (
	"os"
	"path/filepath"
	"time"

	"github.com/chort/cuckoo/internal/report"
)

// AnalysisInfo collects run metadata: the analysis identifier, its
// location on disk, and the engine version that produced the report.
type AnalysisInfo struct {
	report.BaseModule
}

// NewAnalysisInfo builds a fresh instance.
func NewAnalysisInfo() report.ProcessingModule {
	return &AnalysisInfo{}
}

// Key implements report.ProcessingModule.
func (m *AnalysisInfo) Key() string {
	return "info"
}

// Run implements report.ProcessingModule.
func (m *AnalysisInfo) Run() (interface{}, error) {
	info, err := os.Stat(m.Path)
	if err != nil {
		return nil, report.NewProcessingError("analysis directory %q is not readable", m.Path)
	}
	if !info.IsDir() {
		return nil, report.NewProcessingError("analysis path %q is not a directory", m.Path)
	}

	return map[string]interface{}{
		"id":      filepath.Base(m.Path),
		"path":    m.Path,
		"version": report.EngineVersion,
		"started": info.ModTime().UTC().Format(time.RFC3339),
	}, nil
}
