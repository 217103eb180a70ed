package modules

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/chort/cuckoo/internal/report"
)

const defaultLogTail = 100

// Debug exposes the tail of the analysis log, any error lines it carries,
// and the analyzer's stderr capture, so a report reader can tell why other
// fragments are missing.
type Debug struct {
	report.BaseModule
}

// NewDebug builds a fresh instance.
func NewDebug() report.ProcessingModule {
	return &Debug{}
}

// Key implements report.ProcessingModule.
func (m *Debug) Key() string {
	return "debug"
}

// Run implements report.ProcessingModule.
func (m *Debug) Run() (interface{}, error) {
	logPath := filepath.Join(m.Path, "analysis.log")

	file, err := os.Open(logPath)
	if err != nil {
		// A missing log is an anticipated condition, not an engine fault.
		return nil, report.NewProcessingError("analysis log not found at %q", logPath)
	}
	defer file.Close()

	maxLines := m.Cfg.Int("maxlines", defaultLogTail)
	if maxLines < 1 {
		maxLines = defaultLogTail
	}

	var lines []string
	var errorLines []string

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		lines = append(lines, line)
		if len(lines) > maxLines {
			lines = lines[1:]
		}
		if isErrorLine(line) {
			errorLines = append(errorLines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if errorLines == nil {
		errorLines = []string{}
	}

	return map[string]interface{}{
		"log":    strings.Join(lines, "\n"),
		"errors": errorLines,
		"err":    readErrFile(filepath.Join(m.Path, "analysis.err")),
	}, nil
}

// readErrFile returns the stderr capture of the analyzer, if one was
// written. Most analyses produce none, so a missing file is not an error.
func readErrFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(data), "\n")
}

func isErrorLine(line string) bool {
	upper := strings.ToUpper(line)
	return strings.Contains(upper, "ERROR") || strings.Contains(upper, "CRITICAL")
}
