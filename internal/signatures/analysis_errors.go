// Package signatures holds the signatures shipped with the engine. Each
// one inspects the merged results document for a behavioral pattern.
package signatures

import "github.com/chort/cuckoo/internal/report"

// AnalysisErrors matches when the debug fragment carries error lines,
// signaling that part of the run degraded and the report may be partial.
type AnalysisErrors struct {
	report.BaseSignature
}

// NewAnalysisErrors builds a fresh instance.
func NewAnalysisErrors() report.Signature {
	s := &AnalysisErrors{}
	s.SignatureMeta = report.SignatureMeta{
		Name:        "analysis_errors",
		Description: "The analysis log reported one or more errors",
		Severity:    1,
		Enabled:     true,
	}
	return s
}

// Match implements report.Signature.
func (s *AnalysisErrors) Match(doc report.Document) (bool, error) {
	debug, ok := doc["debug"].(map[string]interface{})
	if !ok {
		return false, nil
	}

	lines := stringSlice(debug["errors"])
	if len(lines) == 0 {
		return false, nil
	}

	s.Data = lines
	return true, nil
}

// stringSlice accepts both the native []string a module produces and the
// []interface{} shape the fragment takes after a JSON round trip.
func stringSlice(v interface{}) []string {
	switch typed := v.(type) {
	case []string:
		return typed
	case []interface{}:
		var out []string
		for _, item := range typed {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
