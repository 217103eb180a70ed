package signatures

import "github.com/chort/cuckoo/internal/report"

// defaultDroppedThreshold is the dropped-file count above which the
// behavior is considered suspicious, unless configuration overrides it.
const defaultDroppedThreshold = 10

// DropsManyFiles matches when the sample wrote an unusually large number
// of files to disk during execution. The threshold comes from the
// signature's "threshold" option.
type DropsManyFiles struct {
	report.BaseSignature
}

// NewDropsManyFiles builds a fresh instance.
func NewDropsManyFiles() report.Signature {
	s := &DropsManyFiles{}
	s.SignatureMeta = report.SignatureMeta{
		Name:        "drops_many_files",
		Description: "The sample dropped an unusually large number of files",
		Severity:    2,
		Enabled:     true,
	}
	return s
}

// Match implements report.Signature.
func (s *DropsManyFiles) Match(doc report.Document) (bool, error) {
	dropped, ok := doc["dropped"].([]interface{})
	if !ok {
		return false, nil
	}

	threshold := s.Cfg.Int("threshold", defaultDroppedThreshold)
	if len(dropped) <= threshold {
		return false, nil
	}

	s.Data = map[string]interface{}{"count": len(dropped), "threshold": threshold}
	return true, nil
}
