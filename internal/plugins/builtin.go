package plugins

import (
	"github.com/chort/cuckoo/internal/modules"
	"github.com/chort/cuckoo/internal/report"
	"github.com/chort/cuckoo/internal/signatures"
)

// Builtin returns a registry populated with the stock processing modules
// and signatures shipped with the engine.
func Builtin() *Registry {
	r := New()

	r.MustAddModule(report.ModuleDescriptor{Name: "analysisinfo", Order: 1, New: modules.NewAnalysisInfo})
	r.MustAddModule(report.ModuleDescriptor{Name: "dropped", Order: 10, New: modules.NewDropped})
	r.MustAddModule(report.ModuleDescriptor{Name: "debug", Order: 999, New: modules.NewDebug})

	r.MustAddSignature(report.SignatureDescriptor{Name: "analysis_errors", New: signatures.NewAnalysisErrors})
	r.MustAddSignature(report.SignatureDescriptor{Name: "drops_many_files", New: signatures.NewDropsManyFiles})

	return r
}
