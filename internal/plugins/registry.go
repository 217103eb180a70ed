package plugins

import (
	"fmt"

	"github.com/chort/cuckoo/internal/report"
)

// DefaultOrder is assigned to processing modules registered without an
// explicit order (including an explicit zero), so they sort alongside the
// earliest registered modules.
const DefaultOrder = 1

// Registry holds the processing modules and signatures available to a
// run. Registration order is preserved; the processor applies its own
// stable order sort on top.
type Registry struct {
	modules    []report.ModuleDescriptor
	signatures []report.SignatureDescriptor
	names      map[string]struct{}
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{names: map[string]struct{}{}}
}

// AddModule registers a processing module descriptor. Duplicate names and
// nil factories are rejected.
func (r *Registry) AddModule(d report.ModuleDescriptor) error {
	if d.Name == "" || d.New == nil {
		return fmt.Errorf("invalid module descriptor: %+v", d)
	}
	if _, dup := r.names["module/"+d.Name]; dup {
		return fmt.Errorf("duplicate processing module: %s", d.Name)
	}

	if d.Order == 0 {
		d.Order = DefaultOrder
	}

	r.names["module/"+d.Name] = struct{}{}
	r.modules = append(r.modules, d)
	return nil
}

// AddSignature registers a signature descriptor.
func (r *Registry) AddSignature(d report.SignatureDescriptor) error {
	if d.Name == "" || d.New == nil {
		return fmt.Errorf("invalid signature descriptor: %+v", d)
	}
	if _, dup := r.names["signature/"+d.Name]; dup {
		return fmt.Errorf("duplicate signature: %s", d.Name)
	}

	r.names["signature/"+d.Name] = struct{}{}
	r.signatures = append(r.signatures, d)
	return nil
}

// MustAddModule registers a module and panics on a defective descriptor.
// Intended for built-in registration at startup.
func (r *Registry) MustAddModule(d report.ModuleDescriptor) {
	if err := r.AddModule(d); err != nil {
		panic(err)
	}
}

// MustAddSignature registers a signature and panics on a defective
// descriptor.
func (r *Registry) MustAddSignature(d report.SignatureDescriptor) {
	if err := r.AddSignature(d); err != nil {
		panic(err)
	}
}

// ProcessingModules implements report.Registry.
func (r *Registry) ProcessingModules() ([]report.ModuleDescriptor, error) {
	out := make([]report.ModuleDescriptor, len(r.modules))
	copy(out, r.modules)
	return out, nil
}

// Signatures implements report.Registry.
func (r *Registry) Signatures() ([]report.SignatureDescriptor, error) {
	out := make([]report.SignatureDescriptor, len(r.signatures))
	copy(out, r.signatures)
	return out, nil
}
