package report

import (
	"fmt"
	"io"
	"runtime/debug"
	"sort"
	"time"

	"github.com/chort/cuckoo/internal/config"
	"github.com/chort/cuckoo/internal/events"
	"github.com/chort/cuckoo/internal/observability"
)

// Registry supplies the ordered plugin descriptors for a run. Discovery
// and registration happen elsewhere; the processor only consumes lists.
type Registry interface {
	ProcessingModules() ([]ModuleDescriptor, error)
	Signatures() ([]SignatureDescriptor, error)
}

// ConfigProvider supplies per-plugin enablement and options.
type ConfigProvider interface {
	Module(name string) config.Module
	Signature(name string) config.Module
}

// Processor sequences processing modules over one analysis directory,
// merges their fragments into a single document, then evaluates
// signatures against it and attaches the severity-sorted matches. It is
// the sole writer of the document; every per-unit failure is isolated and
// logged, and only registry faults propagate.
type Processor struct {
	path     string
	registry Registry
	config   ConfigProvider
	events   *events.Emitter
	metrics  observability.Metrics
	version  string
}

// NewProcessor builds a processor for the analysis directory at path. A
// nil sink discards events.
func NewProcessor(path string, registry Registry, provider ConfigProvider, sink *events.Emitter) *Processor {
	if sink == nil {
		sink = events.NewEmitter(io.Discard)
	}
	return &Processor{
		path:     path,
		registry: registry,
		config:   provider,
		events:   sink,
		metrics:  observability.NopMetrics{},
		version:  EngineVersion,
	}
}

// SetMetrics replaces the default no-op metrics port.
func (p *Processor) SetMetrics(m observability.Metrics) {
	if m != nil {
		p.metrics = m
	}
}

// Run executes every processing module in ascending order, then every
// signature against the merged document, and returns the finished
// document with matches attached under the signatures key.
func (p *Processor) Run() (Document, error) {
	started := time.Now()
	results := Document{}

	modules, err := p.registry.ProcessingModules()
	if err != nil {
		return nil, fmt.Errorf("list processing modules: %w", err)
	}

	// Stable so that equal orders keep registration order.
	sort.SliceStable(modules, func(i, j int) bool {
		return modules[i].Order < modules[j].Order
	})

	for _, descriptor := range modules {
		fragment := p.runProcessing(descriptor)
		for key, data := range fragment {
			// A later module writing an existing key silently wins.
			results[key] = data
		}
	}

	signatures, err := p.registry.Signatures()
	if err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}

	var matches []Match
	for _, descriptor := range signatures {
		if match := p.runSignature(descriptor, results); match != nil {
			matches = append(matches, *match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Severity < matches[j].Severity
	})

	if matches == nil {
		matches = []Match{}
	}
	results[SignaturesKey] = matches

	p.metrics.RunDuration(time.Since(started).Seconds())

	return results, nil
}

// runProcessing executes a single processing module and returns its keyed
// fragment, or nil when the module is disabled or failed. It never touches
// the shared document.
func (p *Processor) runProcessing(descriptor ModuleDescriptor) (fragment map[string]interface{}) {
	current := descriptor.New()
	current.Configure(p.path, p.config.Module(descriptor.Name))

	if !current.Enabled() {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			fragment = nil
			p.metrics.ModuleFailed(descriptor.Name)
			p.events.Error("module-panic", fmt.Sprintf("processing module %q panicked", descriptor.Name), map[string]interface{}{
				"module": descriptor.Name,
				"panic":  fmt.Sprint(r),
				"stack":  string(debug.Stack()),
			})
		}
	}()

	data, err := current.Run()
	if err != nil {
		p.metrics.ModuleFailed(descriptor.Name)
		if IsProcessingError(err) {
			p.events.Warning("module-error", fmt.Sprintf("processing module %q returned an error", descriptor.Name), map[string]interface{}{
				"module": descriptor.Name,
				"error":  err.Error(),
			})
		} else {
			p.events.Error("module-failure", fmt.Sprintf("failed to run processing module %q", descriptor.Name), map[string]interface{}{
				"module": descriptor.Name,
				"error":  err.Error(),
			})
		}
		return nil
	}

	p.metrics.ModuleCompleted(descriptor.Name)
	p.events.Debug("module-executed", fmt.Sprintf("executed processing module %q", descriptor.Name), map[string]interface{}{
		"module": descriptor.Name,
		"path":   p.path,
		"key":    current.Key(),
	})

	return map[string]interface{}{current.Key(): data}
}

// runSignature applies the enable and version gates, evaluates the
// signature against a snapshot of the document, and returns the match
// record or nil. Evaluation failures are logged and treated as no-match.
func (p *Processor) runSignature(descriptor SignatureDescriptor, results Document) *Match {
	current := descriptor.New()
	cfg := p.config.Signature(descriptor.Name)
	current.Configure(cfg)
	meta := current.Meta()

	p.events.Debug("signature-running", fmt.Sprintf("running signature %q", meta.Name), nil)

	if !meta.Enabled || !cfg.Enabled {
		p.metrics.SignatureSkipped(descriptor.Name)
		return nil
	}

	if !p.versionGatesPass(meta) {
		p.metrics.SignatureSkipped(descriptor.Name)
		return nil
	}

	matched, err := p.evaluate(current, results)
	if err != nil {
		p.events.Error("signature-failure", fmt.Sprintf("failed to run signature %q", meta.Name), map[string]interface{}{
			"signature": meta.Name,
			"error":     err.Error(),
		})
		return nil
	}
	if !matched {
		return nil
	}

	p.metrics.SignatureMatched(descriptor.Name)
	p.events.Debug("signature-matched", fmt.Sprintf("analysis at %q matched signature %q", p.path, meta.Name), map[string]interface{}{
		"signature": meta.Name,
		"severity":  meta.Severity,
	})

	match := meta.snapshot()
	return &match
}

// versionGatesPass checks the signature's declared engine version bounds.
// Signatures carrying malformed bounds are authoring defects: they are
// skipped and logged, never propagated.
func (p *Processor) versionGatesPass(meta *SignatureMeta) bool {
	// Signatures without bounds are never version gated.
	if meta.Minimum == "" && meta.Maximum == "" {
		return true
	}

	running, err := parseVersion(p.version)
	if err != nil {
		p.events.Warning("version-gate", fmt.Sprintf("cannot parse engine version %q", p.version), map[string]interface{}{
			"signature": meta.Name,
		})
		return false
	}

	if meta.Minimum != "" {
		minimum, err := parseVersion(meta.Minimum)
		if err != nil {
			p.events.Warning("version-gate", fmt.Sprintf("signature %q declares malformed minimum version %q", meta.Name, meta.Minimum), nil)
			return false
		}
		if running.compare(minimum) < 0 {
			p.events.Debug("version-gate", fmt.Sprintf("signature %q requires minimum engine version %s", meta.Name, meta.Minimum), map[string]interface{}{
				"running": p.version,
			})
			return false
		}
	}

	if meta.Maximum != "" {
		maximum, err := parseVersion(meta.Maximum)
		if err != nil {
			p.events.Warning("version-gate", fmt.Sprintf("signature %q declares malformed maximum version %q", meta.Name, meta.Maximum), nil)
			return false
		}
		if running.compare(maximum) > 0 {
			p.events.Debug("version-gate", fmt.Sprintf("signature %q requires maximum engine version %s", meta.Name, meta.Maximum), map[string]interface{}{
				"running": p.version,
			})
			return false
		}
	}

	return true
}

// evaluate runs the signature's match logic against a document snapshot,
// converting panics into errors.
func (p *Processor) evaluate(sig Signature, results Document) (matched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			matched = false
			err = fmt.Errorf("signature panicked: %v", r)
		}
	}()

	return sig.Match(results.Snapshot())
}
