package report

import (
	"errors"
	"fmt"

	"github.com/chort/cuckoo/internal/config"
)

// ProcessingModule derives one keyed fragment of analysis data from the
// raw analysis directory. A fresh instance is built for every run; no
// state carries across modules.
type ProcessingModule interface {
	// Configure binds the analysis path and the module's configuration
	// before Run.
	Configure(path string, cfg config.Module)
	// Enabled reports whether the module should run at all.
	Enabled() bool
	// Key names the document entry the fragment is stored under.
	Key() string
	// Run executes the analysis and returns the fragment value.
	Run() (interface{}, error)
}

// ModuleDescriptor identifies a registered processing module.
type ModuleDescriptor struct {
	// Name doubles as the configuration identifier.
	Name string
	// Order sequences execution, ascending. The registry assigns a default
	// to descriptors registered without one.
	Order int
	// New builds a fresh instance per invocation.
	New func() ProcessingModule
}

// BaseModule carries the bindings shared by processing modules. Concrete
// modules embed it and implement Key and Run.
type BaseModule struct {
	Path string
	Cfg  config.Module
}

// Configure implements ProcessingModule.
func (b *BaseModule) Configure(path string, cfg config.Module) {
	b.Path = path
	b.Cfg = cfg
}

// Enabled implements ProcessingModule using the configured flag.
func (b *BaseModule) Enabled() bool {
	return b.Cfg.Enabled
}

// ProcessingError is the declared, recoverable failure mode of a
// processing module: an anticipated condition such as malformed input for
// that particular module. The runner logs it at warning severity; anything
// else is treated as an unexpected fault.
type ProcessingError struct {
	Msg string
	Err error
}

// NewProcessingError builds a declared analysis error.
func NewProcessingError(format string, args ...interface{}) *ProcessingError {
	return &ProcessingError{Msg: fmt.Sprintf(format, args...)}
}

func (e *ProcessingError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// IsProcessingError reports whether err is (or wraps) a declared analysis
// error.
func IsProcessingError(err error) bool {
	var pe *ProcessingError
	return errors.As(err, &pe)
}
