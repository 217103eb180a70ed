package events

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Level ranks event severity. Emitters drop events below their minimum.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// String returns the lowercase name used in the NDJSON stream.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// MarshalJSON encodes the level as its string name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// Event represents a single NDJSON record describing engine activity.
type Event struct {
	Level     Level                  `json:"level"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Message   string                 `json:"message,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Emitter writes NDJSON events to an io.Writer safely across goroutines.
// It is the explicit logging sink handed to the processing engine rather
// than a process-wide logger.
type Emitter struct {
	writer io.Writer
	min    Level
	mu     sync.Mutex
}

// NewEmitter returns an emitter that writes every level to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{writer: w, min: LevelDebug}
}

// SetMinLevel drops subsequent events below the given level.
func (e *Emitter) SetMinLevel(min Level) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.min = min
}

// Emit serializes the event to JSON and appends a newline.
func (e *Emitter) Emit(evt Event) error {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if evt.Level < e.min {
		return nil
	}

	if _, err := e.writer.Write(append(payload, '\n')); err != nil {
		return err
	}

	return nil
}

// Debug emits a debug-level event.
func (e *Emitter) Debug(typ, msg string, fields map[string]interface{}) {
	_ = e.Emit(Event{Level: LevelDebug, Type: typ, Message: msg, Fields: fields})
}

// Warning emits a warning-level event.
func (e *Emitter) Warning(typ, msg string, fields map[string]interface{}) {
	_ = e.Emit(Event{Level: LevelWarning, Type: typ, Message: msg, Fields: fields})
}

// Error emits an error-level event.
func (e *Emitter) Error(typ, msg string, fields map[string]interface{}) {
	_ = e.Emit(Event{Level: LevelError, Type: typ, Message: msg, Fields: fields})
}
