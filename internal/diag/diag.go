// Package diag accumulates diagnostics emitted by the markup transpiler
// and the scene resolver. A Reporter is passed explicitly into every
// component call; nothing in the core reads ambient state.
//
// Problems never abort a run. Each report increments a counter and routes
// a message to one of four channels (error, warning, info, debug); the
// caller inspects the cumulative counts to pick an exit status.
package diag

import (
	"fmt"

	"gddoc/internal/logging"
)

// Reporter routes diagnostic messages and keeps cumulative counts.
type Reporter struct {
	logger *logging.Logger

	errors   int
	warnings int

	// droppedEndpoints counts connection endpoints that named a node
	// path missing from the scene. The resolver drops these silently;
	// the count is exposed so callers can audit the lenient policy.
	droppedEndpoints int
}

// NewReporter creates a Reporter routing messages to the given logger.
func NewReporter(logger *logging.Logger) *Reporter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Reporter{logger: logger}
}

// Errorf reports an error and increments the error count.
func (r *Reporter) Errorf(format string, args ...interface{}) {
	r.errors++
	r.logger.Error(fmt.Sprintf(format, args...), nil)
}

// Warnf reports a warning and increments the warning count.
func (r *Reporter) Warnf(format string, args ...interface{}) {
	r.warnings++
	r.logger.Warn(fmt.Sprintf(format, args...), nil)
}

// Infof reports an informational message. It does not affect counts.
func (r *Reporter) Infof(format string, args ...interface{}) {
	r.logger.Info(fmt.Sprintf(format, args...), nil)
}

// Debugf reports a debug message. It does not affect counts.
func (r *Reporter) Debugf(format string, args ...interface{}) {
	r.logger.Debug(fmt.Sprintf(format, args...), nil)
}

// DroppedEndpoint records a connection endpoint discarded because its
// node path was not present in the scene.
func (r *Reporter) DroppedEndpoint() {
	r.droppedEndpoints++
}

// Errors returns the cumulative error count.
func (r *Reporter) Errors() int { return r.errors }

// Warnings returns the cumulative warning count.
func (r *Reporter) Warnings() int { return r.warnings }

// DroppedEndpoints returns how many connection endpoints were discarded.
func (r *Reporter) DroppedEndpoints() int { return r.droppedEndpoints }

// Counts is a snapshot of the reporter's counters, shaped for reports.
type Counts struct {
	Errors           int `json:"errors" yaml:"errors"`
	Warnings         int `json:"warnings" yaml:"warnings"`
	DroppedEndpoints int `json:"droppedEndpoints" yaml:"droppedEndpoints"`
}

// Snapshot returns the current counter values.
func (r *Reporter) Snapshot() Counts {
	return Counts{
		Errors:           r.errors,
		Warnings:         r.warnings,
		DroppedEndpoints: r.droppedEndpoints,
	}
}
