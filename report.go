package assetpack

import (
	"github.com/apex/log"
)

// Failure is the structured record handed to an ErrorReporter for every
// recoverable problem the engine runs into.
type Failure struct {
	Op    string // operation that failed, e.g. "validate", "fetch", "write"
	Asset string // asset or bundle name, if known
	Ref   string // path or URL involved, if any
	Err   error
}

// Details returns the human readable message of the failure.
func (f Failure) Details() string {
	if f.Err == nil {
		return f.Op + " failed"
	}
	return f.Err.Error()
}

// ErrorReporter receives recoverable failures. Reports are serialized by the
// engine, so implementations need no locking of their own.
type ErrorReporter interface {
	Report(Failure)
}

// ReporterFunc adapts an ordinary function to the ErrorReporter interface.
type ReporterFunc func(Failure)

// Report calls f(failure).
func (f ReporterFunc) Report(failure Failure) {
	f(failure)
}

type nopReporter struct{}

func (nopReporter) Report(Failure) {}

// report logs the failure and hands it to the configured reporter.
func (e *Engine) report(f Failure) {
	e.reportMu.Lock()
	defer e.reportMu.Unlock()

	e.logger.WithFields(log.Fields{
		"op":    f.Op,
		"asset": f.Asset,
		"ref":   f.Ref,
	}).WithError(f.Err).Error("asset pipeline failure")

	e.reporter.Report(f)
}
