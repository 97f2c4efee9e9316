package driven

import (
	"errors"

	"github.com/ericfisherdev/octa/internal/domain/model"
)

// ErrOutputWrite is returned when a report cannot be persisted.
var ErrOutputWrite = errors.New("output write")

// ReportWriter defines the driven port for persisting rendered report tables.
// Implementations add the heading; body is the rendered table and is never empty.
type ReportWriter interface {
	// Prepare creates the output layout. It assumes the output root has
	// already been cleared and may be called more than once.
	Prepare() error

	// WritePair persists the report for one base/source pair.
	WritePair(base, source string, kind model.ReportKind, body string) error

	// WriteAggregate persists the report accumulated for one base across all sources.
	WriteAggregate(base string, kind model.ReportKind, body string) error
}
