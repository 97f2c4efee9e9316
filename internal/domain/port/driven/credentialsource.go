// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/octa/internal/domain/model"
)

// ErrFileAccess is returned when a credential source cannot be opened or read.
var ErrFileAccess = errors.New("file access")

// CredentialSource defines the driven port for loading credential tables.
type CredentialSource interface {
	// Load parses the source at path into a Table. Lines with fewer than two
	// fields are skipped. Returns an error wrapping ErrFileAccess when the
	// source cannot be read.
	Load(ctx context.Context, path string) (*model.Table, error)

	// List returns the candidate sources inside dir, in the order the
	// underlying storage enumerates them.
	List(ctx context.Context, dir string) ([]string, error)
}
