package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/octa/internal/domain/model"
)

// ErrRunNotFound is returned when a run ID does not exist in the store.
var ErrRunNotFound = errors.New("run not found")

// ResultStore defines the driven port for persisting run history.
type ResultStore interface {
	// BeginRun records the start of a run. run.ID must be set.
	BeginRun(ctx context.Context, run model.Run) error

	// SavePair stores the result of one base/source comparison, including its entries.
	SavePair(ctx context.Context, runID string, pair model.PairResult) error

	// FinishRun stamps the finish time and final counters on a run.
	FinishRun(ctx context.Context, runID string, stats model.RunStats) error

	// GetRun retrieves a run by ID. Returns ErrRunNotFound if absent.
	GetRun(ctx context.Context, runID string) (*model.Run, error)

	// ListRuns returns all runs, most recent first.
	ListRuns(ctx context.Context) ([]model.Run, error)

	// ListPairs returns the pair results of a run in insertion order, with entries.
	ListPairs(ctx context.Context, runID string) ([]model.PairResult, error)
}
