// internal/pipeline/contract.go
package pipeline

import (
	"context"

	"recgroup/internal/engine"
)

// BatchProcessor is the minimal capability the pipeline needs.
// Any engine (including fakes in tests) can satisfy this.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, lines []string) (engine.BatchResult, error)
}

// Observer is told about every dispatch and completion. Calls come from the
// producer goroutine only.
type Observer interface {
	Dispatched(inFlight int)
	Completed(c Completion, inFlight int)
}

type nopObserver struct{}

func (nopObserver) Dispatched(int)            {}
func (nopObserver) Completed(Completion, int) {}
