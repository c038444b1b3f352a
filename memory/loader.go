package memory

import (
	"context"
	"fmt"
	"log"
)

// Loaded is the per-turn memory snapshot handed to the prompt builder.
type Loaded struct {
	CoreMemories   []string
	RecallMemories []string
}

// Loader assembles the per-turn memory snapshot. The core fetch and the
// recall similarity query have no data dependency, so Load runs them
// concurrently and joins before returning; a failure in either fails the
// load as a whole.
type Loader struct {
	core   *CoreStore
	recall *Recall
	topK   int
}

// NewLoader creates a Loader. topK <= 0 uses DefaultRecallTopK.
func NewLoader(core *CoreStore, recall *Recall, topK int) *Loader {
	if topK <= 0 {
		topK = DefaultRecallTopK
	}
	return &Loader{core: core, recall: recall, topK: topK}
}

// Load fetches core memories and queries recall memories for the rendered
// conversation. The transcript is truncated to TranscriptTokenBudget
// tokens before it is used as the similarity query.
func (l *Loader) Load(ctx context.Context, userID string, conversation string) (*Loaded, error) {
	query := TruncateTokens(conversation, TranscriptTokenBudget)

	var (
		coreMemories   []string
		recallMemories []string
	)
	errc := make(chan error, 2)

	go func() {
		rec, err := l.core.Fetch(ctx, userID)
		if err != nil {
			errc <- err
			return
		}
		coreMemories = rec.Memories
		errc <- nil
	}()
	go func() {
		mems, err := l.recall.Search(ctx, userID, query, l.topK)
		if err != nil {
			errc <- err
			return
		}
		recallMemories = mems
		errc <- nil
	}()

	// No partial success: both fetches must complete before the turn
	// proceeds.
	var firstErr error
	for i := 0; i < 2; i++ {
		if err := <-errc; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, fmt.Errorf("load memories: %w", firstErr)
	}

	log.Printf("[MEMORY] Loaded %d core and %d recall memories for %s",
		len(coreMemories), len(recallMemories), userID)
	return &Loaded{CoreMemories: coreMemories, RecallMemories: recallMemories}, nil
}
