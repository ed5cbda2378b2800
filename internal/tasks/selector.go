package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/chorus-bot/chorus/internal/models"
	"github.com/chorus-bot/chorus/internal/shared"
)

const (
	// maxCandidates is how many results a disambiguation prompt offers.
	maxCandidates = 5

	// selectTimeout bounds how long a prompt waits for its requester.
	selectTimeout = 60 * time.Second
)

// Choice is one selection event delivered by a [Prompter]. The engine
// filters by user: only the requester's choices count.
type Choice struct {
	UserID string
	Index  int
}

// Prompter presents candidates to the requesting user and streams back
// selection events. The returned cancel func withdraws the prompt; it must
// be safe to call after the channel closes.
type Prompter interface {
	Present(ctx context.Context, candidates []models.Candidate) (<-chan Choice, func(), error)
}

// Disambiguate searches for a query, presents the top candidates and waits
// for the requesting user to pick one.
//
// Resolution happens exactly once: the single select loop below is the only
// reader of the choice channel, and the first valid choice (right user,
// index in range) wins. Choices from other users or with out-of-range
// indices are ignored without consuming any of the wait. The wait is bounded
// by a fixed timeout, surfaced to the caller as
// [shared.ErrSelectionTimedOut].
func (e *PlayerEngine) Disambiguate(ctx context.Context, prompter Prompter, userID, query string) (models.Candidate, error) {
	candidates, err := e.search.Search(ctx, query, maxCandidates)
	if err != nil {
		return models.Candidate{}, err
	}

	choices, cancel, err := prompter.Present(ctx, candidates)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to present candidates: %w", err)
	}
	defer cancel()

	timer := time.NewTimer(e.selectWait)
	defer timer.Stop()

	for {
		select {
		case choice, ok := <-choices:
			if !ok {
				return models.Candidate{}, fmt.Errorf("%w: prompt dismissed", shared.ErrResolutionFailed)
			}
			if choice.UserID != userID {
				continue
			}
			if choice.Index < 0 || choice.Index >= len(candidates) {
				continue
			}
			return candidates[choice.Index], nil
		case <-timer.C:
			return models.Candidate{}, shared.ErrSelectionTimedOut
		case <-ctx.Done():
			return models.Candidate{}, ctx.Err()
		}
	}
}
