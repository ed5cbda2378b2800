package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chorus-bot/chorus/internal/models"
	"github.com/chorus-bot/chorus/internal/shared"
)

// fakePrompter streams scripted choices and records cancellation.
type fakePrompter struct {
	mu        sync.Mutex
	choices   chan Choice
	presented []models.Candidate
	cancels   int
	err       error
}

func newFakePrompter() *fakePrompter {
	return &fakePrompter{choices: make(chan Choice, 8)}
}

func (p *fakePrompter) Present(ctx context.Context, candidates []models.Candidate) (<-chan Choice, func(), error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	p.mu.Lock()
	p.presented = candidates
	p.mu.Unlock()
	return p.choices, func() {
		p.mu.Lock()
		p.cancels++
		p.mu.Unlock()
	}, nil
}

func (p *fakePrompter) cancelCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancels
}

func candidates(n int) []models.Candidate {
	cs := make([]models.Candidate, n)
	for i := range cs {
		cs[i] = models.Candidate{Title: fmt.Sprintf("Result %d", i), SourceURL: fmt.Sprintf("https://yt/%d", i)}
	}
	return cs
}

func TestDisambiguate(t *testing.T) {
	ctx := context.Background()

	t.Run("Resolves Requester Choice", func(t *testing.T) {
		prompter := newFakePrompter()
		engine := newTestEngine(EngineOpts{Search: &fakeSearch{results: candidates(8)}})

		prompter.choices <- Choice{UserID: "u1", Index: 2}

		got, err := engine.Disambiguate(ctx, prompter, "u1", "some song")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Title != "Result 2" {
			t.Errorf("expected Result 2, got %q", got.Title)
		}

		if len(prompter.presented) != maxCandidates {
			t.Errorf("expected %d presented candidates, got %d", maxCandidates, len(prompter.presented))
		}
		if prompter.cancelCount() != 1 {
			t.Errorf("expected prompt withdrawn after resolution, got %d cancels", prompter.cancelCount())
		}
	})

	t.Run("No Search Results", func(t *testing.T) {
		engine := newTestEngine(EngineOpts{Search: &fakeSearch{searchErr: fmt.Errorf("%w: nothing", shared.ErrNoSearchResults)}})

		if _, err := engine.Disambiguate(ctx, newFakePrompter(), "u1", "nothing"); !errors.Is(err, shared.ErrNoSearchResults) {
			t.Errorf("expected ErrNoSearchResults, got %v", err)
		}
	})

	t.Run("Ignores Other Users", func(t *testing.T) {
		prompter := newFakePrompter()
		engine := newTestEngine(EngineOpts{Search: &fakeSearch{results: candidates(5)}})

		prompter.choices <- Choice{UserID: "intruder", Index: 0}
		prompter.choices <- Choice{UserID: "intruder", Index: 1}
		prompter.choices <- Choice{UserID: "u1", Index: 3}

		got, err := engine.Disambiguate(ctx, prompter, "u1", "some song")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Title != "Result 3" {
			t.Errorf("expected the requester's choice, got %q", got.Title)
		}
	})

	t.Run("Ignores Out Of Range Indices", func(t *testing.T) {
		prompter := newFakePrompter()
		engine := newTestEngine(EngineOpts{Search: &fakeSearch{results: candidates(3)}})

		prompter.choices <- Choice{UserID: "u1", Index: 7}
		prompter.choices <- Choice{UserID: "u1", Index: -1}
		prompter.choices <- Choice{UserID: "u1", Index: 1}

		got, err := engine.Disambiguate(ctx, prompter, "u1", "some song")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Title != "Result 1" {
			t.Errorf("expected first in-range choice, got %q", got.Title)
		}
	})

	t.Run("Times Out", func(t *testing.T) {
		prompter := newFakePrompter()
		engine := newTestEngine(EngineOpts{Search: &fakeSearch{results: candidates(5)}})
		engine.selectWait = 10 * time.Millisecond

		if _, err := engine.Disambiguate(ctx, prompter, "u1", "some song"); !errors.Is(err, shared.ErrSelectionTimedOut) {
			t.Errorf("expected ErrSelectionTimedOut, got %v", err)
		}
		if prompter.cancelCount() != 1 {
			t.Errorf("expected prompt withdrawn after timeout, got %d cancels", prompter.cancelCount())
		}
	})

	t.Run("Late Choice Is Not Applied", func(t *testing.T) {
		prompter := newFakePrompter()
		engine := newTestEngine(EngineOpts{Search: &fakeSearch{results: candidates(5)}})
		engine.selectWait = 10 * time.Millisecond

		if _, err := engine.Disambiguate(ctx, prompter, "u1", "some song"); !errors.Is(err, shared.ErrSelectionTimedOut) {
			t.Fatalf("expected timeout, got %v", err)
		}

		// The wait is over; a choice arriving now has no reader and changes
		// nothing.
		prompter.choices <- Choice{UserID: "u1", Index: 0}
		if prompter.cancelCount() != 1 {
			t.Errorf("expected exactly one cancel, got %d", prompter.cancelCount())
		}
	})

	t.Run("Context Cancellation", func(t *testing.T) {
		prompter := newFakePrompter()
		engine := newTestEngine(EngineOpts{Search: &fakeSearch{results: candidates(5)}})

		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := engine.Disambiguate(cancelCtx, prompter, "u1", "some song"); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Prompt Channel Closed", func(t *testing.T) {
		prompter := newFakePrompter()
		engine := newTestEngine(EngineOpts{Search: &fakeSearch{results: candidates(5)}})

		close(prompter.choices)

		if _, err := engine.Disambiguate(ctx, prompter, "u1", "some song"); !errors.Is(err, shared.ErrResolutionFailed) {
			t.Errorf("expected ErrResolutionFailed, got %v", err)
		}
	})

	t.Run("Presenter Failure", func(t *testing.T) {
		prompter := newFakePrompter()
		prompter.err = errors.New("interaction expired")
		engine := newTestEngine(EngineOpts{Search: &fakeSearch{results: candidates(5)}})

		if _, err := engine.Disambiguate(ctx, prompter, "u1", "some song"); err == nil {
			t.Error("expected presenter failure to surface")
		}
	})
}
