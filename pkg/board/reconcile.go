package board

import (
	"context"
	"fmt"
	"sync"
)

// mutation is one pending card write: persist the card's current field state,
// or delete it. Mutations are plain value-holding descriptors built after the
// whole new arrangement is computed, then executed together.
type mutation struct {
	card   *Card
	delete bool
}

// reconcile renumbers an arrangement and returns the minimal mutation list
// needed to persist it. Every card in slot i takes position i+1; a save is
// emitted only for cards whose (slot, sub-index) coordinate no longer matches
// origMap, the identifier snapshot taken before the edit.
//
// The comparison is identity-positional: a card that kept the same id at the
// same coordinate is never rewritten, even if slots shifted around it. That
// keeps the write surface narrow, which is the only defense this engine has
// against clobbering a concurrent operation's writes.
func reconcile(slots []Slot, origMap [][]int64) []mutation {
	var jobs []mutation

	for i, slot := range slots {
		for j, card := range slot {
			card.Position = i + 1
			if i >= len(origMap) || j >= len(origMap[i]) || origMap[i][j] != card.ID {
				jobs = append(jobs, mutation{card: card})
			}
		}
	}

	return jobs
}

// run executes the mutation jobs concurrently — each job targets a distinct
// card, so they are independent — and waits for all of them. Returns the
// first error encountered; sibling writes that already completed stay
// applied (no rollback).
func (e *Engine) run(ctx context.Context, jobs []mutation) error {
	if len(jobs) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(jobs))

	for _, job := range jobs {
		wg.Add(1)
		go func(job mutation) {
			defer wg.Done()
			if job.delete {
				if err := e.store.DeleteCard(ctx, job.card.ID, job.card.Column); err != nil {
					errCh <- fmt.Errorf("delete card %d: %w", job.card.ID, err)
				}
				return
			}
			if err := e.store.SaveCard(ctx, job.card); err != nil {
				errCh <- fmt.Errorf("save card %d: %w", job.card.ID, err)
			}
		}(job)
	}

	wg.Wait()
	close(errCh)

	return <-errCh
}
