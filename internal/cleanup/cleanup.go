// Package cleanup implements pruning of finished attempts from the local store.
// Attempts still in progress hold resumable drafts and are never pruned.
package cleanup

import (
	"fmt"
	"time"

	"github.com/interviewer-dev/interviewer/internal/store"
)

// Store is the subset of *store.Store pruning needs.
type Store interface {
	// FinishedAttempts returns completed and abandoned attempts, oldest first.
	FinishedAttempts() ([]store.Attempt, error)
	DeleteAttempt(id string) error
}

// PruneByAge removes finished attempts last updated more than maxAgeDays ago.
// If dryRun is true, nothing is deleted; the function only returns the
// attempts that would be removed. Returns the pruned attempts.
func PruneByAge(st Store, maxAgeDays int, dryRun bool) ([]store.Attempt, error) {
	attempts, err := st.FinishedAttempts()
	if err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	var old []store.Attempt
	for _, a := range attempts {
		if a.UpdatedAt.Before(cutoff) {
			old = append(old, a)
		}
	}

	return remove(st, old, dryRun)
}

// PruneKeepRecent removes all finished attempts except the most recent keep.
// If dryRun is true, nothing is deleted. Returns the pruned attempts.
func PruneKeepRecent(st Store, keep int, dryRun bool) ([]store.Attempt, error) {
	attempts, err := st.FinishedAttempts()
	if err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}

	if len(attempts) <= keep {
		return nil, nil
	}

	return remove(st, attempts[:len(attempts)-keep], dryRun)
}

func remove(st Store, attempts []store.Attempt, dryRun bool) ([]store.Attempt, error) {
	var pruned []store.Attempt
	for _, a := range attempts {
		if !dryRun {
			if err := st.DeleteAttempt(a.ID); err != nil {
				return pruned, fmt.Errorf("removing %s: %w", a.ID, err)
			}
		}
		pruned = append(pruned, a)
	}
	return pruned, nil
}
