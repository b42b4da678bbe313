package internal

import (
	"context"
	"errors"
	"fmt"
)

// Freshness classifies an entity's current description.
type Freshness string

const (
	Fresh   Freshness = "fresh"
	Stale   Freshness = "stale"
	Unknown Freshness = "unknown"
)

// DefaultHistoryLimit bounds fingerprint history per identity. Eviction is
// FIFO: history exists only for revert recognition, not popularity.
const DefaultHistoryLimit = 10

// StaleEntry is one entity needing attention in a freshness report. An
// empty StoredFingerprint means no description was ever generated.
type StaleEntry struct {
	Scope              Scope  `json:"scope"`
	Name               string `json:"name"`
	Path               string `json:"path"`
	CurrentFingerprint string `json:"current_fingerprint"`
	StoredFingerprint  string `json:"stored_fingerprint,omitempty"`
}

// Report aggregates freshness over a batch of entities. StaleCount covers
// both explicitly stale and never-seen entities; the entries distinguish
// them by StoredFingerprint.
type Report struct {
	Total        int          `json:"total"`
	FreshCount   int          `json:"fresh"`
	StaleCount   int          `json:"stale"`
	StaleEntries []StaleEntry `json:"stale_entries,omitempty"`
}

func (r Report) HasStale() bool {
	return r.StaleCount > 0
}

// Tracker is the decision layer above the HashIndex.
type Tracker struct {
	index        *HashIndex
	historyLimit int
}

func NewTracker(index *HashIndex, historyLimit int) *Tracker {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Tracker{index: index, historyLimit: historyLimit}
}

func (t *Tracker) Index() *HashIndex {
	return t.index
}

// Check classifies a single entity. The returned record is the one backing
// the classification: the current fingerprint's record for fresh/stale, the
// reused record on a detected revert, nil for unknown.
func (t *Tracker) Check(ctx context.Context, e Entity) (Freshness, *Record, error) {
	rec, err := t.index.Get(ctx, e.Fingerprint)
	if err == nil {
		if rec.Stale {
			return Stale, rec, nil
		}
		return Fresh, rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", nil, err
	}

	if rec := t.findRevert(ctx, e); rec != nil {
		return Fresh, rec, nil
	}
	return Unknown, nil, nil
}

// findRevert looks for the entity's current fingerprint in the history of
// the record its identity currently points at. History is most recent
// first, so the first match is the most recently superseded fingerprint
// (the tie-break when the normalizer collapsed distinct raw sources). A
// stale candidate record is never reused. Reverts are purely an
// optimization: a miss only costs a redundant generation call.
func (t *Tracker) findRevert(ctx context.Context, e Entity) *Record {
	current, err := t.index.CurrentFingerprint(ctx, e.Identity())
	if err != nil {
		return nil
	}

	rec, err := t.index.Get(ctx, current)
	if err != nil || rec.Stale {
		return nil
	}

	for _, fp := range rec.History {
		if fp == e.Fingerprint {
			return rec
		}
	}
	return nil
}

// CheckBatch classifies entities in order, stopping between entities if the
// context is cancelled. Progress already made remains valid.
func (t *Tracker) CheckBatch(ctx context.Context, entities []Entity) (Report, error) {
	report := Report{Total: len(entities)}

	for _, e := range entities {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		freshness, rec, err := t.Check(ctx, e)
		if err != nil {
			return report, fmt.Errorf("check %s: %w", e.QualifiedName(), err)
		}

		switch freshness {
		case Fresh:
			report.FreshCount++
		default:
			entry := StaleEntry{
				Scope:              e.Scope,
				Name:               e.QualifiedName(),
				Path:               e.Location.Path,
				CurrentFingerprint: e.Fingerprint,
			}
			if rec != nil {
				entry.StoredFingerprint = rec.Fingerprint
			}
			report.StaleCount++
			report.StaleEntries = append(report.StaleEntries, entry)
		}
	}
	return report, nil
}

// RecordGenerated commits a freshly generated description. The identity's
// previous fingerprint, if different, moves onto the new record's history,
// capped FIFO. The index may have changed during an arbitrarily long
// generation call; an explicit invalidation that landed in the interim is
// clobbered by this commit; callers that care re-check freshness first.
func (t *Tracker) RecordGenerated(ctx context.Context, e Entity, description string) error {
	identity := e.Identity()

	var history []string
	prev, err := t.index.CurrentFingerprint(ctx, identity)
	switch {
	case err != nil && !errors.Is(err, ErrNotFound):
		return err
	case err == nil && prev == e.Fingerprint:
		// Content unchanged since last recording; keep its history.
		if rec, err := t.index.Get(ctx, prev); err == nil {
			history = rec.History
		}
	case err == nil:
		history = append(history, prev)
		if rec, err := t.index.Get(ctx, prev); err == nil {
			history = append(history, rec.History...)
		}
	}

	if len(history) > t.historyLimit {
		history = history[:t.historyLimit]
	}

	if err := t.index.Set(ctx, e.Fingerprint, description, false, history); err != nil {
		return err
	}
	return t.index.SetCurrentFingerprint(ctx, identity, e.Fingerprint)
}

// Invalidate flags a fingerprint's record stale, forcing regeneration.
func (t *Tracker) Invalidate(ctx context.Context, fingerprint string) error {
	return t.index.MarkStale(ctx, fingerprint)
}
