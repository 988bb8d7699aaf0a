// Package count holds the working state for one counting pass over one zone
// within one session, and commits it as a batch of entries.
package count

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkalmus/zonecount/internal/domain"
	"github.com/dkalmus/zonecount/internal/variance"
)

// entryWriter is the subset of store.EntryStore that Engine requires.
type entryWriter interface {
	CreateBatch(ctx context.Context, entries []*domain.CountEntry) error
	LatestQuantity(ctx context.Context, zoneID, itemID int64) (*float64, error)
}

// Change describes one working-state mutation. Observers registered with
// Subscribe receive a Change after every command; the engine itself never
// pushes state into the UI.
type Change struct {
	ItemID   int64
	Quantity *float64 // nil when the item has no recorded quantity
	Skipped  bool
}

// Engine accumulates quantities, skips, and notes for the items assigned to
// one zone until Submit commits them. It is driven by a single caller and is
// not safe for concurrent use.
type Engine struct {
	entries entryWriter
	logger  *slog.Logger
	now     func() time.Time

	sessionID   int64
	zoneID      int64
	assignments []*domain.ZoneAssignment
	assigned    map[int64]*domain.ZoneAssignment

	quantities map[int64]float64
	skipped    map[int64]struct{}
	notes      map[int64]string
	startedAt  time.Time

	observers []func(Change)
}

func NewEngine(entries entryWriter, logger *slog.Logger) *Engine {
	return &Engine{
		entries: entries,
		logger:  logger,
		now:     time.Now,
	}
}

// Configure points the engine at a (session, zone) pair and its assignments,
// discarding any previous working state.
func (e *Engine) Configure(sessionID, zoneID int64, assignments []*domain.ZoneAssignment) {
	e.sessionID = sessionID
	e.zoneID = zoneID
	e.assignments = assignments
	e.assigned = make(map[int64]*domain.ZoneAssignment, len(assignments))
	for _, a := range assignments {
		e.assigned[a.ItemID] = a
	}
	e.reset()
}

func (e *Engine) reset() {
	e.quantities = make(map[int64]float64)
	e.skipped = make(map[int64]struct{})
	e.notes = make(map[int64]string)
	e.startedAt = e.now()
}

// Subscribe registers a callback invoked after every working-state change.
func (e *Engine) Subscribe(fn func(Change)) {
	e.observers = append(e.observers, fn)
}

func (e *Engine) notify(itemID int64) {
	if len(e.observers) == 0 {
		return
	}
	change := Change{ItemID: itemID}
	if q, ok := e.quantities[itemID]; ok {
		change.Quantity = &q
	}
	_, change.Skipped = e.skipped[itemID]
	for _, fn := range e.observers {
		fn(change)
	}
}

// SetCount records a quantity for an assigned item, clamped at zero. A
// recorded quantity and a skip are mutually exclusive, so any skip flag is
// cleared. Unassigned item ids are ignored.
func (e *Engine) SetCount(itemID int64, value float64) {
	if _, ok := e.assigned[itemID]; !ok {
		return
	}
	if value < 0 {
		value = 0
	}
	e.quantities[itemID] = value
	delete(e.skipped, itemID)
	e.notify(itemID)
}

// Increment adds one to the item's current quantity (default 0).
func (e *Engine) Increment(itemID int64) {
	e.SetCount(itemID, e.quantities[itemID]+1)
}

// Decrement subtracts one from the item's current quantity, floored at zero.
func (e *Engine) Decrement(itemID int64) {
	e.SetCount(itemID, e.quantities[itemID]-1)
}

// Skip marks an assigned item as skipped and clears any recorded quantity.
func (e *Engine) Skip(itemID int64) {
	if _, ok := e.assigned[itemID]; !ok {
		return
	}
	e.skipped[itemID] = struct{}{}
	delete(e.quantities, itemID)
	e.notify(itemID)
}

// SetNote attaches free text to the item; an empty string clears it.
func (e *Engine) SetNote(itemID int64, text string) {
	if _, ok := e.assigned[itemID]; !ok {
		return
	}
	if text == "" {
		delete(e.notes, itemID)
	} else {
		e.notes[itemID] = text
	}
}

// Note returns the item's note, if any.
func (e *Engine) Note(itemID int64) (string, bool) {
	text, ok := e.notes[itemID]
	return text, ok
}

// Quantity returns the recorded quantity for the item, if any.
func (e *Engine) Quantity(itemID int64) (float64, bool) {
	q, ok := e.quantities[itemID]
	return q, ok
}

// IsSkipped reports whether the item is marked skipped.
func (e *Engine) IsSkipped(itemID int64) bool {
	_, ok := e.skipped[itemID]
	return ok
}

// StartedAt is when this counting pass began.
func (e *Engine) StartedAt() time.Time { return e.startedAt }

// LastCount returns the most recent committed quantity for the item in this
// zone, or nil when it has never been counted there. It is a hint for the
// operator and is never auto-filled into the working state.
func (e *Engine) LastCount(ctx context.Context, itemID int64) (*float64, error) {
	if e.zoneID == 0 {
		return nil, ErrMissingContext
	}
	return e.entries.LatestQuantity(ctx, e.zoneID, itemID)
}

// Variance classifies the item's current working quantity against its
// assignment's par level, for live feedback while counting. Items with no
// recorded quantity classify as unknown.
func (e *Engine) Variance(itemID int64) variance.Status {
	a, ok := e.assigned[itemID]
	if !ok {
		return variance.Unknown
	}
	q, ok := e.quantities[itemID]
	if !ok {
		return variance.Unknown
	}
	return variance.Classify(q, a.ParLevel)
}

// Progress is the fraction of assigned items with either a recorded quantity
// or a skip. An engine with no assignments reports 1.
func (e *Engine) Progress() float64 {
	if len(e.assignments) == 0 {
		return 1
	}
	touched := 0
	for _, a := range e.assignments {
		if _, ok := e.quantities[a.ItemID]; ok {
			touched++
			continue
		}
		if _, ok := e.skipped[a.ItemID]; ok {
			touched++
		}
	}
	return float64(touched) / float64(len(e.assignments))
}

// IsComplete reports whether every assigned item has been counted or skipped.
func (e *Engine) IsComplete() bool { return e.Progress() == 1 }

// Submit commits one entry per touched item, in shelf order, as a single
// all-or-nothing batch. Untouched items are omitted; submitting with nothing
// touched writes nothing and is not an error. On failure the working state is
// left intact so the caller can retry; on success it is cleared for the next
// pass.
func (e *Engine) Submit(ctx context.Context) ([]*domain.CountEntry, error) {
	if e.sessionID == 0 || e.zoneID == 0 {
		return nil, ErrMissingContext
	}

	recordedAt := e.now()
	var entries []*domain.CountEntry
	for _, a := range e.assignments {
		quantity, counted := e.quantities[a.ItemID]
		_, skipped := e.skipped[a.ItemID]
		if !counted && !skipped {
			continue
		}
		entries = append(entries, &domain.CountEntry{
			SessionID:  e.sessionID,
			ZoneID:     e.zoneID,
			ItemID:     a.ItemID,
			Quantity:   quantity, // zero when skipped without a value
			Skipped:    skipped,
			Note:       e.notes[a.ItemID],
			RecordedAt: recordedAt,
		})
	}

	if len(entries) == 0 {
		return nil, nil
	}

	if err := e.entries.CreateBatch(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to commit zone count: %w", err)
	}

	e.logger.Info("zone count committed",
		"session_id", e.sessionID,
		"zone_id", e.zoneID,
		"entries", len(entries),
		"elapsed_ms", e.now().Sub(e.startedAt).Milliseconds(),
	)
	e.reset()
	return entries, nil
}
