// Package dashboard owns the filter state of the single dashboard session and
// runs the filter -> aggregate pipeline whenever the selection changes.
package dashboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/labstack/gommon/log"

	"salesdash/internal/engine"
	"salesdash/internal/models"
)

const (
	NotifyTitle      = "Error!!"
	NoResultsMessage = "No results found. Check the filters."

	// LevelError marks a rejected selection; LevelWarning a valid selection
	// that matched no rows.
	LevelError   = "error"
	LevelWarning = "warning"
)

var ErrNoData = errors.New("dataset has no rows")

type Options struct {
	HourOrder engine.HourOrder
}

// Snapshot is one published state: the selection, its filtered view and the
// aggregates computed from it.
type Snapshot struct {
	Selection    engine.Selection
	View         *engine.View
	Result       models.AggregateResult
	Notification *models.Notification
}

// Data converts the snapshot into what the presentation layer renders.
func (s Snapshot) Data() models.DashboardData {
	return models.DashboardData{
		Selection:    s.Selection.Options(),
		Result:       s.Result,
		Cards:        CardsFor(s.Result.Summary),
		Notification: s.Notification,
	}
}

func noResults(level string) *models.Notification {
	return &models.Notification{Level: level, Title: NotifyTitle, Message: NoResultsMessage}
}

// Session holds the read-only table and the current selection. HTTP handlers
// call it concurrently, so state is guarded; each pipeline run is synchronous.
type Session struct {
	mu        sync.RWMutex
	store     *engine.ColumnStore
	opts      Options
	current   Snapshot
	listeners []func(Snapshot)
}

// NewSession starts a session with every city, customer type and gender
// selected.
func NewSession(store *engine.ColumnStore, opts Options) (*Session, error) {
	if store == nil || store.Len() == 0 {
		return nil, ErrNoData
	}
	s := &Session{store: store, opts: opts}
	snap, err := s.compute(store, engine.SelectAll(store))
	if err != nil {
		return nil, err
	}
	s.current = snap
	return s, nil
}

func (s *Session) compute(store *engine.ColumnStore, sel engine.Selection) (Snapshot, error) {
	view, err := engine.ApplyFilter(store, sel)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Selection: sel,
		View:      view,
		Result:    engine.Aggregate(view, engine.AggregateOptions{HourOrder: s.opts.HourOrder}),
	}
	if view.Len() == 0 {
		snap.Notification = noResults(LevelWarning)
	}
	return snap, nil
}

// Apply validates the selection, recomputes and publishes the result.
//
// On ErrEmptySelection nothing is recomputed: the previous snapshot stays
// current and is returned with the notification attached.
func (s *Session) Apply(sel engine.Selection) (Snapshot, error) {
	s.mu.Lock()
	snap, err := s.compute(s.store, sel)
	if err != nil {
		prev := s.current
		s.mu.Unlock()
		if errors.Is(err, engine.ErrEmptySelection) {
			log.Debugf("filter rejected: %v", err)
			prev.Notification = noResults(LevelError)
		}
		return prev, err
	}
	s.current = snap
	listeners := append([]func(Snapshot){}, s.listeners...)
	s.mu.Unlock()

	log.Debugf("filter applied: %d rows, total %.2f", snap.View.Len(), snap.Result.Summary.TotalSales)
	for _, fn := range listeners {
		fn(snap)
	}
	return snap, nil
}

// Replace swaps in a reloaded table and re-applies the current selection,
// keeping only values that still exist. A dimension left empty by that falls
// back to all of its values.
func (s *Session) Replace(store *engine.ColumnStore) (Snapshot, error) {
	if store == nil || store.Len() == 0 {
		return s.Current(), ErrNoData
	}

	s.mu.Lock()
	all := engine.SelectAll(store)
	prev := s.current.Selection
	sel := engine.Selection{
		Cities:        clip(prev.Cities, all.Cities),
		CustomerTypes: clip(prev.CustomerTypes, all.CustomerTypes),
		Genders:       clip(prev.Genders, all.Genders),
	}
	snap, err := s.compute(store, sel)
	if err != nil {
		s.mu.Unlock()
		return s.Current(), fmt.Errorf("re-applying selection: %w", err)
	}
	s.store = store
	s.current = snap
	listeners := append([]func(Snapshot){}, s.listeners...)
	s.mu.Unlock()

	log.Infof("dataset replaced: %d rows", store.Len())
	for _, fn := range listeners {
		fn(snap)
	}
	return snap, nil
}

func clip(selected, available []string) []string {
	ok := make(map[string]struct{}, len(available))
	for _, v := range available {
		ok[v] = struct{}{}
	}
	out := make([]string, 0, len(selected))
	for _, v := range selected {
		if _, found := ok[v]; found {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return available
	}
	return out
}

// Current returns the last published snapshot.
func (s *Session) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Options lists the selectable values of every dimension.
func (s *Session) Options() models.FilterOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Options()
}

// Subscribe registers fn to receive every published snapshot.
func (s *Session) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
