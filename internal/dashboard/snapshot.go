package dashboard

import (
	"slices"

	"github.com/i474232898/weather-board/internal/ordering"
	"github.com/i474232898/weather-board/internal/selection"
	"github.com/i474232898/weather-board/internal/weather"
)

// Snapshot is the session state in a form that survives a restart.
type Snapshot struct {
	Countries []string                                       `json:"countries"`
	Selection selection.State                                `json:"selection"`
	Sort      ordering.State                                 `json:"sort"`
	Errors    []weather.ErrorRecord                          `json:"errors"`
	Daily     map[string]weather.Entry[weather.City]         `json:"daily"`
	Weekly    map[string]weather.Entry[weather.WeeklySeries] `json:"weekly"`
}

// Snapshot copies the session and both caches.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Countries: slices.Clone(s.countries),
		Selection: s.sel.State(),
		Sort:      s.sortState,
		Errors:    slices.Clone(s.errs),
		Daily:     s.daily.Items(),
		Weekly:    s.weekly.Items(),
	}
}

// Restore replaces the session with snap. In-flight work is discarded and
// the weekly series of the restored current city is refreshed.
func (s *Service) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batchGen++
	s.countries = slices.Clone(snap.Countries)
	s.sel.Restore(snap.Selection)
	s.sel.ReconcileCurrent()
	s.sortState = snap.Sort
	if _, err := ordering.ParseKey(string(s.sortState.SortBy)); err != nil {
		s.sortState = ordering.DefaultState()
	}
	s.errs = slices.Clone(snap.Errors)
	clear(s.loading)

	s.daily.Flush()
	s.daily.Restore(snap.Daily)
	s.weekly.Flush()
	s.weekly.Restore(snap.Weekly)

	s.clearWeeklyLocked()
	s.settleCurrentLocked("")
	s.log.Info().
		Int("displayed", len(snap.Selection.Displayed)).
		Int("cached", len(snap.Daily)).
		Msg("session restored")
}
