package dashboard

import (
	"context"
	"fmt"
	"slices"

	"github.com/i474232898/weather-board/internal/weather"
)

// Weekly is the read model of the weekly series panel.
type Weekly struct {
	CityID string               `json:"cityId,omitempty"`
	Series weather.WeeklySeries `json:"series"`
	Status weather.Status       `json:"status"`
	Error  string               `json:"error,omitempty"`
}

// Weekly returns the active weekly series and its status.
func (s *Service) Weekly() Weekly {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Weekly{
		CityID: s.weeklyOwner,
		Series: slices.Clone(s.weeklySeries),
		Status: s.weeklyStatus,
		Error:  s.weeklyErr,
	}
}

// RefreshWeekly publishes the 7-day series of the current city, from the
// cache when fresh and from the gateway otherwise. A result that arrives
// after current moved on, or after a newer refresh started, is dropped.
func (s *Service) RefreshWeekly(ctx context.Context) {
	s.mu.Lock()
	cur, ok := s.sel.Current()
	if !ok {
		s.clearWeeklyLocked()
		s.mu.Unlock()
		return
	}

	s.weeklyGen++
	gen := s.weeklyGen

	if e, hit := s.weekly.Get(cur.ID); hit && s.weekly.IsFresh(cur.ID) {
		s.rec.CacheLookup(kindWeekly, true)
		s.weeklyOwner = cur.ID
		s.weeklySeries = slices.Clone(e.Value)
		s.weeklyStatus = weather.StatusIdle
		s.weeklyErr = ""
		s.mu.Unlock()
		return
	}
	s.rec.CacheLookup(kindWeekly, false)

	if s.weeklyOwner != cur.ID {
		s.weeklyOwner = cur.ID
		s.weeklySeries = nil
	}
	s.weeklyStatus = weather.StatusPending
	s.weeklyErr = ""
	s.mu.Unlock()

	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	series, err := s.fetchSeries(ctx, cur)
	s.rec.Fetch(kindWeekly, err)
	if err == nil {
		s.weekly.Put(cur.ID, series)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.weeklyGen || s.currentIDLocked() != cur.ID {
		s.log.Debug().Str("city", cur.ID).Msg("discarding stale weekly series")
		return
	}

	s.weeklyStatus = weather.StatusIdle
	if err != nil {
		s.log.Warn().Err(err).Str("city", cur.ID).Msg("weekly fetch failed")
		s.weeklyErr = fmt.Sprintf("loading weekly forecast for %s: %v", cur.Name, err)
		return
	}
	s.weeklySeries = series
}

func (s *Service) fetchSeries(ctx context.Context, c weather.City) (weather.WeeklySeries, error) {
	f, err := s.gateway.FetchWeekly(ctx, c.Latitude, c.Longitude)
	if err != nil {
		return nil, err
	}
	return weather.BuildWeeklySeries(f)
}

// clearWeeklyLocked drops the active series and error; refreshes still in
// flight are ignored on arrival.
func (s *Service) clearWeeklyLocked() {
	s.weeklyGen++
	s.weeklyOwner = ""
	s.weeklySeries = nil
	s.weeklyStatus = weather.StatusIdle
	s.weeklyErr = ""
}
