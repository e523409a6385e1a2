package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-board/internal/ordering"
	"github.com/i474232898/weather-board/internal/weather"
)

// Kinds reported to the Recorder.
const (
	kindDaily  = "daily"
	kindWeekly = "weekly"
)

// BatchResult summarizes one batch cycle.
type BatchResult struct {
	Cycle      string                `json:"cycle"`
	Generation uint64                `json:"generation"`
	CacheHits  int                   `json:"cacheHits"`
	Fetched    int                   `json:"fetched"`
	Errors     []weather.ErrorRecord `json:"errors"`
	// Committed is false when a newer cycle or a reset superseded this one.
	Committed bool `json:"committed"`
}

// outcome is the tagged result of one fan-out task: either an enriched city
// or a fallback city plus an error record.
type outcome struct {
	city    weather.City
	hit     bool
	fetched bool
	failure *weather.ErrorRecord
}

// RunBatch enriches every displayed city, from the cache when fresh and from
// the gateway otherwise. Per-city failures never abort the others. The
// outcome is committed in one step unless a newer cycle started meanwhile.
func (s *Service) RunBatch(ctx context.Context) BatchResult {
	start := time.Now()

	s.mu.Lock()
	s.batchGen++
	gen := s.batchGen
	input := s.sel.Displayed()
	s.errs = nil
	s.inFlight++
	s.mu.Unlock()

	res := BatchResult{Cycle: uuid.NewString(), Generation: gen}
	log := s.log.With().Str("cycle", res.Cycle).Uint64("generation", gen).Logger()
	log.Debug().Int("cities", len(input)).Msg("batch started")

	results := make([]outcome, len(input))
	if len(input) > 0 {
		var g errgroup.Group
		if s.concurrency > 0 {
			g.SetLimit(s.concurrency)
		}
		for i, c := range input {
			g.Go(func() error {
				results[i] = s.enrich(ctx, gen, c)
				return nil
			})
		}
		_ = g.Wait()
	}

	list := make([]weather.City, 0, len(results))
	var errs []weather.ErrorRecord
	for _, r := range results {
		list = append(list, r.city)
		switch {
		case r.failure != nil:
			errs = append(errs, *r.failure)
		case r.hit:
			res.CacheHits++
		case r.fetched:
			res.Fetched++
		}
	}
	res.Errors = errs

	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight--
	if gen != s.batchGen {
		log.Debug().Uint64("latest", s.batchGen).Msg("discarding stale batch")
		s.rec.BatchDone(time.Since(start), false)
		return res
	}

	prev := s.currentIDLocked()
	s.errs = errs
	for _, c := range list {
		if c.Weather != nil {
			s.sel.Refresh(c)
		}
	}
	s.sel.ReplaceDisplayed(ordering.Apply(list, s.sortState))
	if len(list) == 0 {
		s.clearWeeklyLocked()
	}
	s.settleCurrentLocked(prev)
	res.Committed = true

	s.rec.BatchDone(time.Since(start), true)
	log.Info().
		Int("cities", len(list)).
		Int("cache_hits", res.CacheHits).
		Int("fetched", res.Fetched).
		Int("failed", len(errs)).
		Dur("took", time.Since(start)).
		Msg("batch committed")
	return res
}

// enrich resolves one city. It never fails: gateway errors turn into an
// error record and the prior form of the city.
func (s *Service) enrich(ctx context.Context, gen uint64, c weather.City) outcome {
	cached, ok := s.daily.Get(c.ID)
	if ok && s.daily.IsFresh(c.ID) {
		s.rec.CacheLookup(kindDaily, true)
		return outcome{city: cached.Value, hit: true}
	}
	s.rec.CacheLookup(kindDaily, false)

	s.markLoading(gen, c.ID)
	defer s.unmarkLoading(gen, c.ID)

	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	summary, err := s.fetchSummary(ctx, c)
	s.rec.Fetch(kindDaily, err)
	if err != nil {
		s.log.Warn().Err(err).Str("city", c.ID).Str("name", c.Name).Msg("weather fetch failed")

		fallback := c
		if ok {
			fallback = cached.Value
		}
		return outcome{
			city: fallback,
			failure: &weather.ErrorRecord{
				ID:      c.ID,
				Message: fmt.Sprintf("loading weather for %s: %v", c.Name, err),
			},
		}
	}

	enriched := c.WithWeather(summary)
	s.daily.Put(c.ID, enriched)
	return outcome{city: enriched, fetched: true}
}

func (s *Service) fetchSummary(ctx context.Context, c weather.City) (weather.Summary, error) {
	f, err := s.gateway.FetchDaily(ctx, c.Latitude, c.Longitude)
	if err != nil {
		return weather.Summary{}, err
	}
	return weather.Summarize(f)
}

func (s *Service) markLoading(gen uint64, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.batchGen {
		s.loading[id] = gen
	}
}

func (s *Service) unmarkLoading(gen uint64, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading[id] == gen {
		delete(s.loading, id)
	}
}
