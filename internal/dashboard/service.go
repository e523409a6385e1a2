// Package dashboard owns the session state of the weather board and
// orchestrates the batch and weekly fetches that keep it enriched.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/i474232898/weather-board/internal/ordering"
	"github.com/i474232898/weather-board/internal/selection"
	"github.com/i474232898/weather-board/internal/weather"
)

var (
	// ErrUnknownCity is returned when an id is not in the session or the dataset.
	ErrUnknownCity = errors.New("unknown city")
	// ErrUnknownCountry is returned for a country code missing from the dataset.
	ErrUnknownCountry = errors.New("unknown country")
)

// Service is the single state object behind the board. Mutations go through
// its methods; reads go through its selectors. Fetches run outside the lock
// and commit under it, guarded by generation counters.
type Service struct {
	gateway   weather.Gateway
	directory weather.Directory
	daily     weather.Cache[weather.City]
	weekly    weather.Cache[weather.WeeklySeries]

	log          zerolog.Logger
	rec          weather.Recorder
	concurrency  int
	fetchTimeout time.Duration

	mu        sync.Mutex
	sel       *selection.Reconciler
	sortState ordering.State
	countries []string
	errs      []weather.ErrorRecord
	loading   map[string]uint64
	batchGen  uint64
	inFlight  int

	weeklyGen    uint64
	weeklyOwner  string
	weeklySeries weather.WeeklySeries
	weeklyStatus weather.Status
	weeklyErr    string

	ctx    context.Context
	cancel context.CancelFunc
	bg     sync.WaitGroup
	closed bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.log = l.With().Str("component", "dashboard").Logger()
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r weather.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.rec = r
		}
	}
}

// WithConcurrency bounds the number of concurrent fetches in a batch.
// Zero or less means unbounded.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		s.concurrency = n
	}
}

// WithFetchTimeout bounds each gateway call. Zero means no extra bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.fetchTimeout = d
	}
}

// NewService creates a new Service.
func NewService(
	gateway weather.Gateway,
	directory weather.Directory,
	daily weather.Cache[weather.City],
	weekly weather.Cache[weather.WeeklySeries],
	opts ...Option,
) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		gateway:      gateway,
		directory:    directory,
		daily:        daily,
		weekly:       weekly,
		log:          zerolog.Nop(),
		rec:          nopRecorder{},
		sel:          selection.New(),
		sortState:    ordering.DefaultState(),
		loading:      make(map[string]uint64),
		weeklyStatus: weather.StatusIdle,
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChangeCountries replaces the chosen country groups. Displayed becomes the
// cities of codes, in order, merged with the pinned cities, and a batch
// cycle is started for it.
func (s *Service) ChangeCountries(codes []string) error {
	var cities []weather.City
	for _, code := range codes {
		list := s.directory.Cities(code)
		if list == nil {
			return fmt.Errorf("%w: %s", ErrUnknownCountry, code)
		}
		cities = append(cities, list...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.currentIDLocked()
	s.countries = slices.Clone(codes)
	s.sel.SetDisplayedFromCountries(cities)
	s.settleLocked(prev, true)
	return nil
}

// Pin keeps a city visible regardless of the chosen countries. A city that
// was not on the board yet is added and enriched by a new batch cycle.
func (s *Service) Pin(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.resolveLocked(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCity, id)
	}
	prev := s.currentIDLocked()
	changed := s.sel.Pin(c)
	s.settleLocked(prev, changed)
	return nil
}

// Unpin releases a pinned city. Unknown ids are a no-op.
func (s *Service) Unpin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.currentIDLocked()
	changed := s.sel.Unpin(id)
	s.settleLocked(prev, changed)
}

// TogglePin pins id, or unpins it when it is already pinned. It reports
// whether the city is pinned afterwards.
func (s *Service) TogglePin(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.currentIDLocked()
	if s.sel.IsPinned(id) {
		s.settleLocked(prev, s.sel.Unpin(id))
		return false, nil
	}

	c, ok := s.resolveLocked(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownCity, id)
	}
	s.settleLocked(prev, s.sel.Pin(c))
	return true, nil
}

// SelectCurrent focuses id for the weekly series, replacing any current city.
func (s *Service) SelectCurrent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.resolveLocked(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCity, id)
	}
	prev := s.currentIDLocked()
	s.sel.Select(c)
	s.settleCurrentLocked(prev)
	return nil
}

// DeselectCurrent clears the current city and its weekly series.
func (s *Service) DeselectCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.currentIDLocked()
	s.sel.Deselect()
	s.settleCurrentLocked(prev)
}

// ToggleCurrent selects id, or deselects it when it is already current.
// It reports whether a city is current afterwards.
func (s *Service) ToggleCurrent(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.resolveLocked(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownCity, id)
	}
	prev := s.currentIDLocked()
	set := s.sel.Toggle(c)
	s.settleCurrentLocked(prev)
	return set, nil
}

// Sort applies a sort request to displayed. A nil key re-applies the
// current order.
func (s *Service) Sort(key *ordering.Key) ordering.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.currentIDLocked()
	s.sortState = s.sortState.Next(key)
	s.sel.ReplaceDisplayed(ordering.Apply(s.sel.Displayed(), s.sortState))
	s.settleCurrentLocked(prev)
	return s.sortState
}

// Reset returns the session to its initial state and flushes both caches.
// Results of fetches still in flight are discarded on arrival.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batchGen++
	s.sel.Reset()
	s.sortState = ordering.DefaultState()
	s.countries = nil
	s.errs = nil
	clear(s.loading)
	s.daily.Flush()
	s.weekly.Flush()
	s.clearWeeklyLocked()
	s.log.Info().Msg("session reset")
}

// Wait blocks until all background batch and weekly work has finished.
func (s *Service) Wait() {
	s.bg.Wait()
}

// Close cancels background work and waits for it to return.
// Results still in flight are discarded so cancellation never surfaces as
// fetch errors.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	s.batchGen++
	s.weeklyGen++
	clear(s.loading)
	s.mu.Unlock()

	s.cancel()
	s.bg.Wait()
}

// resolveLocked finds id in the session first, so enriched copies are kept,
// and falls back to the reference dataset.
func (s *Service) resolveLocked(id string) (weather.City, bool) {
	if c, ok := s.sel.Find(id); ok {
		return c, true
	}
	if c, ok := s.sel.Current(); ok && c.ID == id {
		return c, true
	}
	if s.directory == nil {
		return weather.City{}, false
	}
	return s.directory.Lookup(id)
}

func (s *Service) currentIDLocked() string {
	if c, ok := s.sel.Current(); ok {
		return c.ID
	}
	return ""
}

// settleLocked reacts to a selection mutation. A displayed-set change
// invalidates in-flight batches and starts a new one; an emptied displayed
// set clears the weekly series.
func (s *Service) settleLocked(prevCurrent string, displayedChanged bool) {
	if displayedChanged {
		s.batchGen++
		s.launch(func(ctx context.Context) { s.RunBatch(ctx) })
		if len(s.sel.Displayed()) == 0 {
			s.clearWeeklyLocked()
		}
	}
	s.settleCurrentLocked(prevCurrent)
}

// settleCurrentLocked starts a weekly refresh when current moved to another
// city and clears the weekly series when current was cleared.
func (s *Service) settleCurrentLocked(prevCurrent string) {
	cur := s.currentIDLocked()
	switch {
	case cur == prevCurrent:
	case cur == "":
		s.clearWeeklyLocked()
	default:
		s.launch(s.RefreshWeekly)
	}
}

// launch runs fn in the background under the Service lifetime context.
// Callers may hold s.mu.
func (s *Service) launch(fn func(ctx context.Context)) {
	if s.closed {
		return
	}
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		fn(s.ctx)
	}()
}

// Countries returns the chosen country codes.
func (s *Service) Countries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.countries)
}

// Displayed returns the displayed cities in display order.
func (s *Service) Displayed() []weather.City {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Displayed()
}

// Selected returns the pinned cities in pin order.
func (s *Service) Selected() []weather.City {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Selected()
}

// Current returns the current city, if any.
func (s *Service) Current() (weather.City, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Current()
}

// BatchStatus is pending while any batch cycle is in flight.
func (s *Service) BatchStatus() weather.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batchStatusLocked()
}

func (s *Service) batchStatusLocked() weather.Status {
	if s.inFlight > 0 {
		return weather.StatusPending
	}
	return weather.StatusIdle
}

// Errors returns the error records of the last committed batch cycle.
func (s *Service) Errors() []weather.ErrorRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.errs)
}

// ErrorFor returns the error message recorded for id, if any.
func (s *Service) ErrorFor(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.errs {
		if e.ID == id {
			return e.Message, true
		}
	}
	return "", false
}

// IsLoading reports whether a fetch for id is outstanding.
func (s *Service) IsLoading(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.loading[id]
	return ok
}

// SortState returns the current sort column and direction.
func (s *Service) SortState() ordering.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortState
}

// Board is a consistent read of the whole session, taken under one lock.
type Board struct {
	Countries   []string              `json:"countries"`
	Displayed   []weather.City        `json:"displayed"`
	Selected    []weather.City        `json:"selected"`
	Current     *weather.City         `json:"current"`
	Loading     []string              `json:"loading"`
	Errors      []weather.ErrorRecord `json:"errors"`
	BatchStatus weather.Status        `json:"batchStatus"`
	Sort        ordering.State        `json:"sort"`
}

// Board returns a consistent copy of the session.
func (s *Service) Board() Board {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := Board{
		Countries:   slices.Clone(s.countries),
		Displayed:   s.sel.Displayed(),
		Selected:    s.sel.Selected(),
		Loading:     slices.Sorted(maps.Keys(s.loading)),
		Errors:      slices.Clone(s.errs),
		BatchStatus: s.batchStatusLocked(),
		Sort:        s.sortState,
	}
	if c, ok := s.sel.Current(); ok {
		b.Current = &c
	}
	return b
}

type nopRecorder struct{}

func (nopRecorder) CacheLookup(string, bool) {}
func (nopRecorder) Fetch(string, error) {}
func (nopRecorder) BatchDone(time.Duration, bool) {}
