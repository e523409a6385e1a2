// Package selection keeps the chosen, pinned and displayed city sets of a
// session consistent with a single "current" pointer.
package selection

import (
	"slices"

	"github.com/i474232898/weather-board/internal/weather"
)

// Reconciler owns the selection state. It is not safe for concurrent use;
// the dashboard.Service serializes access to it.
//
// Invariant: current is nil only when both displayed and selected are empty,
// unless it was explicitly deselected.
type Reconciler struct {
	chosen    []weather.City
	selected  []weather.City
	displayed []weather.City
	current   *weather.City
}

// New returns an empty Reconciler.
func New() *Reconciler {
	return &Reconciler{}
}

// SetDisplayedFromCountries recomputes displayed as the freshly chosen cities
// that are not pinned, in input order, followed by the pinned cities in pin
// order. On id collision the pinned copy wins.
func (r *Reconciler) SetDisplayedFromCountries(cities []weather.City) {
	r.chosen = slices.Clone(cities)
	r.rebuild()
	r.ReconcileCurrent()
}

func (r *Reconciler) rebuild() {
	pinned := make(map[string]struct{}, len(r.selected))
	for _, c := range r.selected {
		pinned[c.ID] = struct{}{}
	}

	displayed := make([]weather.City, 0, len(r.chosen)+len(r.selected))
	seen := make(map[string]struct{}, len(r.chosen))
	for _, c := range r.chosen {
		if _, ok := pinned[c.ID]; ok {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		displayed = append(displayed, c)
	}
	displayed = append(displayed, r.selected...)
	r.displayed = displayed
}

// Pin adds c to selected and, when it is not shown yet, appends it to
// displayed so pinned cities are always visible. Pinning an already pinned
// id leaves selected as is. It reports whether displayed changed.
func (r *Reconciler) Pin(c weather.City) bool {
	if indexOf(r.selected, c.ID) < 0 {
		r.selected = append(r.selected, c)
	}

	changed := false
	if indexOf(r.displayed, c.ID) < 0 {
		r.displayed = append(slices.Clone(r.displayed), c)
		changed = true
	}
	r.ReconcileCurrent()
	return changed
}

// Unpin removes id from selected. The city is also dropped from displayed
// unless it still belongs to a chosen country group. It reports whether
// displayed changed.
func (r *Reconciler) Unpin(id string) bool {
	i := indexOf(r.selected, id)
	if i < 0 {
		return false
	}
	r.selected = slices.Delete(r.selected, i, i+1)

	changed := false
	if indexOf(r.chosen, id) < 0 {
		if j := indexOf(r.displayed, id); j >= 0 {
			r.displayed = slices.Delete(slices.Clone(r.displayed), j, j+1)
			changed = true
		}
	}
	r.ReconcileCurrent()
	return changed
}

// IsPinned reports whether id is in selected.
func (r *Reconciler) IsPinned(id string) bool {
	return indexOf(r.selected, id) >= 0
}

// Select makes c current regardless of its membership.
func (r *Reconciler) Select(c weather.City) {
	r.current = &c
}

// Deselect clears current.
func (r *Reconciler) Deselect() {
	r.current = nil
}

// Toggle selects c, or deselects it when it is already current.
// It reports whether current is set afterwards.
func (r *Reconciler) Toggle(c weather.City) bool {
	if r.current != nil && r.current.ID == c.ID {
		r.Deselect()
		return false
	}
	r.Select(c)
	return true
}

// ReconcileCurrent keeps current when it is displayed and otherwise falls
// back to the first displayed city, then the first pinned city, then nil.
func (r *Reconciler) ReconcileCurrent() {
	if r.current != nil {
		if i := indexOf(r.displayed, r.current.ID); i >= 0 {
			return
		}
	}
	switch {
	case len(r.displayed) > 0:
		c := r.displayed[0]
		r.current = &c
	case len(r.selected) > 0:
		c := r.selected[0]
		r.current = &c
	default:
		r.current = nil
	}
}

// ReplaceDisplayed swaps displayed for list in one step.
func (r *Reconciler) ReplaceDisplayed(list []weather.City) {
	r.displayed = slices.Clone(list)
	r.ReconcileCurrent()
}

// Refresh propagates an updated copy of c into selected and current by id.
func (r *Reconciler) Refresh(c weather.City) {
	if i := indexOf(r.selected, c.ID); i >= 0 {
		r.selected[i] = c
	}
	if r.current != nil && r.current.ID == c.ID {
		cp := c
		r.current = &cp
	}
}

// Find returns the displayed or pinned copy of id.
func (r *Reconciler) Find(id string) (weather.City, bool) {
	if i := indexOf(r.displayed, id); i >= 0 {
		return r.displayed[i], true
	}
	if i := indexOf(r.selected, id); i >= 0 {
		return r.selected[i], true
	}
	return weather.City{}, false
}

// Reset clears every set and the current pointer.
func (r *Reconciler) Reset() {
	*r = Reconciler{}
}

// Displayed returns a copy of the displayed sequence.
func (r *Reconciler) Displayed() []weather.City {
	return slices.Clone(r.displayed)
}

// Selected returns a copy of the pinned sequence.
func (r *Reconciler) Selected() []weather.City {
	return slices.Clone(r.selected)
}

// Chosen returns a copy of the last country-chosen cities.
func (r *Reconciler) Chosen() []weather.City {
	return slices.Clone(r.chosen)
}

// Current returns the current city, if any.
func (r *Reconciler) Current() (weather.City, bool) {
	if r.current == nil {
		return weather.City{}, false
	}
	return *r.current, true
}

// State is a plain copy of the reconciler sets, used for snapshots.
type State struct {
	Chosen    []weather.City `json:"chosen"`
	Selected  []weather.City `json:"selected"`
	Displayed []weather.City `json:"displayed"`
	Current   *weather.City  `json:"current,omitempty"`
}

// State returns a copy of the sets.
func (r *Reconciler) State() State {
	s := State{
		Chosen:    r.Chosen(),
		Selected:  r.Selected(),
		Displayed: r.Displayed(),
	}
	if c, ok := r.Current(); ok {
		s.Current = &c
	}
	return s
}

// Restore replaces the sets with s verbatim.
func (r *Reconciler) Restore(s State) {
	r.chosen = slices.Clone(s.Chosen)
	r.selected = slices.Clone(s.Selected)
	r.displayed = slices.Clone(s.Displayed)
	r.current = nil
	if s.Current != nil {
		c := *s.Current
		r.current = &c
	}
}

func indexOf(list []weather.City, id string) int {
	return slices.IndexFunc(list, func(c weather.City) bool { return c.ID == id })
}
