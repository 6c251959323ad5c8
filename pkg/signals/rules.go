package signals

import (
	"fmt"
	"math"
)

// Rule selects the stop-condition predicate evaluated by the exit scanner.
type Rule int

const (
	// StopLoss exits when price falls below a threshold frozen at entry.
	StopLoss Rule = iota
	// TrailingStop exits when price falls below a threshold that follows
	// the running peak since entry.
	TrailingStop
)

func (r Rule) String() string {
	switch r {
	case StopLoss:
		return "stoploss"
	case TrailingStop:
		return "tstop"
	}
	return fmt.Sprintf("rule(%d)", int(r))
}

// exitPredicate is the per-(parameter, column) stop test. arm anchors a new
// episode at entry index t; breached is then called for every later index in
// increasing order.
type exitPredicate interface {
	arm(t int)
	breached(t int) bool
}

func newPredicate(rule Rule, price, stop []float64, relative bool) exitPredicate {
	if rule == TrailingStop {
		return &trailingStop{price: price, stop: stop, relative: relative}
	}
	return &fixedStop{price: price, stop: stop, relative: relative}
}

// fixedStop: price[t'] < stop[t] (absolute) or price[t'] < (1 - stop[t]) * price[t].
type fixedStop struct {
	price     []float64
	stop      []float64
	relative  bool
	threshold float64
}

func (f *fixedStop) arm(t int) {
	f.threshold = f.stop[t]
	if f.relative {
		f.threshold = (1 - f.stop[t]) * f.price[t]
	}
}

func (f *fixedStop) breached(t int) bool {
	return f.price[t] < f.threshold
}

// trailingStop carries the running peak since entry and the ratcheted stop
// level: the level only changes to stop[t'] when price makes a new peak at t'.
type trailingStop struct {
	price    []float64
	stop     []float64
	relative bool
	peak     float64
	level    float64
}

func (s *trailingStop) arm(t int) {
	s.peak = s.price[t]
	s.level = s.stop[t]
}

func (s *trailingStop) breached(t int) bool {
	p := s.price[t]
	if math.IsNaN(p) {
		return false
	}
	if math.IsNaN(s.peak) || p > s.peak {
		s.peak = p
		s.level = s.stop[t]
	}
	if s.relative {
		return p < (1-s.level)*s.peak
	}
	return p < s.level
}
