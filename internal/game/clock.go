package game

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrTimeFormat is returned by ParseTimeFormat for unreadable input.
var ErrTimeFormat = errors.New("bad time format")

// TimeKind selects how clocks are charged.
type TimeKind uint8

const (
	KindUntimed TimeKind = iota
	// KindFixed gives every move the same budget; unused time is not carried over.
	KindFixed
	// KindIncrement starts from an initial budget and adds a bonus after every move.
	KindIncrement
)

// TimeFormat is the time control shared by every player of a game.
type TimeFormat struct {
	Kind      TimeKind
	Initial   time.Duration // per-move budget for KindFixed
	Increment time.Duration
	// Delay is granted before the clock starts ticking on each move.
	Delay time.Duration
}

// Unlimited returns an untimed format.
func Unlimited() TimeFormat { return TimeFormat{} }

// FixedPerMove gives each move the budget per.
func FixedPerMove(per time.Duration) TimeFormat {
	return TimeFormat{Kind: KindFixed, Initial: per}
}

// Increment is the usual Fischer control.
func Increment(initial, increment time.Duration) TimeFormat {
	return TimeFormat{Kind: KindIncrement, Initial: initial, Increment: increment}
}

// WithDelay returns f with a per-move delay.
func (f TimeFormat) WithDelay(d time.Duration) TimeFormat {
	f.Delay = d
	return f
}

// Timed reports whether moves can flag.
func (f TimeFormat) Timed() bool { return f.Kind != KindUntimed }

func (f TimeFormat) String() string {
	var s string
	switch f.Kind {
	case KindFixed:
		s = fmt.Sprintf("%s/move", f.Initial)
	case KindIncrement:
		s = fmt.Sprintf("%s+%s", f.Initial, f.Increment)
	default:
		return "untimed"
	}
	if f.Delay > 0 {
		s += fmt.Sprintf(" d%s", f.Delay)
	}
	return s
}

// ParseTimeFormat reads the output of String: "untimed", "30s/move" or
// "5m+2s", each optionally followed by " d<delay>".
func ParseTimeFormat(s string) (TimeFormat, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "untimed" {
		return Unlimited(), nil
	}
	var delay time.Duration
	if head, d, ok := strings.Cut(s, " d"); ok {
		v, err := parseDuration(d)
		if err != nil {
			return TimeFormat{}, err
		}
		s, delay = strings.TrimSpace(head), v
	}
	var f TimeFormat
	if per, ok := strings.CutSuffix(s, "/move"); ok {
		v, err := parseDuration(per)
		if err != nil {
			return TimeFormat{}, err
		}
		f = FixedPerMove(v)
	} else if initial, inc, ok := strings.Cut(s, "+"); ok {
		a, err := parseDuration(initial)
		if err != nil {
			return TimeFormat{}, err
		}
		b, err := parseDuration(inc)
		if err != nil {
			return TimeFormat{}, err
		}
		f = Increment(a, b)
	} else {
		return TimeFormat{}, fmt.Errorf("%w: %q", ErrTimeFormat, s)
	}
	if f.Initial <= 0 {
		return TimeFormat{}, fmt.Errorf("%w: budget must be positive", ErrTimeFormat)
	}
	return f.WithDelay(delay), nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %q", ErrTimeFormat, s)
	}
	return d, nil
}

// Clock is one player's remaining time.
type Clock struct {
	Remaining time.Duration
	Timed     bool
}

// NewClock returns a fresh clock for the format.
func (f TimeFormat) NewClock() Clock {
	if !f.Timed() {
		return Clock{}
	}
	return Clock{Remaining: f.Initial, Timed: true}
}

// budget is the wall time a move may take before flagging.
func (f TimeFormat) budget(c Clock) time.Duration {
	return c.Remaining + f.Delay
}

// charge deducts a move's elapsed time and reports whether the clock fell.
func (f TimeFormat) charge(c *Clock, elapsed time.Duration) (flagged bool) {
	if !c.Timed {
		return false
	}
	spent := elapsed - f.Delay
	if spent < 0 {
		spent = 0
	}
	c.Remaining -= spent
	if c.Remaining < 0 {
		return true
	}
	if f.Kind == KindIncrement {
		c.Remaining += f.Increment
	}
	return false
}

// prepare runs before a move is requested.
func (f TimeFormat) prepare(c *Clock) {
	if f.Kind == KindFixed {
		c.Remaining = f.Initial
	}
}
