// Package blink generates synthetic eyelid timelines so characters blink
// without per-frame author input. Scheduling is a pure function of the
// duration and a seeded configuration, which keeps renders reproducible.
package blink

import (
	"math/rand"

	"github.com/normanking/lipsync/internal/timeline"
)

// State is an eyelid position. Labels follow the blink CSV authoring
// convention: A is open, B is half closed, C is closed.
type State string

const (
	Open   State = "A"
	Half   State = "B"
	Closed State = "C"
)

// Config tunes the blink policy. Interval bounds and phase length are
// authoring choices, not fixed behavior.
type Config struct {
	MinWait  float64 // shortest open interval between blinks, seconds
	MaxWait  float64 // longest open interval between blinks, seconds
	PhaseDur float64 // length of each half/closed sub-phase, seconds
	Seed     int64
}

// DefaultConfig blinks every two to four seconds with sub-phases lasting
// one frame at 24fps, brief enough to read as a blink rather than a wince.
func DefaultConfig() Config {
	return Config{
		MinWait:  2.0,
		MaxWait:  4.0,
		PhaseDur: 1.0 / 24.0,
		Seed:     1,
	}
}

// Schedule produces an eyelid timeline covering duration seconds. The eyes
// start open; each blink emits half at its start, closed at its midpoint,
// and open at its end. A blink whose phases would not complete before the
// duration ends, or would start before the previous blink reopened, is
// skipped so at most one eyelid state is active at any instant.
func Schedule(duration float64, cfg Config) *timeline.Timeline {
	events := []timeline.Event{{Start: 0, Label: string(Open)}}
	if duration <= 0 {
		return &timeline.Timeline{Events: events, Duration: 0}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	minWait, maxWait := cfg.MinWait, cfg.MaxWait
	if minWait <= 0 {
		minWait = DefaultConfig().MinWait
	}
	if maxWait < minWait {
		maxWait = minWait
	}
	phase := cfg.PhaseDur
	if phase <= 0 {
		phase = DefaultConfig().PhaseDur
	}

	// t tracks the moment the eyes last returned to open.
	t := 0.0
	for {
		wait := minWait + rng.Float64()*(maxWait-minWait)
		start := t + wait
		end := start + 2*phase
		if end >= duration {
			break
		}
		events = append(events,
			timeline.Event{Start: start, Label: string(Half)},
			timeline.Event{Start: start + phase, Label: string(Closed)},
			timeline.Event{Start: end, Label: string(Open)},
		)
		t = end
	}

	return &timeline.Timeline{Events: events, Duration: duration}
}
