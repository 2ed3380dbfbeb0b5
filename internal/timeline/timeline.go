// Package timeline normalizes timed label events into ordered, queryable
// timelines for lip-sync frame resolution.
package timeline

import (
	"fmt"
	"sort"
)

// Event is a single timed state change. The label stays active from Start
// until the next event's start, or until the timeline's total duration.
type Event struct {
	Start float64 `json:"start"` // seconds from the beginning of the audio
	Label string  `json:"label"`
}

// Timeline is an ordered sequence of events plus the total covered duration.
type Timeline struct {
	Events   []Event `json:"events"`
	Duration float64 `json:"duration"` // seconds
}

// EmptyTimelineError reports a timeline that declares a duration but
// contains no events to cover it.
type EmptyTimelineError struct {
	Duration float64
}

func (e *EmptyTimelineError) Error() string {
	return fmt.Sprintf("timeline declares %.3fs but contains no events", e.Duration)
}

// minFrameInterval is the fallback interval granted to the last event when
// the recognizer does not report a total length (one frame at 24fps).
const minFrameInterval = 1.0 / 24.0

// Normalize turns raw recognizer cues into a well-formed Timeline.
//
// Cues are sorted by start time, consecutive runs of identical labels are
// collapsed to their first occurrence, and the duration is taken from total
// when positive, otherwise derived from the last cue's start plus a minimum
// frame interval. Recognizers jitter; collapsing runs keeps the compositor
// from re-resolving the same image on every segment boundary.
func Normalize(cues []Event, total float64) (*Timeline, error) {
	if len(cues) == 0 {
		if total > 0 {
			return nil, &EmptyTimelineError{Duration: total}
		}
		return &Timeline{Duration: 0}, nil
	}

	sorted := make([]Event, len(cues))
	copy(sorted, cues)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	events := sorted[:1]
	for _, cue := range sorted[1:] {
		last := events[len(events)-1]
		if cue.Label == last.Label {
			continue
		}
		if cue.Start == last.Start {
			// Same instant, different label: the later cue wins.
			events[len(events)-1] = cue
			continue
		}
		events = append(events, cue)
	}

	duration := total
	if duration <= 0 {
		duration = events[len(events)-1].Start + minFrameInterval
	}

	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if ev.Start < duration {
			out = append(out, ev)
		}
	}
	if len(out) == 0 {
		return nil, &EmptyTimelineError{Duration: duration}
	}

	return &Timeline{Events: out, Duration: duration}, nil
}

// LabelAt resolves the label active at time t: the event with the greatest
// start ≤ t. Times before the first event clamp to the first event's label,
// so a recognizer that starts slightly after zero still yields a mouth shape
// for frame 0.
func (tl *Timeline) LabelAt(t float64) string {
	if len(tl.Events) == 0 {
		return ""
	}
	// First event whose start is strictly after t.
	i := sort.Search(len(tl.Events), func(i int) bool {
		return tl.Events[i].Start > t
	})
	if i == 0 {
		return tl.Events[0].Label
	}
	return tl.Events[i-1].Label
}

// Labels returns the distinct labels referenced by the timeline, in first
// appearance order. Used for up-front mapping completeness checks.
func (tl *Timeline) Labels() []string {
	seen := make(map[string]struct{}, len(tl.Events))
	var labels []string
	for _, ev := range tl.Events {
		if _, ok := seen[ev.Label]; ok {
			continue
		}
		seen[ev.Label] = struct{}{}
		labels = append(labels, ev.Label)
	}
	return labels
}
