package timeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_CollapsesIdenticalRuns(t *testing.T) {
	cues := []Event{
		{Start: 0.0, Label: "A"},
		{Start: 0.1, Label: "A"},
		{Start: 0.2, Label: "A"},
		{Start: 0.5, Label: "B"},
	}

	tl, err := Normalize(cues, 1.0)
	require.NoError(t, err)

	require.Len(t, tl.Events, 2)
	assert.Equal(t, Event{Start: 0.0, Label: "A"}, tl.Events[0])
	assert.Equal(t, Event{Start: 0.5, Label: "B"}, tl.Events[1])
	assert.Equal(t, 1.0, tl.Duration)
}

func TestNormalize_SortsUnorderedCues(t *testing.T) {
	cues := []Event{
		{Start: 0.8, Label: "C"},
		{Start: 0.0, Label: "A"},
		{Start: 0.4, Label: "B"},
	}

	tl, err := Normalize(cues, 1.0)
	require.NoError(t, err)

	require.Len(t, tl.Events, 3)
	assert.Equal(t, "A", tl.Events[0].Label)
	assert.Equal(t, "B", tl.Events[1].Label)
	assert.Equal(t, "C", tl.Events[2].Label)
}

func TestNormalize_EmptyWithDeclaredDuration(t *testing.T) {
	_, err := Normalize(nil, 2.5)

	var emptyErr *EmptyTimelineError
	require.True(t, errors.As(err, &emptyErr))
	assert.Equal(t, 2.5, emptyErr.Duration)
}

func TestNormalize_EmptyWithZeroDuration(t *testing.T) {
	tl, err := Normalize(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, tl.Events)
	assert.Equal(t, 0.0, tl.Duration)
}

func TestNormalize_DurationFallback(t *testing.T) {
	cues := []Event{
		{Start: 0.0, Label: "A"},
		{Start: 2.0, Label: "X"},
	}

	tl, err := Normalize(cues, 0)
	require.NoError(t, err)

	assert.InDelta(t, 2.0+1.0/24.0, tl.Duration, 1e-9)
}

func TestNormalize_DropsEventsPastDuration(t *testing.T) {
	cues := []Event{
		{Start: 0.0, Label: "A"},
		{Start: 5.0, Label: "B"},
	}

	tl, err := Normalize(cues, 2.0)
	require.NoError(t, err)

	require.Len(t, tl.Events, 1)
	assert.Equal(t, "A", tl.Events[0].Label)
}

func TestNormalize_DuplicateStartLaterCueWins(t *testing.T) {
	cues := []Event{
		{Start: 0.0, Label: "A"},
		{Start: 0.5, Label: "B"},
		{Start: 0.5, Label: "C"},
	}

	tl, err := Normalize(cues, 1.0)
	require.NoError(t, err)

	require.Len(t, tl.Events, 2)
	assert.Equal(t, "C", tl.Events[1].Label)
}

func TestLabelAt_PersistsUntilNextEvent(t *testing.T) {
	tl, err := Normalize([]Event{
		{Start: 0.0, Label: "A"},
		{Start: 1.0, Label: "B"},
	}, 2.0)
	require.NoError(t, err)

	assert.Equal(t, "A", tl.LabelAt(0.0))
	assert.Equal(t, "A", tl.LabelAt(0.5))
	assert.Equal(t, "A", tl.LabelAt(0.999))
	assert.Equal(t, "B", tl.LabelAt(1.0))
	assert.Equal(t, "B", tl.LabelAt(1.999))
}

func TestLabelAt_ClampsBeforeFirstEvent(t *testing.T) {
	tl, err := Normalize([]Event{
		{Start: 0.25, Label: "X"},
	}, 1.0)
	require.NoError(t, err)

	assert.Equal(t, "X", tl.LabelAt(0.0))
}

func TestLabels_DistinctFirstAppearance(t *testing.T) {
	tl, err := Normalize([]Event{
		{Start: 0.0, Label: "A"},
		{Start: 0.5, Label: "B"},
		{Start: 1.0, Label: "A"},
	}, 2.0)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, tl.Labels())
}
