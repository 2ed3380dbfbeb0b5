package rhubarb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/lipsync/internal/timeline"
)

func TestParseCues(t *testing.T) {
	output := []byte("0.00\tX\n0.05\tB\n0.38\tA\n1.04\tX\n")

	cues, err := ParseCues(output)
	require.NoError(t, err)

	assert.Equal(t, []timeline.Event{
		{Start: 0.00, Label: "X"},
		{Start: 0.05, Label: "B"},
		{Start: 0.38, Label: "A"},
		{Start: 1.04, Label: "X"},
	}, cues)
}

func TestParseCues_SkipsBlankLines(t *testing.T) {
	cues, err := ParseCues([]byte("0.00\tA\n\n0.50\tB\n\n"))
	require.NoError(t, err)
	assert.Len(t, cues, 2)
}

func TestParseCues_Empty(t *testing.T) {
	cues, err := ParseCues(nil)
	require.NoError(t, err)
	assert.Empty(t, cues)
}

func TestParseCues_BadFieldCount(t *testing.T) {
	_, err := ParseCues([]byte("0.00\tA\tEXTRA\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestParseCues_BadTimestamp(t *testing.T) {
	_, err := ParseCues([]byte("zero\tA\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad timestamp")
}

func TestAcceptsFormat(t *testing.T) {
	assert.True(t, acceptsFormat("speech.wav"))
	assert.True(t, acceptsFormat("speech.OGG"))
	assert.False(t, acceptsFormat("speech.mp3"))
	assert.False(t, acceptsFormat("speech.wav.mp3"))
}
