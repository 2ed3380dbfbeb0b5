package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/lipsync/internal/bus"
)

func TestRelevantAsset(t *testing.T) {
	assert.True(t, relevantAsset("lips.csv"))
	assert.True(t, relevantAsset("art/mouthA.PNG"))
	assert.False(t, relevantAsset("notes.txt"))
	assert.False(t, relevantAsset("out.mkv"))
}

func TestWatcher_PublishesOnAssetWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lips.csv")
	require.NoError(t, os.WriteFile(path, []byte("A,a.png\n"), 0644))

	events := bus.NewEventBus()
	var mu sync.Mutex
	var changed []string
	events.Subscribe(bus.EventTypeAssetChanged, func(ev bus.Event) {
		mu.Lock()
		defer mu.Unlock()
		changed = append(changed, ev.Data["path"].(string))
	})

	w, err := New(zerolog.Nop(), events)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Add(path))

	require.NoError(t, os.WriteFile(path, []byte("A,a.png\nB,b.png\n"), 0644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changed) > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "lips.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("A,a.png\n"), 0644))

	events := bus.NewEventBus()
	var mu sync.Mutex
	count := 0
	events.Subscribe(bus.EventTypeAssetChanged, func(bus.Event) {
		mu.Lock()
		defer mu.Unlock()
		count++
	})

	w, err := New(zerolog.Nop(), events)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Add(csvPath))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	time.Sleep(300 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, count)
}

func TestWatcher_AddSkipsEmptyPaths(t *testing.T) {
	w, err := New(zerolog.Nop(), bus.NewEventBus())
	require.NoError(t, err)
	defer w.Close()

	assert.NoError(t, w.Add("", ""))
}
