package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sweatpet/internal/store"
)

var keys = []string{"sweatPetData", "sweatActivityData", "sweatAchievements"}

func startWatcher(t *testing.T, dir string, debounce time.Duration) (*Watcher, chan []string) {
	t.Helper()
	changes := make(chan []string, 16)
	w, err := New(dir, keys, debounce, func(ctx context.Context, keys []string) {
		changes <- keys
	}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	return w, changes
}

func TestWatcher_ReportsStoreWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	fs, err := store.NewFileStore(dir)
	require.NoError(t, err)

	w, changes := startWatcher(t, dir, 50*time.Millisecond)
	defer w.Stop()

	require.NoError(t, fs.Put(context.Background(),
		store.Entry{Key: "sweatPetData", Value: []byte(`{}`)},
		store.Entry{Key: "sweatAchievements", Value: []byte(`{}`)},
	))

	select {
	case got := <-changes:
		assert.Equal(t, []string{"sweatAchievements", "sweatPetData"}, got)
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case got := <-changes:
		t.Fatalf("burst reported twice: %v", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w, changes := startWatcher(t, dir, 0)
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sweatpet.log"), []byte("log"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sweatPetData-123.tmp"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.json"), []byte("{}"), 0o644))

	select {
	case got := <-changes:
		t.Fatalf("unexpected change %v", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopEndsLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, _ := startWatcher(t, t.TempDir(), 10*time.Millisecond)
	w.Stop()
	w.Stop()

	select {
	case <-w.Done():
	default:
		t.Fatal("event loop still running after Stop")
	}
	assert.Error(t, w.Start(context.Background()))
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := New(t.TempDir(), keys, time.Millisecond, func(context.Context, []string) {}, nil)
	require.NoError(t, err)
	w.Stop()
}

func TestWatcher_MissingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := New(filepath.Join(t.TempDir(), "missing"), keys, time.Millisecond, func(context.Context, []string) {}, nil)
	require.NoError(t, err)
	defer w.Stop()

	assert.Error(t, w.Start(context.Background()))
}
