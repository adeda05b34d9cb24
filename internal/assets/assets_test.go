package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLoadSample(t *testing.T) {
	m := NewManager()
	data, err := m.Load("")
	require.NoError(t, err)
	assert.Contains(t, string(data), "<COLLADA")
	assert.Equal(t, Sample(), data)

	_, err = m.Load("")
	require.NoError(t, err)
	hits, misses := m.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestLoadFileCachedUntilInvalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arm.dae")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	m := NewManager()
	data, err := m.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	data, _ = m.Load(path)
	assert.Equal(t, "v1", string(data), "served from cache")

	m.Invalidate(path)
	data, _ = m.Load(path)
	assert.Equal(t, "v2", string(data))
}

func TestLoadMissingFile(t *testing.T) {
	m := NewManager()
	_, err := m.Load(filepath.Join(t.TempDir(), "missing.dae"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCacheClear(t *testing.T) {
	c := NewCache()
	c.Set("a", []byte("x"))
	_, ok := c.Get("a")
	assert.True(t, ok)

	c.Clear()
	_, ok = c.Get("a")
	assert.False(t, ok)
	hits, misses := c.Stats()
	assert.Equal(t, 0, hits)
	assert.Equal(t, 1, misses)
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arm.dae")
	other := filepath.Join(dir, "other.dae")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	w, err := NewWatcher(context.Background(), path, 20*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	select {
	case p := <-w.Changes():
		t.Fatalf("unexpected change for %s", p)
	case <-time.After(150 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	select {
	case p := <-w.Changes():
		assert.Equal(t, w.Path(), p)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcherCloseStopsGoroutine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arm.dae")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	w, err := NewWatcher(context.Background(), path, DefaultDebounce, nil)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, open := <-w.Changes()
	assert.False(t, open)
}

func TestWatcherStopsOnContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arm.dae")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	w, err := NewWatcher(ctx, path, DefaultDebounce, nil)
	require.NoError(t, err)

	cancel()
	select {
	case _, open := <-w.Changes():
		assert.False(t, open)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	require.NoError(t, w.Close())
}

func TestWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(context.Background(), filepath.Join(t.TempDir(), "no", "arm.dae"), DefaultDebounce, nil)
	assert.Error(t, err)
}
