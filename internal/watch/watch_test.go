package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcher_RebuildsOncePerBurst(t *testing.T) {
	dir := t.TempDir()
	var builds atomic.Int32
	done := make(chan struct{}, 8)

	w, err := New([]string{dir}, func() error {
		builds.Add(1)
		done <- struct{}{}
		return nil
	}, zap.NewNop())
	require.NoError(t, err)
	w.Debounce = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		assert.NoError(t, w.Run(ctx))
	}()
	defer func() {
		cancel()
		<-stopped
	}()

	// let the watch register before writing
	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "2026-02-15.md"), []byte("- edit\n"), 0644))
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("no rebuild after change")
	}
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), builds.Load())
}

func TestWatcher_IgnoresOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "INDEX.md")
	var builds atomic.Int32

	w, err := New([]string{dir}, func() error {
		builds.Add(1)
		return nil
	}, zap.NewNop())
	require.NoError(t, err)
	w.Debounce = 50 * time.Millisecond
	w.Ignore(out)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = w.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(out, []byte("# Log Index\n"), 0644))
	time.Sleep(400 * time.Millisecond)

	cancel()
	<-stopped
	assert.Equal(t, int32(0), builds.Load())
}

func TestNew_NoWatchableDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing")}, func() error { return nil }, zap.NewNop())
	assert.Error(t, err)
}
