// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package pages

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type props struct {
	Tag   string
	Title *string
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.t = f.t.Add(d)
}

func newTestStore(t *testing.T, blocking bool) (*Store[props], *fakeClock) {
	t.Helper()

	s, err := New[props](Options{Size: 8, Compress: true, Blocking: blocking, GenerateTimeout: time.Second})
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)}
	s.now = clock.now

	return s, clock
}

// countingGenerator returns a generator producing title and counting its runs.
func countingGenerator(runs *atomic.Int32, title string) Generator[props] {
	return func(context.Context) (Page[props], error) {
		runs.Add(1)

		return Page[props]{Value: props{Tag: "golang", Title: &title}, Revalidate: time.Hour}, nil
	}
}

func TestLoadFallbackThenFresh(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t, false)

	release := make(chan struct{})

	var runs atomic.Int32

	gen := func(ctx context.Context) (Page[props], error) {
		<-release

		return countingGenerator(&runs, "Go")(ctx)
	}

	value, status, err := s.Load(context.Background(), "/tags/golang", gen)
	require.NoError(t, err)
	assert.Equal(t, StatusFallback, status)
	assert.Equal(t, props{}, value)

	// a second request during generation falls back as well and does not start another run
	_, status, err = s.Load(context.Background(), "/tags/golang", gen)
	require.NoError(t, err)
	assert.Equal(t, StatusFallback, status)

	close(release)

	generated, err := s.Generate(context.Background(), "/tags/golang", gen)
	require.NoError(t, err)
	assert.Equal(t, "Go", *generated.Title)

	value, status, err = s.Load(context.Background(), "/tags/golang", gen)
	require.NoError(t, err)
	assert.Equal(t, StatusFresh, status)
	require.NotNil(t, value.Title)
	assert.Equal(t, "Go", *value.Title)
	assert.LessOrEqual(t, runs.Load(), int32(2))
}

func TestLoadBlocking(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t, true)

	var runs atomic.Int32

	value, status, err := s.Load(context.Background(), "/tags/golang", countingGenerator(&runs, "Go"))
	require.NoError(t, err)
	assert.Equal(t, StatusGenerated, status)
	assert.Equal(t, "Go", *value.Title)

	_, status, err = s.Load(context.Background(), "/tags/golang", countingGenerator(&runs, "Go"))
	require.NoError(t, err)
	assert.Equal(t, StatusFresh, status)
	assert.Equal(t, int32(1), runs.Load())
}

func TestLoadBlockingError(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t, true)
	boom := errors.New("upstream down")

	_, _, err := s.Load(context.Background(), "/tags/golang", func(context.Context) (Page[props], error) {
		return Page[props]{}, boom
	})
	require.ErrorIs(t, err, boom)

	var runs atomic.Int32

	_, status, err := s.Load(context.Background(), "/tags/golang", countingGenerator(&runs, "Go"))
	require.NoError(t, err)
	assert.Equal(t, StatusGenerated, status, "failed generations are not stored")
}

func TestLoadStaleWhileRevalidate(t *testing.T) {
	t.Parallel()

	s, clock := newTestStore(t, true)

	var runs atomic.Int32

	_, _, err := s.Load(context.Background(), "/tags/golang", countingGenerator(&runs, "Old"))
	require.NoError(t, err)

	clock.advance(59 * time.Minute)

	value, status, err := s.Load(context.Background(), "/tags/golang", countingGenerator(&runs, "New"))
	require.NoError(t, err)
	assert.Equal(t, StatusFresh, status)
	assert.Equal(t, "Old", *value.Title)

	clock.advance(time.Minute)

	release := make(chan struct{})
	slow := func(ctx context.Context) (Page[props], error) {
		<-release

		return countingGenerator(&runs, "New")(ctx)
	}

	value, status, err = s.Load(context.Background(), "/tags/golang", slow)
	require.NoError(t, err)
	assert.Equal(t, StatusStale, status)
	assert.Equal(t, "Old", *value.Title, "stale value is served while regenerating")

	close(release)

	_, err = s.Generate(context.Background(), "/tags/golang", slow)
	require.NoError(t, err)

	value, status, err = s.Load(context.Background(), "/tags/golang", slow)
	require.NoError(t, err)
	assert.Equal(t, StatusFresh, status)
	assert.Equal(t, "New", *value.Title)
}

func TestGenerateCoalesces(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t, true)

	release := make(chan struct{})

	var runs atomic.Int32

	gen := func(ctx context.Context) (Page[props], error) {
		<-release

		return countingGenerator(&runs, "Go")(ctx)
	}

	var wg sync.WaitGroup

	for range 5 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			value, err := s.Generate(context.Background(), "/tags/golang", gen)
			assert.NoError(t, err)
			assert.Equal(t, "golang", value.Tag)
		}()
	}

	// give the goroutines a chance to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), runs.Load())
}

func TestGenerateOutlivesCanceledRequest(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	sawCancel := make(chan bool, 1)

	var runs atomic.Int32

	gen := func(genCtx context.Context) (Page[props], error) {
		<-release
		sawCancel <- genCtx.Err() != nil

		return countingGenerator(&runs, "Go")(genCtx)
	}

	done := make(chan error, 1)

	go func() {
		_, err := s.Generate(ctx, "/tags/golang", gen)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	close(release)
	assert.False(t, <-sawCancel, "generation must not inherit request cancellation")

	_, err := s.Generate(context.Background(), "/tags/golang", gen)
	require.NoError(t, err)
}

func TestNewInvalidSize(t *testing.T) {
	t.Parallel()

	_, err := New[props](Options{Size: 0})
	require.Error(t, err)
}
