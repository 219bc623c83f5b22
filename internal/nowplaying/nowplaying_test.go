package nowplaying

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "Artist & Band - Song", CleanTitle("  <b>Artist &amp; Band</b>  -   Song "))
	assert.Equal(t, "", CleanTitle("<br/>"))
}

func TestCurrentCachesWithinTTL(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"DJ Dad - Morning Mix"}`))
	}))
	defer srv.Close()

	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	c := NewClient(srv.URL, 10*time.Second, time.Second)
	c.now = func() time.Time { return now }

	track, err := c.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "DJ Dad - Morning Mix", track.Title)
	assert.True(t, track.Available)

	_, err = c.Current(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))

	now = now.Add(11 * time.Second)
	_, err = c.Current(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestCurrentEmptyTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	track, err := NewClient(srv.URL, time.Second, time.Second).Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NoTrackInfo, track.Title)
	assert.False(t, track.Available)
}

func TestCurrentServesLastKnownOnFailure(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"title":"Evening Jazz"}`))
	}))
	defer srv.Close()

	now := time.Now()
	c := NewClient(srv.URL, time.Second, time.Second)
	c.now = func() time.Time { return now }

	_, err := c.Current(context.Background())
	require.NoError(t, err)

	fail.Store(true)
	now = now.Add(time.Minute)

	track, err := c.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Evening Jazz", track.Title)
}

func TestCurrentUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	track, err := NewClient(srv.URL, time.Second, time.Second).Current(context.Background())
	require.Error(t, err)
	assert.Equal(t, Unavailable, track.Title)
	assert.False(t, track.Available)
}

func TestCurrentDoesNotQueueCallersBehindSlowProvider(t *testing.T) {
	release := make(chan struct{})
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		_, _ = w.Write([]byte(`{"title":"Late Show"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Minute, 5*time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			start := time.Now()
			track, err := c.Current(ctx)
			assert.ErrorIs(t, err, context.DeadlineExceeded)
			assert.Equal(t, Unavailable, track.Title)
			assert.Less(t, time.Since(start), time.Second)
		}()
	}
	wg.Wait()
	close(release)

	assert.Eventually(t, func() bool {
		track, err := c.Current(context.Background())
		return err == nil && track.Title == "Late Show"
	}, 2*time.Second, 20*time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestCurrentRefreshIsBoundedByTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, time.Minute, 100*time.Millisecond)

	start := time.Now()
	track, err := c.Current(context.Background())
	require.Error(t, err)
	assert.Equal(t, Unavailable, track.Title)
	assert.Less(t, time.Since(start), 2*time.Second)
}
