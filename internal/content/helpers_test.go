package content_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bilgisen/radiocast/internal/cache"
	"github.com/bilgisen/radiocast/internal/config"
	"github.com/bilgisen/radiocast/internal/content"
	"github.com/bilgisen/radiocast/internal/events"
	"github.com/bilgisen/radiocast/internal/repository"
	"github.com/bilgisen/radiocast/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var origin = content.Origin{Scheme: "http", Host: "radio.test"}

type fixture struct {
	db       *gorm.DB
	mediaDir string
	cache    *cache.MemoryCache
	events   *events.Recorder
	news     *content.NewsService
	podcasts *content.PodcastService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := repository.Open(&config.Config{
		DBDriver: config.DriverSQLite,
		DBDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close(db) })

	dir := t.TempDir()
	store, err := storage.NewLocal(dir)
	require.NoError(t, err)

	f := &fixture{
		db:       db,
		mediaDir: dir,
		cache:    cache.NewMemoryCache(),
		events:   &events.Recorder{},
	}
	deps := content.Deps{
		Media:    store,
		Cache:    f.cache,
		CacheTTL: time.Minute,
		Events:   f.events,
	}
	f.news = content.NewNewsService(repository.NewNewsRepository(db), deps)
	f.podcasts = content.NewPodcastService(repository.NewPodcastRepository(db), deps)
	return f
}

func (f *fixture) mediaFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.mediaDir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func str(s string) *string { return &s }

func dur(s string) *content.Duration {
	d := content.Duration(s)
	return &d
}

func upload(name, body string) *content.Upload {
	return &content.Upload{Filename: name, Body: strings.NewReader(body)}
}

// failingSaver simulates a media backend that is down
type failingSaver struct{}

func (failingSaver) Save(context.Context, string, io.Reader) (string, error) {
	return "", fmt.Errorf("bucket unavailable")
}
