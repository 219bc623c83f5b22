package content_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bilgisen/radiocast/internal/content"
	"github.com/bilgisen/radiocast/internal/events"
	"github.com/bilgisen/radiocast/internal/models"
	"github.com/bilgisen/radiocast/internal/repository"
	"github.com/bilgisen/radiocast/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validNews(title string) content.NewsInput {
	return content.NewsInput{
		Title:    str(title),
		Summary:  str("Short summary"),
		Content:  str("Full story"),
		Category: str("Local"),
		Author:   str("Newsroom"),
	}
}

func TestNewsCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validNews("  Station Turns 10!  ")
	in.Datetime = str("2025-05-01T08:00")

	article, err := f.news.Create(ctx, in, upload("party.jpg", "jpeg bytes"), origin)
	require.NoError(t, err)

	assert.NotEmpty(t, article.ID)
	assert.Equal(t, "Station Turns 10!", article.Title)
	assert.Equal(t, "station-turns-10", article.Slug)
	assert.Equal(t, time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC), article.PublishedAt)
	require.NotEmpty(t, article.Image)
	assert.Equal(t, "http://radio.test/uploads/"+article.Image, article.ImageURL)
	assert.Equal(t, []string{article.Image}, f.mediaFiles(t))

	got, err := f.news.Get(ctx, "station-turns-10")
	require.NoError(t, err)
	assert.Equal(t, article.ID, got.ID)

	assert.Equal(t, []string{events.NewsCreated}, f.events.Types())
}

func TestNewsCreateDefaultsPublishTime(t *testing.T) {
	f := newFixture(t)
	before := time.Now().UTC().Add(-time.Second)

	article, err := f.news.Create(context.Background(), validNews("No Date"), nil, origin)
	require.NoError(t, err)

	assert.True(t, article.PublishedAt.After(before))
	assert.Empty(t, article.Image)
	assert.Empty(t, article.ImageURL)
}

func TestNewsCreateEnumeratesEveryInvalidField(t *testing.T) {
	f := newFixture(t)

	_, err := f.news.Create(context.Background(), content.NewsInput{
		Title:    str("   "),
		Datetime: str("yesterday"),
	}, nil, origin)

	var verr *content.ValidationError
	require.ErrorAs(t, err, &verr)

	var fields []string
	for _, fe := range verr.Fields {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"title", "summary", "content", "category", "author", "datetime"}, fields)
}

func TestNewsCreateRejectsTitleWithoutSlug(t *testing.T) {
	f := newFixture(t)

	_, err := f.news.Create(context.Background(), validNews("!!!"), nil, origin)

	var verr *content.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("title"))
}

func TestNewsCreateDuplicateSlugConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.news.Create(ctx, validNews("Big News"), nil, origin)
	require.NoError(t, err)

	_, err = f.news.Create(ctx, validNews("big news!"), nil, origin)
	assert.ErrorIs(t, err, content.ErrConflict)

	got, err := f.news.Get(ctx, "big-news")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestNewsCreateConflictLeavesUploadedImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.news.Create(ctx, validNews("Big News"), nil, origin)
	require.NoError(t, err)

	_, err = f.news.Create(ctx, validNews("Big News"), upload("cover.png", "png bytes"), origin)
	require.ErrorIs(t, err, content.ErrConflict)

	// the file is written before the record and is not rolled back
	files := f.mediaFiles(t)
	require.Len(t, files, 1)
	assert.True(t, storage.ValidKey(files[0]))
}

func TestNewsCreateMediaFailureWritesNoRecord(t *testing.T) {
	f := newFixture(t)
	svc := content.NewNewsService(repository.NewNewsRepository(f.db), content.Deps{Media: failingSaver{}})

	_, err := svc.Create(context.Background(), validNews("Broken Upload"), upload("a.jpg", "x"), origin)
	require.Error(t, err)

	_, err = f.news.Get(context.Background(), "broken-upload")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestNewsPartialUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.news.Create(ctx, validNews("Finals Tonight"), upload("cover.jpg", "img"), origin)
	require.NoError(t, err)

	updated, err := f.news.Update(ctx, "finals-tonight", content.NewsInput{Summary: str("New summary")}, nil, origin)
	require.NoError(t, err)

	assert.Equal(t, "New summary", updated.Summary)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Content, updated.Content)
	assert.Equal(t, created.Category, updated.Category)
	assert.Equal(t, created.Author, updated.Author)
	assert.Equal(t, created.Slug, updated.Slug)
	assert.Equal(t, created.Image, updated.Image)
	assert.Equal(t, created.ImageURL, updated.ImageURL)

	stored, err := f.news.Get(ctx, "finals-tonight")
	require.NoError(t, err)
	assert.Equal(t, "New summary", stored.Summary)
}

func TestNewsUpdateTitleRegeneratesSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.news.Create(ctx, validNews("Old Headline"), nil, origin)
	require.NoError(t, err)

	updated, err := f.news.Update(ctx, "old-headline", content.NewsInput{Title: str("New Headline")}, nil, origin)
	require.NoError(t, err)
	assert.Equal(t, "new-headline", updated.Slug)

	_, err = f.news.Get(ctx, "old-headline")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestNewsUpdateReplacesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.news.Create(ctx, validNews("Photo Story"), upload("a.jpg", "first"), origin)
	require.NoError(t, err)

	updated, err := f.news.Update(ctx, "photo-story", content.NewsInput{}, upload("b.jpg", "second"), origin)
	require.NoError(t, err)

	assert.NotEqual(t, created.Image, updated.Image)
	assert.Equal(t, "http://radio.test/uploads/"+updated.Image, updated.ImageURL)
}

func TestNewsUpdateMissingIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.news.Update(context.Background(), "ghost", content.NewsInput{Summary: str("x")}, nil, origin)
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestNewsUpdateValidationBeforeLookup(t *testing.T) {
	f := newFixture(t)

	_, err := f.news.Update(context.Background(), "ghost", content.NewsInput{Datetime: str("someday")}, nil, origin)

	var verr *content.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.False(t, errors.Is(err, content.ErrNotFound))
}

func TestNewsDeleteThenGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.news.Create(ctx, validNews("Short Lived"), nil, origin)
	require.NoError(t, err)

	require.NoError(t, f.news.Delete(ctx, "short-lived"))

	_, err = f.news.Get(ctx, "short-lived")
	assert.ErrorIs(t, err, content.ErrNotFound)
	assert.ErrorIs(t, f.news.Delete(ctx, "short-lived"), content.ErrNotFound)

	assert.Equal(t, []string{events.NewsCreated, events.NewsDeleted}, f.events.Types())
}

func TestNewsListCategoryAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, c := range []struct{ title, category string }{
		{"Cup Finals Tonight", "Sports"},
		{"Transfer Rumours", "Sports"},
		{"Exam Finals Begin", "Education"},
	} {
		in := validNews(c.title)
		in.Category = str(c.category)
		_, err := f.news.Create(ctx, in, nil, origin)
		require.NoError(t, err)
	}

	page, err := f.news.List(ctx, content.ListQuery{Category: "Sports", Search: "finals"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "cup-finals-tonight", page.Items[0].Slug)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, content.DefaultLimit, page.Limit)
}

func TestNewsListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 23; i++ {
		in := validNews(fmt.Sprintf("Bulletin %d", i))
		in.Datetime = str(base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339))
		_, err := f.news.Create(ctx, in, nil, origin)
		require.NoError(t, err)
	}

	page, err := f.news.List(ctx, content.ListQuery{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 23, page.Total)
	assert.Len(t, page.Items, 3)

	page, err = f.news.List(ctx, content.ListQuery{Page: 1, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, content.MaxLimit, page.Limit)
	assert.Len(t, page.Items, 23)
	assert.Equal(t, "bulletin-22", page.Items[0].Slug)

	page, err = f.news.List(ctx, content.ListQuery{Page: 9})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestNewsListCacheInvalidatedOnWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.news.List(ctx, content.ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Total)

	_, err = f.news.Create(ctx, validNews("Fresh"), nil, origin)
	require.NoError(t, err)

	page, err = f.news.List(ctx, content.ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}

func TestNewsGetServedFromCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.news.Create(ctx, validNews("Cached Story"), nil, origin)
	require.NoError(t, err)
	_, err = f.news.Get(ctx, "cached-story")
	require.NoError(t, err)

	// remove the row behind the service's back
	require.NoError(t, repository.NewNewsRepository(f.db).DeleteBySlug(ctx, "cached-story"))

	got, err := f.news.Get(ctx, "cached-story")
	require.NoError(t, err)
	assert.Equal(t, "Cached Story", got.Title)
}

func TestNewsUpdateIgnoresBlankFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.news.Create(ctx, validNews("Form Submit"), nil, origin)
	require.NoError(t, err)

	updated, err := f.news.Update(ctx, "form-submit", content.NewsInput{
		Title:   str(""),
		Author:  str("  "),
		Summary: str("Edited"),
	}, nil, origin)
	require.NoError(t, err)

	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Author, updated.Author)
	assert.Equal(t, "form-submit", updated.Slug)
	assert.Equal(t, "Edited", updated.Summary)
}

func fieldNames(err error) []string {
	var verr *content.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	names := make([]string, 0, len(verr.Fields))
	for _, fe := range verr.Fields {
		names = append(names, fe.Field)
	}
	return names
}

func TestNewsCreateRejectsFieldsThatCleanToNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validNews("Scrubbed")
	in.Summary = str("<script>alert(1)</script>")
	in.Author = str("\x01\x02")

	_, err := f.news.Create(ctx, in, nil, origin)
	assert.ElementsMatch(t, []string{"summary", "author"}, fieldNames(err))

	_, err = f.news.Get(ctx, "scrubbed")
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestNewsUpdateRejectsFieldsThatCleanToNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.news.Create(ctx, validNews("Kept Body"), nil, origin)
	require.NoError(t, err)

	_, err = f.news.Update(ctx, "kept-body", content.NewsInput{
		Content: str(`<iframe src="https://ads.test"></iframe>`),
		Author:  str("\t\x7f"),
	}, nil, origin)
	assert.ElementsMatch(t, []string{"content", "author"}, fieldNames(err))

	got, err := f.news.Get(ctx, "kept-body")
	require.NoError(t, err)
	assert.Equal(t, "Full story", got.Content)
	assert.Equal(t, "Newsroom", got.Author)
}

// slowReadRepo runs afterRead once, between loading an article and handing it back
type slowReadRepo struct {
	content.NewsRepository
	afterRead func()
}

func (r *slowReadRepo) GetBySlug(ctx context.Context, slug string) (*models.NewsArticle, error) {
	article, err := r.NewsRepository.GetBySlug(ctx, slug)
	if hook := r.afterRead; hook != nil {
		r.afterRead = nil
		hook()
	}
	return article, err
}

func TestNewsGetDoesNotCacheReadOverlappingWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	repo := &slowReadRepo{NewsRepository: repository.NewNewsRepository(f.db)}
	svc := content.NewNewsService(repo, content.Deps{Cache: f.cache, CacheTTL: time.Minute, Events: f.events})

	_, err := svc.Create(ctx, validNews("Race Story"), nil, origin)
	require.NoError(t, err)

	repo.afterRead = func() {
		_, err := svc.Update(ctx, "race-story", content.NewsInput{Summary: str("Fresh summary")}, nil, origin)
		require.NoError(t, err)
	}
	stale, err := svc.Get(ctx, "race-story")
	require.NoError(t, err)
	assert.Equal(t, "Short summary", stale.Summary)

	got, err := svc.Get(ctx, "race-story")
	require.NoError(t, err)
	assert.Equal(t, "Fresh summary", got.Summary)
}
