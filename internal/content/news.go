package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bilgisen/radiocast/internal/events"
	"github.com/bilgisen/radiocast/internal/logger"
	"github.com/bilgisen/radiocast/internal/models"
	"github.com/bilgisen/radiocast/internal/slug"
	"github.com/google/uuid"
)

// NewsRepository persists articles. Create and Update return ErrConflict when
// the slug is taken; GetBySlug and DeleteBySlug return ErrNotFound on a miss.
type NewsRepository interface {
	List(ctx context.Context, q ListQuery) ([]models.NewsArticle, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.NewsArticle, error)
	Create(ctx context.Context, article *models.NewsArticle) error
	Update(ctx context.Context, article *models.NewsArticle) error
	DeleteBySlug(ctx context.Context, slug string) error
}

// NewsInput is the article payload of a create or update. Nil fields were
// not sent; on update they keep their stored values.
type NewsInput struct {
	Title    *string `json:"title" form:"title" validate:"omitnil,notblank,max=255"`
	Summary  *string `json:"summary" form:"summary" validate:"omitnil,notblank"`
	Content  *string `json:"content" form:"content" validate:"omitnil,notblank"`
	Category *string `json:"category" form:"category" validate:"omitnil,notblank,max=100"`
	Author   *string `json:"author" form:"author" validate:"omitnil,notblank,max=255"`
	Datetime *string `json:"datetime" form:"datetime"`
}

// NewsService manages news articles
type NewsService struct {
	base
	repo NewsRepository
}

func NewNewsService(repo NewsRepository, deps Deps) *NewsService {
	return &NewsService{
		base: base{Deps: deps.withDefaults(), kind: "news"},
		repo: repo,
	}
}

// List returns one page of articles, newest first
func (s *NewsService) List(ctx context.Context, q ListQuery) (*Page[models.NewsArticle], error) {
	q = s.normalize(q)
	key := s.listKey(q)

	var page Page[models.NewsArticle]
	if s.lookup(ctx, key, &page) {
		return &page, nil
	}

	gen := s.generation()
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}

	page = Page[models.NewsArticle]{Page: q.Page, Limit: q.Limit, Total: total, Items: emptyIfNil(items)}
	s.remember(ctx, key, gen, page)
	return &page, nil
}

// Get returns the article with the given slug or ErrNotFound
func (s *NewsService) Get(ctx context.Context, slug string) (*models.NewsArticle, error) {
	key := s.slugKey(slug)

	var article models.NewsArticle
	if s.lookup(ctx, key, &article) {
		return &article, nil
	}

	gen := s.generation()
	found, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, key, gen, found)
	return found, nil
}

// Create validates the input, stores the image if one was attached and
// persists the article. The image is written before the record.
func (s *NewsService) Create(ctx context.Context, in NewsInput, image *Upload, origin Origin) (*models.NewsArticle, error) {
	verr := &ValidationError{}
	in = in.cleaned(verr)
	requirePresent(verr,
		presence{"title", in.Title},
		presence{"summary", in.Summary},
		presence{"content", in.Content},
		presence{"category", in.Category},
		presence{"author", in.Author},
	)
	if err := s.check(in, verr); err != nil {
		return nil, err
	}

	publishedAt := s.Now().UTC().Truncate(time.Microsecond)
	if !blank(in.Datetime) {
		t, err := parseDatetime(*in.Datetime)
		if err != nil {
			verr.Add("datetime", "datetime must be a date like 2025-05-01 or 2025-05-01T08:00:00Z")
		}
		publishedAt = t
	}
	articleSlug := s.slugFor(in.Title, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	article := &models.NewsArticle{
		ID:          uuid.NewString(),
		Title:       *in.Title,
		Summary:     *in.Summary,
		Content:     *in.Content,
		Category:    *in.Category,
		Author:      *in.Author,
		PublishedAt: publishedAt,
		Slug:        articleSlug,
	}

	if image != nil {
		key, url, err := s.store(ctx, image, origin)
		if err != nil {
			return nil, fmt.Errorf("store article image: %w", err)
		}
		article.Image, article.ImageURL = key, url
	}

	if err := s.repo.Create(ctx, article); err != nil {
		if errors.Is(err, ErrConflict) && article.Image != "" {
			logger.Get().Warn().Str("slug", article.Slug).Str("image", article.Image).
				Msg("Article rejected after its image was stored")
		}
		return nil, err
	}

	s.invalidate(ctx)
	s.publish(ctx, events.NewsCreated, article.Slug, article.ID, article)
	return article, nil
}

// Update merges the supplied fields into the article found by slug. Blank
// fields count as not supplied; fields that clean down to nothing are
// rejected. A new image replaces both the stored filename and its URL.
func (s *NewsService) Update(ctx context.Context, currentSlug string, in NewsInput, image *Upload, origin Origin) (*models.NewsArticle, error) {
	verr := &ValidationError{}
	in = in.cleaned(verr)
	if err := s.check(in, verr); err != nil {
		return nil, err
	}

	var publishedAt *time.Time
	if !blank(in.Datetime) {
		t, err := parseDatetime(*in.Datetime)
		if err != nil {
			verr.Add("datetime", "datetime must be a date like 2025-05-01 or 2025-05-01T08:00:00Z")
		}
		publishedAt = &t
	}
	var newSlug string
	if in.Title != nil {
		newSlug = s.slugFor(in.Title, verr)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	article, err := s.repo.GetBySlug(ctx, currentSlug)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		article.Title = *in.Title
	}
	if in.Summary != nil {
		article.Summary = *in.Summary
	}
	if in.Content != nil {
		article.Content = *in.Content
	}
	if in.Category != nil {
		article.Category = *in.Category
	}
	if in.Author != nil {
		article.Author = *in.Author
	}
	if publishedAt != nil {
		article.PublishedAt = *publishedAt
	}
	switch {
	case newSlug != "":
		article.Slug = newSlug
	case article.Slug == "":
		article.Slug = slug.Make(article.Title)
	}

	if image != nil {
		key, url, err := s.store(ctx, image, origin)
		if err != nil {
			return nil, fmt.Errorf("store article image: %w", err)
		}
		article.Image, article.ImageURL = key, url
	}

	if err := s.repo.Update(ctx, article); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.publish(ctx, events.NewsUpdated, article.Slug, article.ID, article)
	return article, nil
}

// Delete removes the article with the given slug or returns ErrNotFound
func (s *NewsService) Delete(ctx context.Context, slug string) error {
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.publish(ctx, events.NewsDeleted, slug, "", nil)
	return nil
}

// cleaned returns the input with every text field cleaned for storage. Blank
// fields become nil.
func (in NewsInput) cleaned(verr *ValidationError) NewsInput {
	return NewsInput{
		Title:    supplied(verr, "title", in.Title, cleanLine),
		Summary:  supplied(verr, "summary", in.Summary, cleanBody),
		Content:  supplied(verr, "content", in.Content, cleanBody),
		Category: supplied(verr, "category", in.Category, cleanLine),
		Author:   supplied(verr, "author", in.Author, cleanLine),
		Datetime: present(in.Datetime),
	}
}

func (s *NewsService) check(in NewsInput, verr *ValidationError) error {
	return s.Validator.Check(in, verr)
}
