package content

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bilgisen/radiocast/internal/events"
	"github.com/bilgisen/radiocast/internal/models"
	"github.com/bilgisen/radiocast/internal/slug"
	"github.com/google/uuid"
)

// DefaultPodcastCategory is used when an episode is created without a category
const DefaultPodcastCategory = "General"

// PodcastRepository persists episodes, with the same error contract as NewsRepository
type PodcastRepository interface {
	List(ctx context.Context, q ListQuery) ([]models.PodcastEpisode, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.PodcastEpisode, error)
	Create(ctx context.Context, episode *models.PodcastEpisode) error
	Update(ctx context.Context, episode *models.PodcastEpisode) error
	DeleteBySlug(ctx context.Context, slug string) error
}

// PodcastInput is the episode payload of a create or update. AudioURL is an
// externally hosted file used when no audio is uploaded.
type PodcastInput struct {
	Title       *string   `json:"title" form:"title" validate:"omitnil,notblank,max=255"`
	Description *string   `json:"description" form:"description" validate:"omitnil,notblank"`
	Host        *string   `json:"host" form:"host" validate:"omitnil,notblank,max=255"`
	Category    *string   `json:"category" form:"category" validate:"omitnil,max=100"`
	Duration    *Duration `json:"duration" form:"duration"`
	AudioURL    *string   `json:"audioUrl" form:"audioUrl" validate:"omitnil,max=1024"`
}

// PodcastMedia are the files attached to a podcast request
type PodcastMedia struct {
	Image *Upload
	Audio *Upload
}

// PodcastService manages podcast episodes
type PodcastService struct {
	base
	repo PodcastRepository
}

func NewPodcastService(repo PodcastRepository, deps Deps) *PodcastService {
	return &PodcastService{
		base: base{Deps: deps.withDefaults(), kind: "podcasts"},
		repo: repo,
	}
}

// List returns one page of episodes, newest first
func (s *PodcastService) List(ctx context.Context, q ListQuery) (*Page[models.PodcastEpisode], error) {
	q = s.normalize(q)
	key := s.listKey(q)

	var page Page[models.PodcastEpisode]
	if s.lookup(ctx, key, &page) {
		return &page, nil
	}

	gen := s.generation()
	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list podcasts: %w", err)
	}

	page = Page[models.PodcastEpisode]{Page: q.Page, Limit: q.Limit, Total: total, Items: emptyIfNil(items)}
	s.remember(ctx, key, gen, page)
	return &page, nil
}

// Get returns the episode with the given slug or ErrNotFound
func (s *PodcastService) Get(ctx context.Context, slug string) (*models.PodcastEpisode, error) {
	key := s.slugKey(slug)

	var episode models.PodcastEpisode
	if s.lookup(ctx, key, &episode) {
		return &episode, nil
	}

	gen := s.generation()
	found, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, key, gen, found)
	return found, nil
}

// Create validates the input and persists the episode. Audio is mandatory,
// either uploaded or given as audioUrl. Files are written before the record.
func (s *PodcastService) Create(ctx context.Context, in PodcastInput, media PodcastMedia, origin Origin) (*models.PodcastEpisode, error) {
	verr := &ValidationError{}
	in = in.cleaned(verr)
	requirePresent(verr,
		presence{"title", in.Title},
		presence{"description", in.Description},
		presence{"host", in.Host},
	)
	if err := s.Validator.Check(in, verr); err != nil {
		return nil, err
	}

	seconds := 0
	if in.Duration == nil {
		verr.Add("duration", "duration is required")
	} else if n, err := in.Duration.Seconds(); err != nil {
		verr.Add("duration", err.Error())
	} else {
		seconds = n
	}
	if media.Audio == nil {
		if blank(in.AudioURL) {
			verr.Add("audioFile", "an audio file or audioUrl is required")
		} else {
			checkAudioURL(in.AudioURL, verr)
		}
	}
	episodeSlug := s.slugFor(in.Title, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	category := trimmed(in.Category)
	if category == "" {
		category = DefaultPodcastCategory
	}

	episode := &models.PodcastEpisode{
		ID:          uuid.NewString(),
		Title:       *in.Title,
		Description: *in.Description,
		Host:        *in.Host,
		Duration:    seconds,
		Category:    category,
		Slug:        episodeSlug,
	}

	if err := s.attach(ctx, episode, in, media, origin); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, episode); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.publish(ctx, events.PodcastCreated, episode.Slug, episode.ID, episode)
	return episode, nil
}

// Update merges the supplied fields into the episode found by slug. Blank
// fields count as not supplied; fields that clean down to nothing are
// rejected. Audio and cover are only replaced when new ones are supplied.
func (s *PodcastService) Update(ctx context.Context, currentSlug string, in PodcastInput, media PodcastMedia, origin Origin) (*models.PodcastEpisode, error) {
	verr := &ValidationError{}
	in = in.cleaned(verr)
	if err := s.Validator.Check(in, verr); err != nil {
		return nil, err
	}

	seconds := -1
	if in.Duration != nil {
		n, err := in.Duration.Seconds()
		if err != nil {
			verr.Add("duration", err.Error())
		}
		seconds = n
	}
	if media.Audio == nil && !blank(in.AudioURL) {
		checkAudioURL(in.AudioURL, verr)
	}
	var newSlug string
	if in.Title != nil {
		newSlug = s.slugFor(in.Title, verr)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	episode, err := s.repo.GetBySlug(ctx, currentSlug)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		episode.Title = *in.Title
	}
	if in.Description != nil {
		episode.Description = *in.Description
	}
	if in.Host != nil {
		episode.Host = *in.Host
	}
	if in.Category != nil {
		episode.Category = *in.Category
	}
	if seconds >= 0 {
		episode.Duration = seconds
	}
	switch {
	case newSlug != "":
		episode.Slug = newSlug
	case episode.Slug == "":
		episode.Slug = slug.Make(episode.Title)
	}

	if err := s.attach(ctx, episode, in, media, origin); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, episode); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.publish(ctx, events.PodcastUpdated, episode.Slug, episode.ID, episode)
	return episode, nil
}

// Delete removes the episode with the given slug or returns ErrNotFound
func (s *PodcastService) Delete(ctx context.Context, slug string) error {
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.publish(ctx, events.PodcastDeleted, slug, "", nil)
	return nil
}

// cleaned returns the input with every text field cleaned for storage. Blank
// fields become nil.
func (in PodcastInput) cleaned(verr *ValidationError) PodcastInput {
	out := PodcastInput{
		Title:       supplied(verr, "title", in.Title, cleanLine),
		Description: supplied(verr, "description", in.Description, cleanBody),
		Host:        supplied(verr, "host", in.Host, cleanLine),
		Category:    supplied(verr, "category", in.Category, cleanLine),
		Duration:    in.Duration,
		AudioURL:    present(in.AudioURL),
	}
	if out.Duration != nil && blank((*string)(out.Duration)) {
		out.Duration = nil
	}
	return out
}

// attach stores uploaded files and points the episode at them. An uploaded
// audio file wins over audioUrl.
func (s *PodcastService) attach(ctx context.Context, episode *models.PodcastEpisode, in PodcastInput, media PodcastMedia, origin Origin) error {
	if media.Image != nil {
		key, link, err := s.store(ctx, media.Image, origin)
		if err != nil {
			return fmt.Errorf("store podcast cover: %w", err)
		}
		episode.Image, episode.ImageURL = key, link
	}

	switch {
	case media.Audio != nil:
		key, link, err := s.store(ctx, media.Audio, origin)
		if err != nil {
			return fmt.Errorf("store podcast audio: %w", err)
		}
		episode.Audio, episode.AudioURL = key, link
	case !blank(in.AudioURL):
		episode.Audio, episode.AudioURL = "", trimmed(in.AudioURL)
	}
	return nil
}

func checkAudioURL(raw *string, verr *ValidationError) {
	u, err := url.Parse(trimmed(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		verr.Add("audioUrl", "audioUrl must be an absolute http(s) URL")
	}
}
