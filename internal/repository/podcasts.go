package repository

import (
	"context"
	"fmt"

	"github.com/bilgisen/radiocast/internal/content"
	"github.com/bilgisen/radiocast/internal/models"
	"gorm.io/gorm"
)

// PodcastRepository stores episodes in the podcast_episodes table
type PodcastRepository struct {
	db *gorm.DB
}

func NewPodcastRepository(db *gorm.DB) *PodcastRepository {
	return &PodcastRepository{db: db}
}

// List returns the requested page, newest first, and the total
// number of matching episodes
func (r *PodcastRepository) List(ctx context.Context, q content.ListQuery) ([]models.PodcastEpisode, int64, error) {
	var total int64
	if err := r.filtered(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count podcasts: %w", err)
	}

	var episodes []models.PodcastEpisode
	err := r.filtered(ctx, q).Scopes(paginate(q)).
		Order("created_at DESC").
		Find(&episodes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list podcasts: %w", err)
	}
	return episodes, total, nil
}

func (r *PodcastRepository) filtered(ctx context.Context, q content.ListQuery) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.PodcastEpisode{}).
		Scopes(search(q.Search, "title", "description", "host"), category(q.Category))
}

func (r *PodcastRepository) GetBySlug(ctx context.Context, slug string) (*models.PodcastEpisode, error) {
	var episode models.PodcastEpisode
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&episode).Error; err != nil {
		return nil, translate(err)
	}
	return &episode, nil
}

func (r *PodcastRepository) Create(ctx context.Context, episode *models.PodcastEpisode) error {
	return translate(r.db.WithContext(ctx).Create(episode).Error)
}

// Update writes every column of the episode, matched by ID. It never inserts:
// an episode deleted since it was loaded yields ErrNotFound.
func (r *PodcastRepository) Update(ctx context.Context, episode *models.PodcastEpisode) error {
	res := r.db.WithContext(ctx).Model(episode).
		Where("id = ?", episode.ID).
		Select("*").Omit("created_at").
		Updates(episode)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return content.ErrNotFound
	}
	return nil
}

func (r *PodcastRepository) DeleteBySlug(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.PodcastEpisode{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return content.ErrNotFound
	}
	return nil
}
