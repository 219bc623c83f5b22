package repository

import (
	"context"
	"fmt"

	"github.com/bilgisen/radiocast/internal/content"
	"github.com/bilgisen/radiocast/internal/models"
	"gorm.io/gorm"
)

// NewsRepository stores articles in the news_articles table
type NewsRepository struct {
	db *gorm.DB
}

func NewNewsRepository(db *gorm.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

// List returns the requested page, newest publish time first, and the total
// number of matching articles
func (r *NewsRepository) List(ctx context.Context, q content.ListQuery) ([]models.NewsArticle, int64, error) {
	var total int64
	if err := r.filtered(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count news: %w", err)
	}

	var articles []models.NewsArticle
	err := r.filtered(ctx, q).Scopes(paginate(q)).
		Order("published_at DESC").
		Order("created_at DESC").
		Find(&articles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list news: %w", err)
	}
	return articles, total, nil
}

func (r *NewsRepository) filtered(ctx context.Context, q content.ListQuery) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.NewsArticle{}).
		Scopes(search(q.Search, "title", "summary", "content"), category(q.Category))
}

func (r *NewsRepository) GetBySlug(ctx context.Context, slug string) (*models.NewsArticle, error) {
	var article models.NewsArticle
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&article).Error; err != nil {
		return nil, translate(err)
	}
	return &article, nil
}

func (r *NewsRepository) Create(ctx context.Context, article *models.NewsArticle) error {
	return translate(r.db.WithContext(ctx).Create(article).Error)
}

// Update writes every column of the article, matched by ID. It never inserts:
// an article deleted since it was loaded yields ErrNotFound.
func (r *NewsRepository) Update(ctx context.Context, article *models.NewsArticle) error {
	res := r.db.WithContext(ctx).Model(article).
		Where("id = ?", article.ID).
		Select("*").Omit("created_at").
		Updates(article)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return content.ErrNotFound
	}
	return nil
}

func (r *NewsRepository) DeleteBySlug(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.NewsArticle{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return content.ErrNotFound
	}
	return nil
}
