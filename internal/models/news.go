package models

import "time"

// NewsArticle represents a published news article
type NewsArticle struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Summary     string    `json:"summary" gorm:"type:text;not null"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	Category    string    `json:"category" gorm:"size:100;not null;index"`
	Author      string    `json:"author" gorm:"size:255;not null"`
	PublishedAt time.Time `json:"datetime" gorm:"not null;index"`
	Image       string    `json:"image,omitempty" gorm:"size:255"` // stored filename
	ImageURL    string    `json:"imageUrl,omitempty" gorm:"size:1024"`
	Slug        string    `json:"slug" gorm:"size:255;not null;uniqueIndex"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName gives the table name explicitly.
func (NewsArticle) TableName() string {
	return "news_articles"
}
