package models

import "time"

// PodcastEpisode represents an episode with its cover art and audio reference.
// Duration is stored in seconds and is never negative.
type PodcastEpisode struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Host        string    `json:"host" gorm:"size:255;not null"`
	Duration    int       `json:"duration" gorm:"not null;check:duration >= 0"`
	Category    string    `json:"category" gorm:"size:100;not null;index"`
	Image       string    `json:"image,omitempty" gorm:"size:255"`
	ImageURL    string    `json:"imageUrl,omitempty" gorm:"size:1024"`
	Audio       string    `json:"audio,omitempty" gorm:"size:255"`
	AudioURL    string    `json:"audioUrl,omitempty" gorm:"size:1024"`
	Slug        string    `json:"slug" gorm:"size:255;not null;uniqueIndex"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName gives the table name explicitly.
func (PodcastEpisode) TableName() string {
	return "podcast_episodes"
}
