package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsArticleJSONShape(t *testing.T) {
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	article := NewsArticle{
		ID:          "id-1",
		Title:       "Finals Tonight",
		Summary:     "Summary",
		Content:     "Content",
		Category:    "Sports",
		Author:      "Auntie B",
		PublishedAt: now,
		Image:       "abc.jpg",
		ImageURL:    "http://localhost:5000/uploads/abc.jpg",
		Slug:        "finals-tonight",
	}

	data, err := json.Marshal(article)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &result))

	// The public site reads these exact keys
	assert.Equal(t, "2025-05-01T08:00:00Z", result["datetime"])
	assert.Equal(t, "abc.jpg", result["image"])
	assert.Equal(t, "http://localhost:5000/uploads/abc.jpg", result["imageUrl"])
	assert.Equal(t, "finals-tonight", result["slug"])
}

func TestPodcastEpisodeOmitsMissingMedia(t *testing.T) {
	data, err := json.Marshal(PodcastEpisode{ID: "id-2", Title: "Morning Vibes", Duration: 1800})
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &result))

	assert.EqualValues(t, 1800, result["duration"])
	assert.NotContains(t, result, "imageUrl")
	assert.NotContains(t, result, "audioUrl")
}
