package network

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlaylist() NetworkVideoContainer {
	return NetworkVideoContainer{Videos: []NetworkVideo{
		{Title: "A", Description: "about a", URL: "https://v.example/a", Updated: "2018-01-01", Thumbnail: "https://i.example/a.jpg"},
		{Title: "B", Description: "about b", URL: "https://v.example/b", Updated: "2018-01-02", Thumbnail: "https://i.example/b.jpg"},
	}}
}

func TestAsDatabaseModel(t *testing.T) {
	rows := samplePlaylist().AsDatabaseModel()

	require.Len(t, rows, 2)
	assert.Equal(t, "https://v.example/a", rows[0].URL)
	assert.Equal(t, "A", rows[0].Title)
	assert.Equal(t, "about a", rows[0].Description)
	assert.Equal(t, "2018-01-01", rows[0].Updated)
	assert.Equal(t, "https://i.example/a.jpg", rows[0].Thumbnail)
	assert.Equal(t, "https://v.example/b", rows[1].URL)
}

func TestAsDomainModel(t *testing.T) {
	videos := samplePlaylist().AsDomainModel()

	require.Len(t, videos, 2)
	assert.Equal(t, "B", videos[1].Title)
	assert.Equal(t, "https://v.example/b", videos[1].URL)
}

func TestConversions_Empty(t *testing.T) {
	var empty NetworkVideoContainer
	assert.NotNil(t, empty.AsDatabaseModel())
	assert.Empty(t, empty.AsDatabaseModel())
	assert.Empty(t, empty.AsDomainModel())
}

func TestNewPlaylistSource(t *testing.T) {
	src, err := NewPlaylistSource(Options{Type: SourceTypeDevBytes, BaseURL: "https://example.com", Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &DevByteService{}, src)

	src, err = NewPlaylistSource(Options{Type: SourceTypeYouTube, PlaylistID: "PLabc", Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &YouTubeSource{}, src)

	_, err = NewPlaylistSource(Options{Type: SourceTypeYouTube})
	assert.ErrorIs(t, err, ErrInvalidPlaylistID)

	_, err = NewPlaylistSource(Options{Type: "rss"})
	assert.ErrorIs(t, err, ErrUnknownSourceType)
}
