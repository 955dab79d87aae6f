package network

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewYouTubeSource_PlaylistID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"PLWz5rJ2EKKc_xXXubDti2eRnIKU0p7wHd", "PLWz5rJ2EKKc_xXXubDti2eRnIKU0p7wHd", false},
		{"https://www.youtube.com/playlist?list=PLabc-123", "PLabc-123", false},
		{"https://www.youtube.com/watch?v=xyz&list=PLabc&index=2", "PLabc", false},
		{"", "", true},
		{"not a playlist!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			s, err := NewYouTubeSource(tt.in, time.Second)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPlaylistID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.PlaylistID())
		})
	}
}

func TestYouTubeSource_GetPlaylist(t *testing.T) {
	s, err := NewYouTubeSource("PLabc", time.Second)
	require.NoError(t, err)

	var gotID string
	s.fetch = func(ctx context.Context, playlistID string) ([]playlistEntry, error) {
		gotID = playlistID
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline, "fetch runs under the source timeout")
		return []playlistEntry{
			{VideoID: "SKWh4ckvFPM", Title: "Room"},
			{VideoID: "", Title: "deleted video"},
			{VideoID: "OMcDk2_4LSk", Title: "LiveData"},
		}, nil
	}

	playlist, err := s.GetPlaylist(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "PLabc", gotID)
	require.Len(t, playlist.Videos, 2)
	assert.Equal(t, NetworkVideo{
		Title:     "Room",
		URL:       "https://www.youtube.com/watch?v=SKWh4ckvFPM",
		Thumbnail: "https://i.ytimg.com/vi/SKWh4ckvFPM/hqdefault.jpg",
	}, playlist.Videos[0])
	assert.Equal(t, "LiveData", playlist.Videos[1].Title)
}

func TestYouTubeSource_GetPlaylistError(t *testing.T) {
	s, err := NewYouTubeSource("PLabc", time.Second)
	require.NoError(t, err)

	sentinel := errors.New("rate limited")
	s.fetch = func(context.Context, string) ([]playlistEntry, error) { return nil, sentinel }

	_, err = s.GetPlaylist(context.Background())
	assert.ErrorIs(t, err, sentinel)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestYouTubeSource_GetPlaylistTimeout(t *testing.T) {
	s, err := NewYouTubeSource("PLabc", 20*time.Millisecond)
	require.NoError(t, err)

	s.fetch = func(ctx context.Context, _ string) ([]playlistEntry, error) {
		<-ctx.Done()
		return nil, errors.New("request aborted")
	}

	_, err = s.GetPlaylist(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrSourceUnavailable)
}

func TestYouTubeSource_MissingTitleFallsBackToID(t *testing.T) {
	s, err := NewYouTubeSource("PLabc", time.Second)
	require.NoError(t, err)
	s.fetch = func(context.Context, string) ([]playlistEntry, error) {
		return []playlistEntry{{VideoID: "abc123"}}, nil
	}

	playlist, err := s.GetPlaylist(context.Background())
	require.NoError(t, err)
	require.Len(t, playlist.Videos, 1)
	assert.Equal(t, "abc123", playlist.Videos[0].Title)
}
