package network

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cerodriguez46/devbyte/internal/logger"
	"github.com/ytget/ytdlp/v2"
)

const (
	youTubeWatchURL     = "https://www.youtube.com/watch?v=%s"
	youTubeThumbnailURL = "https://i.ytimg.com/vi/%s/hqdefault.jpg"
	playlistURLParam    = "list="
)

var playlistIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type playlistEntry struct {
	VideoID string
	Title   string
}

type playlistFetcher func(ctx context.Context, playlistID string) ([]playlistEntry, error)

// YouTubeSource reads a public YouTube playlist.
// YouTube listings carry no description or update time; those fields stay empty.
type YouTubeSource struct {
	playlistID string
	timeout    time.Duration
	fetch      playlistFetcher
}

// NewYouTubeSource accepts a bare playlist id or any URL carrying a list= parameter.
func NewYouTubeSource(playlist string, timeout time.Duration) (*YouTubeSource, error) {
	id := extractPlaylistID(playlist)
	if !playlistIDPattern.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlaylistID, playlist)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &YouTubeSource{playlistID: id, timeout: timeout, fetch: fetchWithYTDLP}, nil
}

// PlaylistID returns the normalized playlist id.
func (s *YouTubeSource) PlaylistID() string {
	return s.playlistID
}

func (s *YouTubeSource) GetPlaylist(ctx context.Context) (*NetworkVideoContainer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	logger.WithComponent("youtube-source").Debugf("fetching playlist %s", s.playlistID)
	entries, err := s.fetch(ctx, s.playlistID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("fetch youtube playlist %s: %w", s.playlistID, ctxErr)
		}
		return nil, fmt.Errorf("%w: youtube playlist %s: %w", ErrSourceUnavailable, s.playlistID, err)
	}

	videos := make([]NetworkVideo, 0, len(entries))
	for _, e := range entries {
		if e.VideoID == "" {
			continue
		}
		title := e.Title
		if title == "" {
			title = e.VideoID
		}
		videos = append(videos, NetworkVideo{
			Title:     title,
			URL:       fmt.Sprintf(youTubeWatchURL, e.VideoID),
			Thumbnail: fmt.Sprintf(youTubeThumbnailURL, e.VideoID),
		})
	}
	logger.WithComponent("youtube-source").Debugf("playlist %s has %d videos", s.playlistID, len(videos))
	return &NetworkVideoContainer{Videos: videos}, nil
}

func fetchWithYTDLP(ctx context.Context, playlistID string) ([]playlistEntry, error) {
	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}
	entries := make([]playlistEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, playlistEntry{VideoID: it.VideoID, Title: it.Title})
	}
	return entries, nil
}

func extractPlaylistID(s string) string {
	s = strings.TrimSpace(s)
	if _, after, ok := strings.Cut(s, playlistURLParam); ok {
		id, _, _ := strings.Cut(after, "&")
		return id
	}
	return s
}
