package network

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	SourceTypeDevBytes = "devbytes"
	SourceTypeYouTube  = "youtube"
)

var (
	ErrUnexpectedStatus  = errors.New("unexpected response status")
	ErrMalformedPlaylist = errors.New("malformed playlist")
	ErrSourceUnavailable = errors.New("playlist source unavailable")
	ErrUnknownSourceType = errors.New("unknown source type")
	ErrInvalidPlaylistID = errors.New("invalid playlist id")
)

// PlaylistSource returns the complete remote playlist.
type PlaylistSource interface {
	GetPlaylist(ctx context.Context) (*NetworkVideoContainer, error)
}

// Options selects and configures a PlaylistSource.
type Options struct {
	Type       string
	BaseURL    string
	PlaylistID string
	Timeout    time.Duration
}

// NewPlaylistSource creates the source named by opts.Type.
func NewPlaylistSource(opts Options) (PlaylistSource, error) {
	switch opts.Type {
	case SourceTypeDevBytes, "":
		return NewDevByteService(opts.BaseURL, opts.Timeout)
	case SourceTypeYouTube:
		return NewYouTubeSource(opts.PlaylistID, opts.Timeout)
	default:
		return nil, fmt.Errorf("%w: %s (supported: %s, %s)", ErrUnknownSourceType, opts.Type, SourceTypeDevBytes, SourceTypeYouTube)
	}
}
