package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cerodriguez46/devbyte/internal/logger"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultDevByteBaseURL = "https://android-kotlin-fun-mooc.appspot.com"
	DefaultTimeout        = 15 * time.Second

	playlistPath    = "devbytes"
	maxPlaylistSize = 10 << 20
)

// DevByteService fetches the DevBytes playlist over HTTP.
type DevByteService struct {
	endpoint  string
	client    *http.Client
	validator *validator.Validate
}

// NewDevByteService creates a client for baseURL; the playlist is read from <baseURL>/devbytes.
func NewDevByteService(baseURL string, timeout time.Duration) (*DevByteService, error) {
	if baseURL == "" {
		baseURL = DefaultDevByteBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https, got %q", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &DevByteService{
		endpoint:  u.JoinPath(playlistPath).String(),
		client:    &http.Client{Timeout: timeout},
		validator: validator.New(),
	}, nil
}

// Endpoint returns the playlist URL.
func (s *DevByteService) Endpoint() string {
	return s.endpoint
}

func (s *DevByteService) GetPlaylist(ctx context.Context) (*NetworkVideoContainer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build playlist request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	logger.WithComponent("devbyte-service").Debugf("GET %s", s.endpoint)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %d from %s: %s", ErrUnexpectedStatus, resp.StatusCode, s.endpoint, strings.TrimSpace(string(snippet)))
	}

	var playlist NetworkVideoContainer
	decoder := json.NewDecoder(io.LimitReader(resp.Body, maxPlaylistSize))
	if err := decoder.Decode(&playlist); err != nil {
		// a cancelled request surfaces while reading the body
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: decode: %w", ErrMalformedPlaylist, err)
	}
	if playlist.Videos == nil {
		return nil, fmt.Errorf("%w: missing videos", ErrMalformedPlaylist)
	}
	if err := s.validator.Struct(&playlist); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return nil, fmt.Errorf("%w: %d invalid field(s): %w", ErrMalformedPlaylist, len(validationErrs), err)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedPlaylist, err)
	}

	logger.WithComponent("devbyte-service").Debugf("received playlist with %d videos", len(playlist.Videos))
	return &playlist, nil
}
