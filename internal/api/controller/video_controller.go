package controller

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/cerodriguez46/devbyte/internal/domain"
	"github.com/cerodriguez46/devbyte/internal/logger"
	"github.com/cerodriguez46/devbyte/internal/network"
	"github.com/cerodriguez46/devbyte/internal/observable"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StatusClientClosedRequest is written when the client left before the refresh finished.
const StatusClientClosedRequest = 499

// VideoRepository is what the video endpoints need from the repository.
type VideoRepository interface {
	Videos() observable.Observable[[]domain.Video]
	RefreshVideos(ctx context.Context) error
}

// VideoResponse is a video as rendered by the API.
type VideoResponse struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	ShortDescription string `json:"shortDescription"`
	URL              string `json:"url"`
	Updated          string `json:"updated"`
	Thumbnail        string `json:"thumbnail"`
}

type VideoController struct {
	repo     VideoRepository
	shutdown <-chan struct{}
}

// NewVideoController serves repo. Open streams end when shutdown is closed;
// a nil channel keeps them open until their clients leave.
func NewVideoController(repo VideoRepository, shutdown <-chan struct{}) *VideoController {
	return &VideoController{repo: repo, shutdown: shutdown}
}

// AllVideos returns the playlist currently held by the local store.
func (vc *VideoController) AllVideos(c *gin.Context) {
	c.JSON(http.StatusOK, toVideoResponses(vc.repo.Videos().Value()))
}

// RefreshVideos pulls the remote playlist into the store and returns the updated list.
func (vc *VideoController) RefreshVideos(c *gin.Context) {
	id := uuid.NewString()
	log := logger.WithComponent("video_controller").WithField("refresh", id)
	log.Debugf("refresh requested")

	if err := vc.repo.RefreshVideos(c.Request.Context()); err != nil {
		status := refreshErrorStatus(err)
		if status == StatusClientClosedRequest {
			log.Debugf("refresh abandoned by client: %v", err)
			c.AbortWithStatus(status)
			return
		}
		log.Errorf("refresh failed with HTTP %d: %v", status, err)
		c.JSON(status, gin.H{"error": refreshErrorMessage(status), "id": id})
		return
	}

	videos := vc.repo.Videos().Value()
	log.Infof("refresh completed, %d videos", len(videos))
	c.JSON(http.StatusOK, toVideoResponses(videos))
}

// StreamVideos sends the whole playlist as a "videos" Server-Sent Event on
// subscribe and again after every store change, until the client goes away
// or the server shuts down.
func (vc *VideoController) StreamVideos(c *gin.Context) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	id := uuid.NewString()
	log := logger.WithComponent("video_controller").WithField("subscriber", id)

	updates := observable.Channel(ctx, vc.repo.Videos())
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	log.Debugf("stream opened")
	for {
		select {
		case <-ctx.Done():
			log.Debugf("stream closed: %v", ctx.Err())
			return
		case <-vc.shutdown:
			log.Debugf("stream closed: server shutting down")
			return
		case videos, ok := <-updates:
			if !ok {
				log.Debugf("stream closed")
				return
			}
			c.SSEvent("videos", toVideoResponses(videos))
			c.Writer.Flush()
			log.Tracef("sent %d videos", len(videos))
		}
	}
}

func toVideoResponses(videos []domain.Video) []VideoResponse {
	out := make([]VideoResponse, 0, len(videos))
	for _, v := range videos {
		out = append(out, VideoResponse{
			Title:            v.Title,
			Description:      v.Description,
			ShortDescription: v.ShortDescription(),
			URL:              v.URL,
			Updated:          v.Updated,
			Thumbnail:        v.Thumbnail,
		})
	}
	return out
}

// refreshErrorStatus maps a refresh failure to an HTTP status.
func refreshErrorStatus(err error) int {
	if errors.Is(err, context.Canceled) {
		return StatusClientClosedRequest
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	if errors.Is(err, network.ErrUnexpectedStatus) || errors.Is(err, network.ErrMalformedPlaylist) || errors.Is(err, network.ErrSourceUnavailable) {
		return http.StatusBadGateway
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func refreshErrorMessage(status int) string {
	switch status {
	case http.StatusGatewayTimeout:
		return "refresh timed out"
	case http.StatusBadGateway:
		return "playlist source unavailable"
	default:
		return "unable to refresh videos"
	}
}
