package network

import (
	"github.com/cerodriguez46/devbyte/internal/database"
	"github.com/cerodriguez46/devbyte/internal/domain"
)

// NetworkVideoContainer is the playlist payload. It is always a full snapshot.
type NetworkVideoContainer struct {
	Videos []NetworkVideo `json:"videos" validate:"dive"`
}

// NetworkVideo is a single playlist entry as sent by the server.
type NetworkVideo struct {
	Title          string  `json:"title" validate:"required"`
	Description    string  `json:"description"`
	URL            string  `json:"url" validate:"required,url"`
	Updated        string  `json:"updated"`
	Thumbnail      string  `json:"thumbnail" validate:"omitempty,url"`
	ClosedCaptions *string `json:"closedCaptions,omitempty"`
}

// AsDatabaseModel converts the playlist into stored rows, in playlist order.
func (c NetworkVideoContainer) AsDatabaseModel() []database.DatabaseVideo {
	out := make([]database.DatabaseVideo, 0, len(c.Videos))
	for _, v := range c.Videos {
		out = append(out, database.DatabaseVideo{
			URL:         v.URL,
			Updated:     v.Updated,
			Title:       v.Title,
			Description: v.Description,
			Thumbnail:   v.Thumbnail,
		})
	}
	return out
}

// AsDomainModel converts the playlist straight into domain videos.
func (c NetworkVideoContainer) AsDomainModel() []domain.Video {
	out := make([]domain.Video, 0, len(c.Videos))
	for _, v := range c.Videos {
		out = append(out, domain.Video{
			Title:       v.Title,
			Description: v.Description,
			URL:         v.URL,
			Updated:     v.Updated,
			Thumbnail:   v.Thumbnail,
		})
	}
	return out
}
