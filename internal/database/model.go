package database

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cerodriguez46/devbyte/internal/domain"
	"github.com/go-playground/validator/v10"
)

// DatabaseVideo is a row of the videos table. URL is the primary key.
type DatabaseVideo struct {
	URL         string `json:"url" validate:"required,url"`
	Updated     string `json:"updated"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail" validate:"omitempty,url"`
}

// Metadata holds versioning info for the file store.
type Metadata struct {
	LastUpdate int64 `json:"lastUpdate"` // Unix timestamp in milliseconds
}

// WriteMode defines what a bulk write does with rows missing from the batch.
type WriteMode string

const (
	// WriteReplace makes the table exactly the written batch.
	WriteReplace WriteMode = "replace"
	// WriteUpsert inserts or overwrites by URL and keeps every other row.
	WriteUpsert WriteMode = "upsert"
)

var ErrInvalidVideo = errors.New("invalid video")

// ParseWriteMode parses a configured write mode; empty means WriteReplace.
func ParseWriteMode(s string) (WriteMode, error) {
	switch WriteMode(strings.ToLower(s)) {
	case "", WriteReplace:
		return WriteReplace, nil
	case WriteUpsert:
		return WriteUpsert, nil
	default:
		return "", fmt.Errorf("unknown write mode %q (supported: %s, %s)", s, WriteReplace, WriteUpsert)
	}
}

// AsDomainModel maps stored rows to domain videos, preserving order.
func AsDomainModel(videos []DatabaseVideo) []domain.Video {
	out := make([]domain.Video, 0, len(videos))
	for _, v := range videos {
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

// mergeVideos applies a bulk write of incoming onto existing.
// Rows keep the position of their first occurrence and the values of their last.
func mergeVideos(existing, incoming []DatabaseVideo, mode WriteMode) []DatabaseVideo {
	var merged []DatabaseVideo
	if mode == WriteUpsert {
		merged = slices.Clone(existing)
	}
	if merged == nil {
		merged = make([]DatabaseVideo, 0, len(incoming))
	}

	index := make(map[string]int, len(merged)+len(incoming))
	for i, v := range merged {
		index[v.URL] = i
	}
	for _, v := range incoming {
		if i, ok := index[v.URL]; ok {
			merged[i] = v
			continue
		}
		index[v.URL] = len(merged)
		merged = append(merged, v)
	}
	return merged
}

func validateVideos(v *validator.Validate, videos []DatabaseVideo) error {
	for i := range videos {
		if err := v.Struct(&videos[i]); err != nil {
			return fmt.Errorf("%w at index %d (url %q): %w", ErrInvalidVideo, i, videos[i].URL, err)
		}
	}
	return nil
}
