package service

import (
	"context"
	"log/slog"

	"media_catalog/internal/domain"
)

const youtubeWatchURL = "https://www.youtube.com/watch?v="

// TrailerResolver picks one representative trailer for an item.
type TrailerResolver struct {
	provider Provider
	logger   *slog.Logger
}

func NewTrailerResolver(provider Provider, logger *slog.Logger) *TrailerResolver {
	return &TrailerResolver{
		provider: provider,
		logger:   logger.With("component", "trailers"),
	}
}

// ResolveTrailer returns nil when no trailer qualifies or the lookup fails.
func (r *TrailerResolver) ResolveTrailer(ctx context.Context, mt domain.MediaType, externalID int64) *string {
	videos, err := r.provider.Videos(ctx, mt, externalID)
	if err != nil {
		r.logger.Debug("trailer lookup failed",
			"media_type", mt,
			"external_id", externalID,
			"error", err,
		)
		return nil
	}

	v := PickTrailer(videos)
	if v == nil {
		return nil
	}
	u := youtubeWatchURL + v.Key
	return &u
}

// PickTrailer prefers an official YouTube trailer, then any YouTube trailer.
func PickTrailer(videos []domain.Video) *domain.Video {
	var fallback *domain.Video
	for i := range videos {
		v := &videos[i]
		if v.Site != "YouTube" || v.Type != "Trailer" {
			continue
		}
		if v.Official {
			return v
		}
		if fallback == nil {
			fallback = v
		}
	}
	return fallback
}
