package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"media_catalog/internal/domain"
	"media_catalog/internal/service/mocks"
	"media_catalog/internal/testutil"
)

func TestPickTrailer(t *testing.T) {
	tests := []struct {
		name    string
		videos  []domain.Video
		wantKey string
	}{
		{
			name: "official trailer beats earlier unofficial one",
			videos: []domain.Video{
				{Key: "teaser", Site: "YouTube", Type: "Teaser", Official: true},
				{Key: "fan", Site: "YouTube", Type: "Trailer"},
				{Key: "vimeo", Site: "Vimeo", Type: "Trailer", Official: true},
				{Key: "official", Site: "YouTube", Type: "Trailer", Official: true},
			},
			wantKey: "official",
		},
		{
			name: "first unofficial trailer when none is official",
			videos: []domain.Video{
				{Key: "clip", Site: "YouTube", Type: "Clip"},
				{Key: "first", Site: "YouTube", Type: "Trailer"},
				{Key: "second", Site: "YouTube", Type: "Trailer"},
			},
			wantKey: "first",
		},
		{
			name: "no qualifying video",
			videos: []domain.Video{
				{Key: "bts", Site: "YouTube", Type: "Behind the Scenes", Official: true},
				{Key: "vimeo", Site: "Vimeo", Type: "Trailer"},
			},
		},
		{
			name: "empty list",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PickTrailer(tt.videos)
			if tt.wantKey == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantKey, got.Key)
		})
	}
}

func TestResolveTrailer(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	resolver := NewTrailerResolver(provider, testutil.DiscardLogger())
	ctx := context.Background()

	provider.EXPECT().Videos(ctx, domain.MediaTypeMovie, int64(27205)).Return([]domain.Video{
		{Key: "YoHD9XEInc0", Site: "YouTube", Type: "Trailer", Official: true},
	}, nil)
	provider.EXPECT().Videos(ctx, domain.MediaTypeTV, int64(1399)).Return(nil, errors.New("timeout"))
	provider.EXPECT().Videos(ctx, domain.MediaTypeTV, int64(1400)).Return([]domain.Video{}, nil)

	url := resolver.ResolveTrailer(ctx, domain.MediaTypeMovie, 27205)
	require.NotNil(t, url)
	assert.Equal(t, "https://www.youtube.com/watch?v=YoHD9XEInc0", *url)

	assert.Nil(t, resolver.ResolveTrailer(ctx, domain.MediaTypeTV, 1399))
	assert.Nil(t, resolver.ResolveTrailer(ctx, domain.MediaTypeTV, 1400))
}
