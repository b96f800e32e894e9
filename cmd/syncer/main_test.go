package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media_catalog/internal/domain"
)

func TestParseItemRef(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		wantMT  domain.MediaType
		wantID  int64
		wantErr bool
	}{
		{name: "movie", ref: "movie:550", wantMT: domain.MediaTypeMovie, wantID: 550},
		{name: "tv", ref: "tv:1399", wantMT: domain.MediaTypeTV, wantID: 1399},
		{name: "missing separator", ref: "movie550", wantErr: true},
		{name: "unknown media type", ref: "person:287", wantErr: true},
		{name: "non-numeric id", ref: "movie:fight-club", wantErr: true},
		{name: "zero id", ref: "movie:0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mt, id, err := parseItemRef(tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMT, mt)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
