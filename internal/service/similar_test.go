package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"media_catalog/internal/domain"
	"media_catalog/internal/service/mocks"
	"media_catalog/internal/storage/memory"
)

type RankerTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *memory.Store
	ranker *Ranker
}

func (s *RankerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.ranker = NewRanker(s.store, map[domain.MediaType]string{
		domain.MediaTypeMovie: "Popular Movies",
		domain.MediaTypeTV:    "Popular TV",
	}, 6)
}

func TestRankerTestSuite(t *testing.T) {
	suite.Run(t, new(RankerTestSuite))
}

func (s *RankerTestSuite) insert(mt domain.MediaType, id int64, popularity float64, genres []int64, categories ...string) {
	_, err := s.store.Insert(s.ctx, domain.CatalogItem{
		MediaType:  mt,
		ExternalID: id,
		Title:      "Item",
		PosterURL:  "https://img/p.jpg",
		Popularity: popularity,
		GenreIDs:   genres,
		Categories: categories,
		CachedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
}

func externalIDs(items []domain.CatalogItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ExternalID)
	}
	return ids
}

func (s *RankerTestSuite) TestSimilarTo_OrdersByOverlapThenPopularity() {
	s.insert(domain.MediaTypeMovie, 1, 50, []int64{28, 12}, "Action Movies")
	s.insert(domain.MediaTypeMovie, 2, 10, []int64{28}, "Action Movies")
	s.insert(domain.MediaTypeMovie, 3, 5, []int64{28, 12}, "Action Movies")
	s.insert(domain.MediaTypeMovie, 4, 100, []int64{99}, "Popular Movies")

	got, err := s.ranker.SimilarTo(s.ctx, domain.MediaTypeMovie, 1, 2)

	s.Require().NoError(err)
	s.Equal([]int64{3, 2}, externalIDs(got))
}

func (s *RankerTestSuite) TestSimilarTo_ExcludesSourceAndOtherMediaType() {
	s.insert(domain.MediaTypeMovie, 1, 50, []int64{18}, "Drama Movies")
	s.insert(domain.MediaTypeTV, 2, 90, []int64{18}, "Drama TV")
	s.insert(domain.MediaTypeMovie, 3, 5, []int64{18}, "Drama Movies")

	got, err := s.ranker.SimilarTo(s.ctx, domain.MediaTypeMovie, 1, 0)

	s.Require().NoError(err)
	s.Equal([]int64{3}, externalIDs(got))
}

func (s *RankerTestSuite) TestSimilarTo_DefaultLimit() {
	s.insert(domain.MediaTypeMovie, 1, 1, []int64{35}, "Comedy Movies")
	for id := int64(2); id <= 10; id++ {
		s.insert(domain.MediaTypeMovie, id, float64(id), []int64{35}, "Comedy Movies")
	}

	got, err := s.ranker.SimilarTo(s.ctx, domain.MediaTypeMovie, 1, 0)

	s.Require().NoError(err)
	s.Equal([]int64{10, 9, 8, 7, 6, 5}, externalIDs(got))
}

func (s *RankerTestSuite) TestSimilarTo_UnknownSourceFallsBackToPopular() {
	s.insert(domain.MediaTypeMovie, 1, 10, []int64{28}, "Popular Movies")
	s.insert(domain.MediaTypeMovie, 2, 30, []int64{35}, "Popular Movies")
	s.insert(domain.MediaTypeMovie, 3, 99, []int64{28}, "Action Movies")

	got, err := s.ranker.SimilarTo(s.ctx, domain.MediaTypeMovie, 404, 5)

	s.Require().NoError(err)
	s.Equal([]int64{2, 1}, externalIDs(got))
}

func (s *RankerTestSuite) TestSimilarTo_SourceWithoutGenresFallsBackToPopular() {
	s.insert(domain.MediaTypeTV, 1, 10, nil, "Popular TV")
	s.insert(domain.MediaTypeTV, 2, 30, []int64{18}, "Popular TV")

	got, err := s.ranker.SimilarTo(s.ctx, domain.MediaTypeTV, 1, 1)

	s.Require().NoError(err)
	s.Equal([]int64{2}, externalIDs(got))
}

func (s *RankerTestSuite) TestSimilarTo_NoOverlapReturnsEmpty() {
	s.insert(domain.MediaTypeMovie, 1, 10, []int64{28}, "Action Movies")
	s.insert(domain.MediaTypeMovie, 2, 30, []int64{35}, "Comedy Movies")

	got, err := s.ranker.SimilarTo(s.ctx, domain.MediaTypeMovie, 1, 3)

	s.Require().NoError(err)
	s.Empty(got)
}

func (s *RankerTestSuite) TestSimilarTo_StoreError() {
	ctrl := gomock.NewController(s.T())
	items := mocks.NewMockItemStore(ctrl)
	ranker := NewRanker(items, nil, 6)

	items.EXPECT().FindByExternalID(s.ctx, domain.MediaTypeMovie, int64(1)).Return(nil, errors.New("db down"))

	_, err := ranker.SimilarTo(s.ctx, domain.MediaTypeMovie, 1, 3)
	s.Error(err)
}
