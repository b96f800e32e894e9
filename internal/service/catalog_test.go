package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"media_catalog/internal/domain"
	"media_catalog/internal/service/mocks"
	"media_catalog/internal/storage/memory"
	"media_catalog/internal/testutil"
)

type CatalogTestSuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	provider *mocks.MockProvider
	store    *memory.Store
	catalog  *Catalog
}

func (s *CatalogTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.provider = mocks.NewMockProvider(s.ctrl)
	s.store = memory.New()
	ranker := NewRanker(s.store, map[domain.MediaType]string{domain.MediaTypeMovie: "Popular Movies"}, 6)
	s.catalog = NewCatalog(s.store, s.provider, ranker, testImages, testutil.DiscardLogger())
}

func (s *CatalogTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestCatalogTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}

func (s *CatalogTestSuite) TestCast_TopTenWithProfileURLs() {
	cast := make([]domain.CastMember, 0, 14)
	for i := 0; i < 14; i++ {
		member := domain.CastMember{ID: int64(i + 1), Name: fmt.Sprintf("Actor %d", i), Order: i}
		if i != 3 {
			member.ProfilePath = fmt.Sprintf("/a%d.jpg", i)
		}
		cast = append(cast, member)
	}
	s.provider.EXPECT().Credits(s.ctx, domain.MediaTypeMovie, int64(27205)).Return(cast, nil)

	got := s.catalog.Cast(s.ctx, domain.MediaTypeMovie, 27205)

	s.Require().Len(got, 10)
	s.Equal("Actor 0", got[0].Name)
	s.Require().NotNil(got[0].ProfileURL)
	s.Equal("https://image.tmdb.org/t/p/w185/a0.jpg", *got[0].ProfileURL)
	s.Nil(got[3].ProfileURL)
}

func (s *CatalogTestSuite) TestCast_ProviderErrorYieldsEmptyList() {
	s.provider.EXPECT().Credits(s.ctx, domain.MediaTypeTV, int64(1399)).Return(nil, errors.New("timeout"))

	got := s.catalog.Cast(s.ctx, domain.MediaTypeTV, 1399)

	s.NotNil(got)
	s.Empty(got)
}

func (s *CatalogTestSuite) TestSearch_MapsRecordsWithoutCaching() {
	s.provider.EXPECT().Search(s.ctx, domain.MediaTypeMovie, "inception", 1).Return(&domain.Page{
		Page: 1,
		Records: []domain.RawRecord{
			{ExternalID: 27205, Title: "Inception", PosterPath: "/i.jpg", ReleaseDate: "2010-07-16", GenreIDs: []int64{28}},
			{ExternalID: 64956, Title: "Inception: The Cobol Job"},
		},
	}, nil)

	got, err := s.catalog.Search(s.ctx, domain.MediaTypeMovie, "inception")

	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("https://image.tmdb.org/t/p/w500/i.jpg", got[0].PosterURL)
	s.Equal(testutil.Ptr(2010), got[0].ReleaseYear)
	s.Empty(got[1].PosterURL)
	s.Empty(got[0].Categories)

	count, _ := s.store.Count(s.ctx)
	s.Zero(count)
}

func (s *CatalogTestSuite) TestSearch_TVCarriesAirDateAndEpisodes() {
	s.provider.EXPECT().Search(s.ctx, domain.MediaTypeTV, "chernobyl", 1).Return(&domain.Page{
		Page: 1,
		Records: []domain.RawRecord{{
			ExternalID:       87108,
			Title:            "Chernobyl",
			PosterPath:       "/c.jpg",
			ReleaseDate:      "2019-05-06",
			NumberOfSeasons:  testutil.Ptr(1),
			NumberOfEpisodes: testutil.Ptr(5),
		}},
	}, nil)

	got, err := s.catalog.Search(s.ctx, domain.MediaTypeTV, "chernobyl")

	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(testutil.Ptr("2019-05-06"), got[0].ReleaseDate)
	s.Equal(testutil.Ptr("2019-05-06"), got[0].FirstAirDate)
	s.Equal(testutil.Ptr(1), got[0].NumberOfSeasons)
	s.Equal(testutil.Ptr(5), got[0].NumberOfEpisodes)
	s.Nil(got[0].VideoURL)
}

func (s *CatalogTestSuite) TestSearch_ProviderError() {
	s.provider.EXPECT().Search(s.ctx, domain.MediaTypeTV, "x", 1).Return(nil, errors.New("boom"))

	_, err := s.catalog.Search(s.ctx, domain.MediaTypeTV, "x")
	s.Error(err)
}

func (s *CatalogTestSuite) TestBrowseLookupSimilar() {
	for id, genres := range map[int64][]int64{1: {28}, 2: {28}} {
		_, err := s.store.Insert(s.ctx, domain.CatalogItem{
			MediaType:  domain.MediaTypeMovie,
			ExternalID: id,
			PosterURL:  "https://img/p.jpg",
			GenreIDs:   genres,
			Categories: []string{"Popular Movies"},
		})
		s.Require().NoError(err)
	}

	browsed, err := s.catalog.Browse(s.ctx, "Popular Movies")
	s.Require().NoError(err)
	s.Len(browsed, 2)

	item, err := s.catalog.Lookup(s.ctx, domain.MediaTypeMovie, 2)
	s.Require().NoError(err)
	s.Equal(int64(2), item.ExternalID)

	_, err = s.catalog.Lookup(s.ctx, domain.MediaTypeTV, 2)
	s.ErrorIs(err, domain.ErrItemNotFound)

	similar, err := s.catalog.Similar(s.ctx, domain.MediaTypeMovie, 1, 0)
	s.Require().NoError(err)
	s.Equal([]int64{2}, externalIDs(similar))
}
