// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logics

import (
	"fmt"
	"testing"

	"github.com/gorse-io/pokerec/common/ann"
	"github.com/gorse-io/pokerec/dataset"
	"github.com/jaswdr/faker"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var testItems = []dataset.Item{
	{ItemId: 1, Name: "Bulbasaur", Type1: "Grass", Type2: "Poison"},
	{ItemId: 2, Name: "Ivysaur", Type1: "Grass", Type2: "Poison"},
	{ItemId: 3, Name: "Venusaur", Type1: "Grass", Type2: "Poison"},
	{ItemId: 10033, Name: "Venusaur", Type1: "Grass", Type2: "Poison"},
	{ItemId: 8, Name: "Wartortle", Type1: "Water"},
	{ItemId: 208, Name: "Steelix", Type1: "Steel", Type2: "Ground"},
	{ItemId: 149, Name: "Dragonite", Type1: "Dragon", Type2: "Flying"},
}

type RecommendTestSuite struct {
	suite.Suite
	catalog *dataset.Catalog
	matrix  *dataset.RatingMatrix
	model   *ann.Bruteforce
}

func (suite *RecommendTestSuite) SetupTest() {
	var err error
	suite.catalog = dataset.BuildCatalog(testItems)
	suite.matrix, err = dataset.BuildRatingMatrix([]dataset.Rating{
		{UserId: 1, ItemId: 1, Rating: 5},
		{UserId: 2, ItemId: 1, Rating: 5},
		{UserId: 2, ItemId: 2, Rating: 3},
		{UserId: 3, ItemId: 3, Rating: 4},
		{UserId: 4, ItemId: 1, Rating: 0},
		{UserId: 231, ItemId: 8, Rating: 9},
		{UserId: 231, ItemId: 208, Rating: 8},
		{UserId: 231, ItemId: 149, Rating: 7},
		{UserId: 231, ItemId: 2, Rating: 2},
		{UserId: 231, ItemId: 10033, Rating: 10},
	}, suite.catalog)
	suite.Require().NoError(err)
	suite.model, err = FitNeighborModel(suite.matrix)
	suite.Require().NoError(err)
}

func (suite *RecommendTestSuite) TestFavorites() {
	favorites, err := Favorites(231, suite.matrix, suite.catalog, 3)
	suite.NoError(err)
	suite.Equal([]Favorite{
		{Item: dataset.Item{ItemId: 8, Name: "Wartortle", Type1: "Water"}, Rating: 9},
		{Item: dataset.Item{ItemId: 208, Name: "Steelix", Type1: "Steel", Type2: "Ground"}, Rating: 8},
		{Item: dataset.Item{ItemId: 149, Name: "Dragonite", Type1: "Dragon", Type2: "Flying"}, Rating: 7},
	}, favorites)

	// unrated items fill the tail by ascending id
	favorites, err = Favorites(1, suite.matrix, suite.catalog, 3)
	suite.NoError(err)
	suite.Equal([]int{1, 2, 3}, lo.Map(favorites, func(f Favorite, _ int) int { return f.ItemId }))
	suite.Equal([]float64{5, 0, 0}, lo.Map(favorites, func(f Favorite, _ int) float64 { return f.Rating }))

	favorites, err = Favorites(1, suite.matrix, suite.catalog, 0)
	suite.NoError(err)
	suite.Empty(favorites)

	_, err = Favorites(999999, suite.matrix, suite.catalog, 3)
	suite.ErrorIs(err, ErrUnknownUser)
}

func (suite *RecommendTestSuite) TestRecommend() {
	similarity := 1 - ann.Cosine([]float64{5, 0, 0, 0, 0, 0}, []float64{5, 3, 0, 0, 0, 0})
	expected := similarity * 3 / (1 + similarity)

	for _, k := range []int{2, 4, 5, 100} {
		recommendations, err := Recommend(1, suite.matrix, suite.catalog, suite.model, k, 2)
		suite.NoError(err)
		suite.Len(recommendations, 2)
		suite.Equal(2, recommendations[0].ItemId)
		suite.Equal("Ivysaur", recommendations[0].Name)
		suite.InDelta(expected, recommendations[0].Score, 1e-12)
		suite.Equal("Weighted rating: 1.38", recommendations[0].Justification)
		suite.Equal(3, recommendations[1].ItemId)
		suite.Equal(0.0, recommendations[1].Score)
		suite.Equal("Weighted rating: 0.00", recommendations[1].Justification)
	}

	// only the user itself: nothing but zeros outside rated items
	recommendations, err := Recommend(1, suite.matrix, suite.catalog, suite.model, 1, 10)
	suite.NoError(err)
	suite.Equal([]int{2, 3, 8, 149, 208}, lo.Map(recommendations, func(r Recommendation, _ int) int { return r.ItemId }))
	for _, r := range recommendations {
		suite.Zero(r.Score)
	}
}

func (suite *RecommendTestSuite) TestRecommendExcludesRated() {
	recommendations, err := Recommend(231, suite.matrix, suite.catalog, suite.model, 5, 10)
	suite.NoError(err)
	// items 2, 8, 149 and 208 are rated, 10033 is not in the catalog
	suite.Equal([]int{1, 3}, lo.Map(recommendations, func(r Recommendation, _ int) int { return r.ItemId }))
	for _, r := range recommendations {
		suite.Zero(suite.matrix.Get(231, r.ItemId))
	}
}

func (suite *RecommendTestSuite) TestRecommendErrors() {
	_, err := Recommend(999999, suite.matrix, suite.catalog, suite.model, 5, 5)
	suite.ErrorIs(err, ErrUnknownUser)
	suite.True(errors.Is(err, errors.NotFound))

	// user 4 only has a zero rating, so every neighbor is at distance 1
	_, err = Recommend(4, suite.matrix, suite.catalog, suite.model, 5, 5)
	suite.ErrorIs(err, ErrDegenerateNeighborhood)

	_, err = Recommend(1, suite.matrix, suite.catalog, suite.model, 0, 5)
	suite.ErrorIs(err, ann.ErrInvalidQuery)

	other, err := dataset.BuildRatingMatrix([]dataset.Rating{{UserId: 1, ItemId: 1, Rating: 1}}, suite.catalog)
	suite.NoError(err)
	_, err = Recommend(1, other, suite.catalog, suite.model, 5, 5)
	suite.ErrorIs(err, ann.ErrInvalidQuery)
}

func (suite *RecommendTestSuite) TestRecommendEmpty() {
	recommendations, err := Recommend(1, suite.matrix, suite.catalog, suite.model, 5, 0)
	suite.NoError(err)
	suite.Empty(recommendations)
}

func (suite *RecommendTestSuite) TestNeighborModel() {
	row, _ := suite.matrix.UserIndex(2)
	neighbors, err := suite.model.Search(suite.matrix.Row(row), suite.matrix.CountUsers())
	suite.NoError(err)
	suite.Len(neighbors, suite.matrix.CountUsers())
	suite.Equal(row, neighbors[0].A)
	suite.Equal(0.0, neighbors[0].B)
	suite.ElementsMatch(lo.Range(suite.matrix.CountUsers()), lo.Map(neighbors, func(n lo.Tuple2[int, float64], _ int) int { return n.A }))
}

func (suite *RecommendTestSuite) TestIdempotent() {
	model, err := FitNeighborModel(suite.matrix)
	suite.NoError(err)
	for _, userId := range suite.matrix.UserIds() {
		if userId == 4 {
			continue
		}
		a, err := Recommend(userId, suite.matrix, suite.catalog, suite.model, 3, 3)
		suite.NoError(err)
		b, err := Recommend(userId, suite.matrix, suite.catalog, model, 3, 3)
		suite.NoError(err)
		suite.Equal(a, b)
	}
}

func TestRecommend(t *testing.T) {
	suite.Run(t, new(RecommendTestSuite))
}

func TestRecommendRandom(t *testing.T) {
	fake := faker.New()
	var items []dataset.Item
	for i := 1; i <= 30; i++ {
		items = append(items, dataset.Item{ItemId: i, Name: fmt.Sprintf("pokemon-%d", i), Type1: "Normal"})
	}
	var ratings []dataset.Rating
	for i := 0; i < 500; i++ {
		ratings = append(ratings, dataset.Rating{
			UserId: fake.IntBetween(1, 50),
			ItemId: fake.IntBetween(1, 30),
			Rating: float64(fake.IntBetween(1, 10)),
		})
	}
	catalog := dataset.BuildCatalog(items)
	matrix, err := dataset.BuildRatingMatrix(ratings, catalog)
	require.NoError(t, err)
	model, err := FitNeighborModel(matrix)
	require.NoError(t, err)
	for _, userId := range matrix.UserIds() {
		recommendations, err := Recommend(userId, matrix, catalog, model, 5, 5)
		require.NoError(t, err)
		for i, r := range recommendations {
			assert.Zero(t, matrix.Get(userId, r.ItemId), "user %d", userId)
			if i > 0 {
				assert.GreaterOrEqual(t, recommendations[i-1].Score, r.Score, "user %d", userId)
			}
		}
		favorites, err := Favorites(userId, matrix, catalog, 5)
		require.NoError(t, err)
		for i := 1; i < len(favorites); i++ {
			assert.GreaterOrEqual(t, favorites[i-1].Rating, favorites[i].Rating, "user %d", userId)
		}
	}
}
