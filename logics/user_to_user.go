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
	"github.com/gorse-io/pokerec/base/log"
	"github.com/gorse-io/pokerec/common/ann"
	"github.com/gorse-io/pokerec/common/heap"
	"github.com/gorse-io/pokerec/dataset"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// FitNeighborModel indexes every user row of the matrix by cosine distance.
// The index keeps its own copy of the rows.
func FitNeighborModel(matrix *dataset.RatingMatrix) (*ann.Bruteforce, error) {
	index := ann.NewBruteforce(ann.Cosine)
	for row := 0; row < matrix.CountUsers(); row++ {
		if _, err := index.Add(matrix.Row(row)); err != nil {
			return nil, errors.Trace(err)
		}
	}
	log.Logger().Debug("fit neighbor model",
		zap.Int("n_users", index.Count()), zap.Int("dimension", index.Dimension()))
	return index, nil
}

// Recommend aggregates the ratings of the k users nearest to the target user,
// weighted by cosine similarity, and returns the n best items the target user
// has not rated. The target user is its own nearest neighbor with weight 1.
// k is clamped to the number of users.
func Recommend(userId int, matrix *dataset.RatingMatrix, catalog *dataset.Catalog, model *ann.Bruteforce, k, n int) ([]Recommendation, error) {
	row, ok := matrix.UserIndex(userId)
	if !ok {
		return nil, errors.Annotatef(ErrUnknownUser, "user %d", userId)
	}
	if model.Count() != matrix.CountUsers() {
		return nil, errors.Annotatef(ann.ErrInvalidQuery, "model fitted on %d users, matrix has %d", model.Count(), matrix.CountUsers())
	}
	neighbors, err := model.Search(matrix.Row(row), min(k, model.Count()))
	if err != nil {
		return nil, errors.Trace(err)
	}

	// Weighted ratings
	scores := make([]float64, matrix.CountItems())
	var sum float64
	for _, neighbor := range neighbors {
		weight := 1 - neighbor.B
		floats.AddScaled(scores, weight, matrix.Row(neighbor.A))
		sum += weight
	}
	if sum == 0 {
		return nil, errors.Annotatef(ErrDegenerateNeighborhood, "user %d with %d neighbors", userId, len(neighbors))
	}

	// Skip rated items
	rated := matrix.Rated(row)
	filter := heap.NewTopKFilter[int, float64](n)
	for column, score := range scores {
		if !rated.Test(uint(column)) {
			filter.Push(matrix.ItemId(column), score/sum)
		}
	}
	elems := filter.PopAll()
	recommendations := make([]Recommendation, len(elems))
	for i, elem := range elems {
		recommendations[i] = newRecommendation(lookupItem(catalog, elem.Value), elem.Weight)
	}
	return recommendations, nil
}
