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
	"sync"

	"github.com/gorse-io/pokerec/common/ann"
	"github.com/gorse-io/pokerec/dataset"
	"github.com/juju/errors"
)

// Session owns the catalog, the rating matrix and the neighbor model built
// from them. Queries run against a consistent snapshot of the three, and
// AddRatings replaces the snapshot as a whole.
type Session struct {
	mu         sync.RWMutex
	items      []dataset.Item
	ratings    []dataset.Rating
	catalog    *dataset.Catalog
	matrix     *dataset.RatingMatrix
	model      *ann.Bruteforce
	generation uint64
}

// NewSession builds the catalog and the rating matrix and fits the model.
func NewSession(items []dataset.Item, ratings []dataset.Rating) (*Session, error) {
	s := &Session{items: items}
	if err := s.rebuild(ratings); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) rebuild(ratings []dataset.Rating) error {
	catalog := dataset.BuildCatalog(s.items)
	matrix, err := dataset.BuildRatingMatrix(ratings, catalog)
	if err != nil {
		return errors.Trace(err)
	}
	model, err := FitNeighborModel(matrix)
	if err != nil {
		return errors.Trace(err)
	}
	s.ratings = ratings
	s.catalog, s.matrix, s.model = catalog, matrix, model
	s.generation++
	return nil
}

// Generation counts successful rebuilds. Results computed after reading
// generation g come from snapshot g or a later one.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *Session) snapshot() (*dataset.Catalog, *dataset.RatingMatrix, *ann.Bruteforce) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog, s.matrix, s.model
}

func (s *Session) Catalog() *dataset.Catalog {
	catalog, _, _ := s.snapshot()
	return catalog
}

func (s *Session) Matrix() *dataset.RatingMatrix {
	_, matrix, _ := s.snapshot()
	return matrix
}

// AddRatings appends ratings to the raw feed, rebuilds the matrix and refits
// the model. The previous state is kept if the rebuild fails.
func (s *Session) AddRatings(ratings []dataset.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := make([]dataset.Rating, 0, len(s.ratings)+len(ratings))
	merged = append(merged, s.ratings...)
	merged = append(merged, ratings...)
	return s.rebuild(merged)
}

func (s *Session) Favorites(userId, n int) ([]Favorite, error) {
	catalog, matrix, _ := s.snapshot()
	return Favorites(userId, matrix, catalog, n)
}

func (s *Session) Recommend(userId, k, n int) ([]Recommendation, error) {
	catalog, matrix, model := s.snapshot()
	return Recommend(userId, matrix, catalog, model, k, n)
}
