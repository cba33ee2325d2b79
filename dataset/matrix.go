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

package dataset

import (
	"slices"

	"github.com/bits-and-blooms/bitset"
	"github.com/gorse-io/pokerec/base/log"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrDataIntegrity is returned when raw data yields no usable ratings.
const ErrDataIntegrity = errors.ConstError("data integrity")

// Rating is a raw rating record.
type Rating struct {
	UserId int
	ItemId int
	Rating float64
}

// RatingMatrix is a dense user×item rating matrix. Rows are users sorted by id
// and columns are items sorted by id. A zero cell means "no rating".
type RatingMatrix struct {
	users  *Dict
	items  *Dict
	values [][]float64
	rated  []*bitset.BitSet
}

// BuildRatingMatrix joins ratings with the catalog and pivots them into a
// dense matrix. Ratings of unknown items are dropped. Several ratings of the
// same user and item are averaged.
func BuildRatingMatrix(ratings []Rating, catalog *Catalog) (*RatingMatrix, error) {
	// Join with catalog
	joined := make([]Rating, 0, len(ratings))
	for _, rating := range ratings {
		if catalog.Contains(rating.ItemId) {
			joined = append(joined, rating)
		}
	}
	if dropped := len(ratings) - len(joined); dropped > 0 {
		log.Logger().Debug("drop ratings of unknown items", zap.Int("n_dropped", dropped))
	}
	if len(joined) == 0 {
		return nil, errors.Annotatef(ErrDataIntegrity, "no rating matches the catalog of %d items", catalog.Count())
	}

	// Index users and items in ascending order
	m := &RatingMatrix{
		users: sortedDict(joined, func(r Rating) int { return r.UserId }),
		items: sortedDict(joined, func(r Rating) int { return r.ItemId }),
	}

	// Pivot
	counts := make([][]int, m.users.Count())
	m.values = make([][]float64, m.users.Count())
	for i := range m.values {
		m.values[i] = make([]float64, m.items.Count())
		counts[i] = make([]int, m.items.Count())
	}
	for _, rating := range joined {
		u, _ := m.users.Index(rating.UserId)
		i, _ := m.items.Index(rating.ItemId)
		m.values[u][i] += rating.Rating
		counts[u][i]++
	}
	m.rated = make([]*bitset.BitSet, m.users.Count())
	for u := range m.values {
		m.rated[u] = bitset.New(uint(m.items.Count()))
		for i, n := range counts[u] {
			if n > 1 {
				m.values[u][i] /= float64(n)
			}
			if m.values[u][i] > 0 {
				m.rated[u].Set(uint(i))
			}
		}
	}
	log.Logger().Debug("build rating matrix",
		zap.Int("n_users", m.users.Count()),
		zap.Int("n_items", m.items.Count()),
		zap.Int("n_ratings", len(joined)))
	return m, nil
}

func sortedDict(ratings []Rating, key func(Rating) int) *Dict {
	ids := lo.Uniq(lo.Map(ratings, func(rating Rating, _ int) int {
		return key(rating)
	}))
	slices.Sort(ids)
	dict := NewDict()
	for _, id := range ids {
		dict.Add(id)
	}
	return dict
}

func (m *RatingMatrix) CountUsers() int {
	return m.users.Count()
}

func (m *RatingMatrix) CountItems() int {
	return m.items.Count()
}

// UserIds returns the user id of every row.
func (m *RatingMatrix) UserIds() []int {
	return m.users.Ids()
}

// ItemIds returns the item id of every column.
func (m *RatingMatrix) ItemIds() []int {
	return m.items.Ids()
}

func (m *RatingMatrix) UserIndex(userId int) (int, bool) {
	return m.users.Index(userId)
}

func (m *RatingMatrix) ItemIndex(itemId int) (int, bool) {
	return m.items.Index(itemId)
}

func (m *RatingMatrix) UserId(row int) int {
	id, _ := m.users.Id(row)
	return id
}

func (m *RatingMatrix) ItemId(column int) int {
	id, _ := m.items.Id(column)
	return id
}

// Row returns the ratings of a user. The slice is shared with the matrix and
// must not be modified.
func (m *RatingMatrix) Row(row int) []float64 {
	return m.values[row]
}

// Rated returns the columns a user rated above zero.
func (m *RatingMatrix) Rated(row int) *bitset.BitSet {
	return m.rated[row]
}

// Get returns the rating of a user for an item, or zero if either is unknown.
func (m *RatingMatrix) Get(userId, itemId int) float64 {
	u, ok := m.users.Index(userId)
	if !ok {
		return 0
	}
	i, ok := m.items.Index(itemId)
	if !ok {
		return 0
	}
	return m.values[u][i]
}
