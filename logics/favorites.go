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
	"github.com/gorse-io/pokerec/common/heap"
	"github.com/gorse-io/pokerec/dataset"
	"github.com/juju/errors"
)

// Favorites returns the n items the user rated highest, ties broken by
// ascending item id. Unrated items fill the tail if the user rated fewer
// than n items.
func Favorites(userId int, matrix *dataset.RatingMatrix, catalog *dataset.Catalog, n int) ([]Favorite, error) {
	row, ok := matrix.UserIndex(userId)
	if !ok {
		return nil, errors.Annotatef(ErrUnknownUser, "user %d", userId)
	}
	filter := heap.NewTopKFilter[int, float64](n)
	for column, rating := range matrix.Row(row) {
		filter.Push(matrix.ItemId(column), rating)
	}
	elems := filter.PopAll()
	favorites := make([]Favorite, len(elems))
	for i, elem := range elems {
		favorites[i] = Favorite{
			Item:   lookupItem(catalog, elem.Value),
			Rating: elem.Weight,
		}
	}
	return favorites, nil
}
