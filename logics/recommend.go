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

	"github.com/gorse-io/pokerec/dataset"
	"github.com/juju/errors"
)

var ErrUnknownUser = errors.NotFoundf("user")

// ErrDegenerateNeighborhood is returned when the similarity weights of all
// neighbors sum to zero.
const ErrDegenerateNeighborhood = errors.ConstError("degenerate neighborhood")

// Favorite is an item rated by the user, with the user's own rating.
type Favorite struct {
	dataset.Item
	Rating float64
}

// Recommendation is an item the user has not rated. Score is the weighted
// rating of the item among the user's neighbors.
type Recommendation struct {
	dataset.Item
	Score         float64
	Justification string
}

func newRecommendation(item dataset.Item, score float64) Recommendation {
	return Recommendation{
		Item:          item,
		Score:         score,
		Justification: fmt.Sprintf("Weighted rating: %.2f", score),
	}
}

func lookupItem(catalog *dataset.Catalog, itemId int) dataset.Item {
	if item, ok := catalog.Get(itemId); ok {
		return item
	}
	return dataset.Item{ItemId: itemId}
}
