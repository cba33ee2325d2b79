// Copyright 2024 gorse Project Authors
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

package ann

import (
	"github.com/gorse-io/pokerec/common/heap"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// ErrInvalidQuery is returned when a query does not fit the fitted index.
var ErrInvalidQuery = errors.NotValidf("query")

// Bruteforce is a naive implementation of vector index. Every query scans
// all fitted vectors, so results are exact and deterministic.
type Bruteforce struct {
	distanceFunc func(a, b []float64) float64
	dimension    int
	vectors      [][]float64
}

func NewBruteforce(distanceFunc func(a, b []float64) float64) *Bruteforce {
	return &Bruteforce{distanceFunc: distanceFunc}
}

// Add copies a vector into the index and returns its row index.
func (b *Bruteforce) Add(v []float64) (int, error) {
	// Check dimension
	if len(b.vectors) == 0 {
		b.dimension = len(v)
	} else if b.dimension != len(v) {
		return 0, errors.Errorf("dimension mismatch: %v != %v", b.dimension, len(v))
	}
	// Add vector
	b.vectors = append(b.vectors, append([]float64(nil), v...))
	return len(b.vectors) - 1, nil
}

func (b *Bruteforce) Count() int {
	return len(b.vectors)
}

func (b *Bruteforce) Dimension() int {
	return b.dimension
}

// Search returns the k row indices nearest to q with their distances, nearest
// first. Ties are broken by ascending row index. A fitted row equal to q is
// returned like any other row.
func (b *Bruteforce) Search(q []float64, k int) ([]lo.Tuple2[int, float64], error) {
	// Check query
	if len(q) != b.dimension {
		return nil, errors.Annotatef(ErrInvalidQuery, "dimension mismatch: %v != %v", len(q), b.dimension)
	}
	if k <= 0 {
		return nil, errors.Annotatef(ErrInvalidQuery, "k must be positive, got %v", k)
	}
	if k > len(b.vectors) {
		return nil, errors.Annotatef(ErrInvalidQuery, "k %v exceeds %v fitted vectors", k, len(b.vectors))
	}
	// Search
	distances := make([]float64, len(b.vectors))
	filter := heap.NewTopKFilter[int, float64](k)
	for i, vec := range b.vectors {
		distances[i] = b.distanceFunc(q, vec)
		filter.Push(i, -distances[i])
	}
	return lo.Map(filter.PopAllValues(), func(i int, _ int) lo.Tuple2[int, float64] {
		return lo.Tuple2[int, float64]{A: i, B: distances[i]}
	}), nil
}
