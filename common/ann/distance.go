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
	"math"

	"gonum.org/v1/gonum/floats"
)

// Cosine returns the cosine distance 1 - u·v/(‖u‖‖v‖), clamped into [0, 2].
// A zero vector is at distance 1 from every vector, itself included.
func Cosine(a, b []float64) float64 {
	aa, bb := floats.Dot(a, a), floats.Dot(b, b)
	if aa == 0 || bb == 0 {
		return 1
	}
	d := 1 - floats.Dot(a, b)/math.Sqrt(aa*bb)
	return math.Min(math.Max(d, 0), 2)
}
