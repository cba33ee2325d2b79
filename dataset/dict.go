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

// Dict maps sparse identifiers to dense indices in insertion order.
type Dict struct {
	si map[int]int
	is []int
}

func NewDict() *Dict {
	return &Dict{si: map[int]int{}}
}

func (d *Dict) Count() int {
	return len(d.is)
}

// Add returns the index of id, assigning the next free index to a new id.
func (d *Dict) Add(id int) int {
	if y, ok := d.si[id]; ok {
		return y
	}
	y := len(d.is)
	d.si[id] = y
	d.is = append(d.is, id)
	return y
}

func (d *Dict) Index(id int) (int, bool) {
	y, ok := d.si[id]
	return y, ok
}

func (d *Dict) Id(index int) (int, bool) {
	if index < 0 || index >= len(d.is) {
		return 0, false
	}
	return d.is[index], true
}

// Ids returns a copy of all identifiers ordered by index.
func (d *Dict) Ids() []int {
	return append([]int(nil), d.is...)
}
