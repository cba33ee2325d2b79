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
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/pokerec/base/log"
	"go.uber.org/zap"
)

// Item is the metadata of a pokemon. Type2 is empty when there is no
// secondary type.
type Item struct {
	ItemId int
	Name   string
	Type1  string
	Type2  string
}

// Catalog is the deduplicated item table keyed by item id. It is immutable
// once built.
type Catalog struct {
	items []Item
	index map[int]int
}

// BuildCatalog keeps the first row of every name in input order. Later rows
// with an already seen name are alternate forms and are discarded, and so are
// rows reusing the id of a kept item.
func BuildCatalog(rows []Item) *Catalog {
	c := &Catalog{index: make(map[int]int, len(rows))}
	names := mapset.NewThreadUnsafeSet[string]()
	discarded := 0
	for _, row := range rows {
		if names.Contains(row.Name) {
			discarded++
			continue
		}
		if _, exist := c.index[row.ItemId]; exist {
			log.Logger().Warn("item id reused by another name",
				zap.Int("item_id", row.ItemId), zap.String("name", row.Name))
			discarded++
			continue
		}
		names.Add(row.Name)
		c.index[row.ItemId] = len(c.items)
		c.items = append(c.items, row)
	}
	log.Logger().Debug("build catalog",
		zap.Int("n_items", len(c.items)), zap.Int("n_discarded", discarded))
	return c
}

func (c *Catalog) Count() int {
	return len(c.items)
}

// Items returns a copy of the kept items in input order.
func (c *Catalog) Items() []Item {
	return append([]Item(nil), c.items...)
}

func (c *Catalog) Get(itemId int) (Item, bool) {
	i, ok := c.index[itemId]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

func (c *Catalog) Contains(itemId int) bool {
	_, ok := c.index[itemId]
	return ok
}
