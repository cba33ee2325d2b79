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
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

var (
	itemColumns   = []string{"pokemonid", "name", "type1", "type2"}
	ratingColumns = []string{"userid", "pokemonid", "rating"}
)

// LoadItems reads pokemon rows from CSV with header
// pokemonId,name,Type1,Type2. Other columns are ignored.
func LoadItems(r io.Reader) ([]Item, error) {
	var items []Item
	err := readCSV(r, itemColumns, func(line int, fields []string) error {
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return errors.Annotatef(err, "line %d: invalid pokemonId", line)
		}
		items = append(items, Item{
			ItemId: id,
			Name:   fields[1],
			Type1:  fields[2],
			Type2:  fields[3],
		})
		return nil
	})
	return items, err
}

// LoadRatings reads rating rows from CSV with header userId,pokemonId,rating.
func LoadRatings(r io.Reader) ([]Rating, error) {
	var ratings []Rating
	err := readCSV(r, ratingColumns, func(line int, fields []string) error {
		userId, err := strconv.Atoi(fields[0])
		if err != nil {
			return errors.Annotatef(err, "line %d: invalid userId", line)
		}
		itemId, err := strconv.Atoi(fields[1])
		if err != nil {
			return errors.Annotatef(err, "line %d: invalid pokemonId", line)
		}
		rating, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return errors.Annotatef(err, "line %d: invalid rating", line)
		}
		ratings = append(ratings, Rating{UserId: userId, ItemId: itemId, Rating: rating})
		return nil
	})
	return ratings, err
}

// readCSV calls handle with the wanted columns of every row, in the order of
// columns. Header names are matched case-insensitively.
func readCSV(r io.Reader, columns []string, handle func(line int, fields []string) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return errors.New("missing csv header")
	} else if err != nil {
		return errors.Trace(err)
	}
	positions := make([]int, len(columns))
	for i, column := range columns {
		positions[i] = -1
		for j, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), column) {
				positions[i] = j
				break
			}
		}
		if positions[i] < 0 {
			return errors.NotFoundf("csv column %s", column)
		}
	}
	fields := make([]string, len(columns))
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return errors.Trace(err)
		}
		for i, pos := range positions {
			fields[i] = ""
			if pos < len(record) {
				fields[i] = strings.TrimSpace(record[pos])
			}
		}
		if err = handle(line, fields); err != nil {
			return err
		}
	}
}
