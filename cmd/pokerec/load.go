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

package main

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gorse-io/pokerec/base/log"
	"github.com/gorse-io/pokerec/config"
	"github.com/gorse-io/pokerec/dataset"
	"github.com/gorse-io/pokerec/logics"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// loadSession reads both CSV files and builds a session over them.
func loadSession(conf *config.Config, progress bool) (*logics.Session, error) {
	var items []dataset.Item
	if err := openCSV(conf.Data.ItemsPath, progress, func(r io.Reader) (err error) {
		items, err = dataset.LoadItems(r)
		return
	}); err != nil {
		return nil, err
	}
	var ratings []dataset.Rating
	if err := openCSV(conf.Data.RatingsPath, progress, func(r io.Reader) (err error) {
		ratings, err = dataset.LoadRatings(r)
		return
	}); err != nil {
		return nil, err
	}
	log.Logger().Info("load dataset",
		zap.Int("n_items", len(items)), zap.Int("n_ratings", len(ratings)))
	return logics.NewSession(items, ratings)
}

func openCSV(path string, progress bool, load func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	var r io.Reader = f
	if progress {
		stat, err := f.Stat()
		if err != nil {
			return errors.Trace(err)
		}
		pbReader := progressbar.NewReader(f, progressbar.DefaultBytes(stat.Size(), "Loading "+filepath.Base(path)))
		r = &pbReader
	}
	return errors.Annotate(load(r), path)
}

func renderFavorites(w io.Writer, favorites []logics.Favorite) error {
	rows := make([][]string, len(favorites))
	for i, f := range favorites {
		rows[i] = []string{strconv.Itoa(f.ItemId), f.Name, f.Type1, f.Type2, strconv.FormatFloat(f.Rating, 'f', -1, 64)}
	}
	return renderTable(w, []any{"pokemonId", "name", "Type1", "Type2", "rating"}, rows)
}

func renderRecommendations(w io.Writer, recommendations []logics.Recommendation) error {
	rows := make([][]string, len(recommendations))
	for i, r := range recommendations {
		rows[i] = []string{strconv.Itoa(r.ItemId), r.Name, r.Type1, r.Type2, r.Justification}
	}
	return renderTable(w, []any{"pokemonId", "name", "Type1", "Type2", "justification"}, rows)
}

func renderTable(w io.Writer, header []any, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(header...)
	if err := table.Bulk(rows); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(table.Render())
}
