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
	"fmt"
	"os"

	"github.com/gorse-io/pokerec/base/log"
	"github.com/gorse-io/pokerec/cmd/version"
	"github.com/gorse-io/pokerec/config"
	"github.com/gorse-io/pokerec/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var conf *config.Config

var rootCommand = &cobra.Command{
	Use:   "pokerec",
	Short: "Recommend pokemon from the ratings of similar users.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// setup logger
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)
		if quiet(cmd) {
			log.CloseLogger()
		}
		// load config
		configPath, _ := cmd.Flags().GetString("config")
		var err error
		if conf, err = config.LoadConfig(configPath); err != nil {
			return err
		}
		if cmd.Flags().Changed("items") {
			conf.Data.ItemsPath, _ = cmd.Flags().GetString("items")
		}
		if cmd.Flags().Changed("ratings") {
			conf.Data.RatingsPath, _ = cmd.Flags().GetString("ratings")
		}
		return nil
	},
}

var favoritesCommand = &cobra.Command{
	Use:   "favorites",
	Short: "Show the pokemon a user rated highest.",
	RunE: func(cmd *cobra.Command, args []string) error {
		userId, _ := cmd.Flags().GetInt("user")
		n := conf.Recommend.NumFavorites
		if cmd.Flags().Changed("n") {
			n, _ = cmd.Flags().GetInt("n")
		}
		session, err := loadSession(conf, !quiet(cmd))
		if err != nil {
			return err
		}
		favorites, err := session.Favorites(userId, n)
		if err != nil {
			return err
		}
		return renderFavorites(cmd.OutOrStdout(), favorites)
	},
}

var recommendCommand = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend pokemon to a user.",
	RunE: func(cmd *cobra.Command, args []string) error {
		userId, _ := cmd.Flags().GetInt("user")
		k, n := conf.Recommend.NumNeighbors, conf.Recommend.NumRecommendations
		if cmd.Flags().Changed("k") {
			k, _ = cmd.Flags().GetInt("k")
		}
		if cmd.Flags().Changed("n") {
			n, _ = cmd.Flags().GetInt("n")
		}
		session, err := loadSession(conf, !quiet(cmd))
		if err != nil {
			return err
		}
		recommendations, err := session.Recommend(userId, k, n)
		if err != nil {
			return err
		}
		return renderRecommendations(cmd.OutOrStdout(), recommendations)
	},
}

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Serve favorites and recommendations over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			conf.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		session, err := loadSession(conf, !quiet(cmd))
		if err != nil {
			return err
		}
		return server.NewRestServer(session, conf).StartHttpServer()
	},
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show the version of pokerec.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), version.BuildInfo())
	},
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Flags().GetBool("quiet")
	return q
}

func init() {
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.PersistentFlags().String("items", "", "pokemon CSV file")
	rootCommand.PersistentFlags().String("ratings", "", "ratings CSV file")
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().BoolP("quiet", "q", false, "hide loading progress and logs")
	log.AddFlags(rootCommand.PersistentFlags())

	for _, command := range []*cobra.Command{favoritesCommand, recommendCommand} {
		command.Flags().IntP("user", "u", 231, "user id")
		command.Flags().IntP("n", "n", 5, "number of returned pokemon")
	}
	recommendCommand.Flags().IntP("k", "k", 5, "number of neighbors")
	serveCommand.Flags().IntP("port", "p", 8087, "port of the HTTP server")
	rootCommand.AddCommand(favoritesCommand, recommendCommand, serveCommand, versionCommand)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Error("pokerec failed", zap.Error(err))
		os.Exit(1)
	}
}
