// Copyright 2020 gorse Project Authors
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

package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration for the recommender.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Server    ServerConfig    `mapstructure:"server"`
}

// DataConfig locates the raw CSV files.
type DataConfig struct {
	ItemsPath   string `mapstructure:"items_path" validate:"required"`
	RatingsPath string `mapstructure:"ratings_path" validate:"required"`
}

type RecommendConfig struct {
	NumNeighbors       int `mapstructure:"num_neighbors" validate:"gt=0"`
	NumRecommendations int `mapstructure:"num_recommendations" validate:"gt=0"`
	NumFavorites       int `mapstructure:"num_favorites" validate:"gt=0"`
}

type ServerConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
	CacheCapacity uint64        `mapstructure:"cache_capacity" validate:"gt=0"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			ItemsPath:   "pokemon.csv",
			RatingsPath: "pokemon_ratings.csv",
		},
		Recommend: RecommendConfig{
			NumNeighbors:       5,
			NumRecommendations: 5,
			NumFavorites:       5,
		},
		Server: ServerConfig{
			Host:          "127.0.0.1",
			Port:          8087,
			CacheTTL:      time.Minute,
			CacheCapacity: 10000,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [data]
	v.SetDefault("data.items_path", defaultConfig.Data.ItemsPath)
	v.SetDefault("data.ratings_path", defaultConfig.Data.RatingsPath)
	// [recommend]
	v.SetDefault("recommend.num_neighbors", defaultConfig.Recommend.NumNeighbors)
	v.SetDefault("recommend.num_recommendations", defaultConfig.Recommend.NumRecommendations)
	v.SetDefault("recommend.num_favorites", defaultConfig.Recommend.NumFavorites)
	// [server]
	v.SetDefault("server.host", defaultConfig.Server.Host)
	v.SetDefault("server.port", defaultConfig.Server.Port)
	v.SetDefault("server.cache_ttl", defaultConfig.Server.CacheTTL)
	v.SetDefault("server.cache_capacity", defaultConfig.Server.CacheCapacity)
}

// LoadConfig loads configuration from a TOML or YAML file. An empty path
// loads defaults only. Environment variables such as
// POKEREC_RECOMMEND_NUM_NEIGHBORS override both.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	v.SetEnvPrefix("pokerec")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	var conf Config
	if err := v.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

func (config *Config) Validate() error {
	validate := validator.New()
	return validate.Struct(config)
}
