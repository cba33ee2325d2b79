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

package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/gorse-io/pokerec/base/log"
	"github.com/gorse-io/pokerec/config"
	"github.com/gorse-io/pokerec/dataset"
	"github.com/gorse-io/pokerec/logics"
	"github.com/jellydator/ttlcache/v3"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RestServer implements a REST-ful API server.
type RestServer struct {
	Session    *logics.Session
	Config     *config.Config
	WebService *restful.WebService
	cache      *ttlcache.Cache[string, []logics.Recommendation]
}

// NewRestServer creates a server over a session. At most Server.CacheCapacity
// recommendations are cached for Server.CacheTTL; a zero TTL disables the cache.
func NewRestServer(session *logics.Session, conf *config.Config) *RestServer {
	s := &RestServer{
		Session:    session,
		Config:     conf,
		WebService: new(restful.WebService),
	}
	if conf.Server.CacheTTL > 0 {
		s.cache = ttlcache.New[string, []logics.Recommendation](
			ttlcache.WithTTL[string, []logics.Recommendation](conf.Server.CacheTTL),
			ttlcache.WithDisableTouchOnHit[string, []logics.Recommendation](),
			ttlcache.WithCapacity[string, []logics.Recommendation](conf.Server.CacheCapacity),
		)
	}
	s.CreateWebService()
	return s
}

// Handler returns a container serving the REST-ful APIs and metrics.
func (s *RestServer) Handler() http.Handler {
	container := restful.NewContainer()
	container.Add(s.WebService)
	container.Handle("/metrics", promhttp.Handler())
	return container
}

// StartHttpServer starts the REST-ful API server.
func (s *RestServer) StartHttpServer() error {
	if s.cache != nil {
		go s.cache.Start()
		defer s.cache.Stop()
	}
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	log.Logger().Info("start http server", zap.String("url", "http://"+addr))
	return errors.Trace(http.ListenAndServe(addr, s.Handler()))
}

func LogFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	chain.ProcessFilter(req, resp)
	log.ResponseLogger(resp).Info(fmt.Sprintf("%s %s", req.Request.Method, req.Request.URL),
		zap.Int("status_code", resp.StatusCode()))
}

// CreateWebService creates web service.
func (s *RestServer) CreateWebService() {
	ws := s.WebService
	ws.Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Path("/api/")
	ws.Filter(LogFilter)

	// Get favorites of a user
	ws.Route(ws.GET("/favorites/{user-id}").To(s.getFavorites).
		Doc("Get the items a user rated highest.").
		Param(ws.PathParameter("user-id", "identifier of the user").DataType("integer")).
		Param(ws.QueryParameter("n", "number of returned items").DataType("integer")).
		Writes([]logics.Favorite{}))
	// Get recommendations for a user
	ws.Route(ws.GET("/recommend/{user-id}").To(s.getRecommend).
		Doc("Get recommendations from similar users.").
		Param(ws.PathParameter("user-id", "identifier of the user").DataType("integer")).
		Param(ws.QueryParameter("k", "number of neighbors").DataType("integer")).
		Param(ws.QueryParameter("n", "number of returned items").DataType("integer")).
		Writes([]logics.Recommendation{}))
	// Insert ratings
	ws.Route(ws.POST("/ratings").To(s.insertRatings).
		Doc("Insert ratings and refit the neighbor model.").
		Reads([]dataset.Rating{}).
		Writes(Success{}))
	// Get statistics
	ws.Route(ws.GET("/stats").To(s.getStats).
		Doc("Get the size of the rating matrix.").
		Writes(Stats{}))
}

// ParseInt parses an integer query parameter, falling back when it is absent.
func ParseInt(request *restful.Request, name string, fallback int) (value int, err error) {
	valueString := request.QueryParameter(name)
	value, err = strconv.Atoi(valueString)
	if err != nil && valueString == "" {
		value = fallback
		err = nil
	}
	return
}

func parseUserId(request *restful.Request) (int, error) {
	userId, err := strconv.Atoi(request.PathParameter("user-id"))
	if err != nil {
		return 0, errors.NotValidf("user id %q", request.PathParameter("user-id"))
	}
	return userId, nil
}

func (s *RestServer) getFavorites(request *restful.Request, response *restful.Response) {
	start := time.Now()
	userId, err := parseUserId(request)
	if err != nil {
		BadRequest(response, err)
		return
	}
	n, err := ParseInt(request, "n", s.Config.Recommend.NumFavorites)
	if err != nil {
		BadRequest(response, err)
		return
	}
	favorites, err := s.Session.Favorites(userId, n)
	if err != nil {
		writeError(response, err)
		return
	}
	GetFavoritesSeconds.Observe(time.Since(start).Seconds())
	Ok(response, favorites)
}

func (s *RestServer) getRecommend(request *restful.Request, response *restful.Response) {
	start := time.Now()
	userId, err := parseUserId(request)
	if err != nil {
		BadRequest(response, err)
		return
	}
	k, err := ParseInt(request, "k", s.Config.Recommend.NumNeighbors)
	if err != nil {
		BadRequest(response, err)
		return
	}
	n, err := ParseInt(request, "n", s.Config.Recommend.NumRecommendations)
	if err != nil {
		BadRequest(response, err)
		return
	}
	key := s.recommendKey(userId, k, n)
	if s.cache != nil {
		if item := s.cache.Get(key); item != nil {
			RecommendCacheHitTotal.Inc()
			Ok(response, item.Value())
			return
		}
		RecommendCacheMissTotal.Inc()
	}
	recommendations, err := s.Session.Recommend(userId, k, n)
	if err != nil {
		writeError(response, err)
		return
	}
	if s.cache != nil {
		s.cache.Set(key, recommendations, ttlcache.DefaultTTL)
	}
	GetRecommendSeconds.Observe(time.Since(start).Seconds())
	Ok(response, recommendations)
}

// recommendKey must be taken before computing recommendations, so that a
// result racing with a refit is stored under the generation it was read at.
func (s *RestServer) recommendKey(userId, k, n int) string {
	return fmt.Sprintf("%d/%d/%d/%d", s.Session.Generation(), userId, k, n)
}

// Success is the response of a write.
type Success struct {
	RowAffected int
}

func (s *RestServer) insertRatings(request *restful.Request, response *restful.Response) {
	var ratings []dataset.Rating
	if err := request.ReadEntity(&ratings); err != nil {
		BadRequest(response, err)
		return
	}
	start := time.Now()
	if err := s.Session.AddRatings(ratings); err != nil {
		InternalServerError(response, err)
		return
	}
	RefitSeconds.Observe(time.Since(start).Seconds())
	if s.cache != nil {
		s.cache.DeleteAll()
	}
	Ok(response, Success{RowAffected: len(ratings)})
}

// Stats is the size of the loaded data.
type Stats struct {
	NumUsers        int
	NumItems        int
	NumCatalogItems int
}

func (s *RestServer) getStats(_ *restful.Request, response *restful.Response) {
	matrix := s.Session.Matrix()
	Ok(response, Stats{
		NumUsers:        matrix.CountUsers(),
		NumItems:        matrix.CountItems(),
		NumCatalogItems: s.Session.Catalog().Count(),
	})
}

func writeError(response *restful.Response, err error) {
	switch {
	case errors.Is(err, errors.NotFound):
		PageNotFound(response, err)
	case errors.Is(err, errors.NotValid):
		BadRequest(response, err)
	default:
		InternalServerError(response, err)
	}
}

// BadRequest returns a bad request error.
func BadRequest(response *restful.Response, err error) {
	log.ResponseLogger(response).Error("bad request", zap.Error(err))
	if err = response.WriteError(http.StatusBadRequest, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// InternalServerError returns a internal server error.
func InternalServerError(response *restful.Response, err error) {
	log.ResponseLogger(response).Error("internal server error", zap.Error(err))
	if err = response.WriteError(http.StatusInternalServerError, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// PageNotFound returns a not found error.
func PageNotFound(response *restful.Response, err error) {
	if err := response.WriteError(http.StatusNotFound, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// Ok sends the content as JSON to the client.
func Ok(response *restful.Response, content interface{}) {
	if err := response.WriteAsJson(content); err != nil {
		log.ResponseLogger(response).Error("failed to write json", zap.Error(err))
	}
}
