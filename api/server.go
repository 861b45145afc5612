/*
 * Copyright (c) 2020 Siemens AG
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy of
 * this software and associated documentation files (the "Software"), to deal in
 * the Software without restriction, including without limitation the rights to
 * use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
 * the Software, and to permit persons to whom the Software is furnished to do so,
 * subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
 * FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
 * COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
 * IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
 * CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 *
 * Author(s): Jonas Plum
 */

// Package api serves the trees and tables of a case as JSON.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/forensicanalysis/casestore/dao"
	"github.com/forensicanalysis/casestore/logging"
)

// Server is the HTTP API of a case.
type Server struct {
	dao    *dao.DAO
	logger *zap.Logger
	router chi.Router
}

// ErrorResponse is the body of failed requests.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// New creates the server and its routes.
func New(d *dao.DAO, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{dao: d, logger: logger}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(recoverer(logger))
	r.Use(requestLogger(logger))

	r.Route("/tree", func(r chi.Router) {
		r.Get("/analysis-results", s.analysisResultCounts)
		r.Get("/data-artifacts", s.dataArtifactCounts)
		r.Get("/sets/{type}", s.setCounts)
		r.Get("/hashsets", s.hashHitSetCounts)
		r.Get("/keywords/sets", s.keywordSetCounts)
		r.Get("/keywords/terms", s.keywordSearchTermCounts)
		r.Get("/keywords/matches", s.keywordMatchCounts)
		r.Get("/files/extensions", s.fileExtensionCounts)
	})
	r.Route("/table", func(r chi.Router) {
		r.Get("/analysis-results/{type}", s.analysisResults)
		r.Get("/data-artifacts/{type}", s.dataArtifacts)
		r.Get("/hashsets", s.hashHits)
		r.Get("/keywords", s.keywordHits)
		r.Get("/sets/{type}", s.setHits)
		r.Get("/files/extension/{filter}", s.filesByExtension)
		r.Get("/files/mime", s.filesByMime)
		r.Get("/files/size/{filter}", s.filesBySize)
	})
	r.Get("/summary/{dataSource}", s.summary)
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func (s *Server) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, dao.ErrInvalidArgument) {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	logging.FromContext(ctx).Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

// respond writes v or the error of the DAO call.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		s.handleError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

/* ################################
#   Middleware
################################ */

func recoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic", zap.Any("panic", rec), zap.String("path", r.URL.Path), zap.Stack("stack"))
					writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs one line per request and puts a request scoped
// logger into the context.
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logging.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

/* ################################
#   Parameters
################################ */

type query struct {
	r   *http.Request
	err error
}

func (q *query) int64(name string) int64 {
	s := q.r.URL.Query().Get(name)
	if s == "" || q.err != nil {
		return 0
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		q.err = errors.Wrapf(dao.ErrInvalidArgument, "%s: %s", name, err)
	}
	return i
}

func (q *query) int(name string) int {
	return int(q.int64(name))
}

func (q *query) bool(name string) bool {
	s := q.r.URL.Query().Get(name)
	if s == "" || q.err != nil {
		return false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		q.err = errors.Wrapf(dao.ErrInvalidArgument, "%s: %s", name, err)
	}
	return b
}

func (q *query) string(name string) string {
	return q.r.URL.Query().Get(name)
}

// nullString is invalid if the parameter is missing.
func (q *query) nullString(name string) dao.NullString {
	values, ok := q.r.URL.Query()[name]
	if !ok || len(values) == 0 {
		return dao.NullString{}
	}
	return dao.Some(values[0])
}

func (q *query) path(name string) int64 {
	s := chi.URLParam(q.r, name)
	if q.err != nil {
		return 0
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		q.err = errors.Wrapf(dao.ErrInvalidArgument, "%s: %s", name, err)
	}
	return i
}

type page struct {
	start, max int64
	refresh    bool
}

func (q *query) page() page {
	return page{start: q.int64("start"), max: q.int64("max"), refresh: q.bool("refresh")}
}
