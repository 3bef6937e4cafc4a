// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package route

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/moov-io/achfile/x/trace"

	moovhttp "github.com/moov-io/base/http"
	"github.com/moov-io/base/idempotent"
	"github.com/moov-io/base/idempotent/lru"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics/prometheus"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

var (
	IdempotentRecorder = lru.New()

	// Prometheus Metrics
	Histogram = prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
		Name: "http_response_duration_seconds",
		Help: "Histogram representing the http response durations",
	}, []string{"route"})
)

// Responder wraps one HTTP request/response pair with logging, metrics,
// idempotency checks and a tracing span.
type Responder struct {
	XRequestID string

	logger log.Logger

	request *http.Request
	span    opentracing.Span

	writer *moovhttp.ResponseWriter
}

func NewResponder(logger log.Logger, w http.ResponseWriter, r *http.Request) *Responder {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	resp := &Responder{
		XRequestID: moovhttp.GetRequestID(r),
		logger:     logger,
		request:    r,
	}
	resp.span = trace.FromRequest(routeName(r), r)

	writer, err := wrapResponseWriter(logger, w, r)
	resp.writer = writer
	if err != nil {
		resp.Problem(err)
	}
	return resp
}

func (r *Responder) Log(kvpairs ...interface{}) {
	if r == nil || r.writer == nil {
		return
	}
	var args = []interface{}{
		"requestID", r.XRequestID,
	}
	args = append(args, kvpairs...)
	r.logger.Log(args...)
}

// Span is the request's tracing span. It is finished when the response is written.
func (r *Responder) Span() opentracing.Span {
	if r == nil {
		return nil
	}
	return r.span
}

func (r *Responder) Respond(fn func(http.ResponseWriter)) {
	if r == nil {
		return
	}
	r.finishSpan(nil)
	r.writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	fn(r.writer)
}

// Problem writes err as a 400 response.
func (r *Responder) Problem(err error) {
	if r == nil {
		return
	}
	r.finishSpan(err)
	r.writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	moovhttp.Problem(r.writer, err)
}

func (r *Responder) InternalError(err error) {
	if r == nil {
		return
	}
	r.finishSpan(err)
	r.Log("error", err)
	r.writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	moovhttp.InternalError(r.writer, err)
}

func (r *Responder) NotFound() {
	if r == nil {
		return
	}
	r.finishSpan(nil)
	http.NotFound(r.writer, r.request)
}

func (r *Responder) finishSpan(err error) {
	if r.span == nil {
		return
	}
	if err != nil {
		ext.Error.Set(r.span, true)
		r.span.LogKV("error", err.Error())
	}
	r.span.Finish()
	r.span = nil
}

func routeName(r *http.Request) string {
	return fmt.Sprintf("%s-%s", strings.ToLower(r.Method), CleanPath(r.URL.Path))
}

func wrapResponseWriter(logger log.Logger, w http.ResponseWriter, r *http.Request) (*moovhttp.ResponseWriter, error) {
	ww := moovhttp.Wrap(logger, Histogram.With("route", routeName(r)), w, r)

	if _, seen := idempotent.FromRequest(r, IdempotentRecorder); seen {
		idempotent.SeenBefore(ww)
		return ww, idempotent.ErrSeenBefore
	}

	return ww, nil
}

var baseIdRegex = regexp.MustCompile(`([a-f0-9]{40})`)

// CleanPath takes a URL path and formats it for Prometheus metrics
//
// This method replaces /'s with -'s and strips out moov/base.ID() values from URL path slugs.
func CleanPath(path string) string {
	parts := strings.Split(path, "/")
	var out []string
	for i := range parts {
		if parts[i] == "" || baseIdRegex.MatchString(parts[i]) {
			continue // assume it's a moov/base.ID() value
		}
		out = append(out, parts[i])
	}
	return strings.Join(out, "-")
}
