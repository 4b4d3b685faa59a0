/*
 * Copyright 2020 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package gateway

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	gotime "time"

	"github.com/yorkie-team/textsync/server/logging"
	"github.com/yorkie-team/textsync/server/profiling/prometheus"
)

type reqID int32

func (c *reqID) next() string {
	next := atomic.AddInt32((*int32)(c), 1)
	return "h" + strconv.Itoa(int(next))
}

// requestMiddleware puts a logger with the request ID into the context of
// each request, and logs and counts the response.
type requestMiddleware struct {
	reqID   reqID
	metrics *prometheus.Metrics
}

func newRequestMiddleware(metrics *prometheus.Metrics) *requestMiddleware {
	return &requestMiddleware{metrics: metrics}
}

func (m *requestMiddleware) handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logging.New(m.reqID.next())
		start := gotime.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logging.With(r.Context(), reqLogger)))

		logging.LogHTTP(reqLogger, r.Method, r.URL.Path, rec.status, gotime.Since(start))
		if m.metrics != nil {
			m.metrics.AddHTTPHandled(r.Method, rec.status)
		}
	})
}

// statusRecorder records the status written by a handler. It keeps the
// Hijacker of the underlying writer for websocket upgrades.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("%T is not a http.Hijacker", r.ResponseWriter)
	}
	r.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}
