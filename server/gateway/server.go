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

// Package gateway provides the HTTP/JSON gateway of TextSync. It serves the
// same operations as the RPC server and streams document events over
// websocket.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/net/netutil"

	api "github.com/yorkie-team/textsync/api/v1"
	"github.com/yorkie-team/textsync/server/backend"
	"github.com/yorkie-team/textsync/server/logging"
)

// Server is the HTTP gateway.
type Server struct {
	conf       *Config
	httpServer *http.Server
	listener   net.Listener

	// closing is canceled on Shutdown so that watch streams end.
	closing context.Context
	cancel  context.CancelFunc
}

// NewServer creates a new instance of Server that serves the given service.
func NewServer(conf *Config, be *backend.Backend, service api.TextSyncServiceServer) *Server {
	closing, cancel := context.WithCancel(context.Background())

	h := &handlers{
		be:              be,
		service:         service,
		maxRequestBytes: conf.MaxRequestBytes,
		closing:         closing,
	}
	if h.maxRequestBytes <= 0 {
		h.maxRequestBytes = DefaultMaxRequestBytes
	}

	return &Server{
		conf: conf,
		httpServer: &http.Server{
			Handler:     newRouter(h, be),
			ReadTimeout: conf.ParseReadTimeout(),
		},
		closing: closing,
		cancel:  cancel,
	}
}

func newRouter(h *handlers, be *backend.Backend) *mux.Router {
	r := mux.NewRouter()
	r.Use(newRequestMiddleware(be.Metrics).handle)

	r.HandleFunc("/sync", h.sync).Methods(http.MethodPost)
	r.HandleFunc("/document/{id}", h.getDocument).Methods(http.MethodGet)
	r.HandleFunc("/documents", h.listDocuments).Methods(http.MethodGet)
	r.HandleFunc("/documents/{id}/watch", h.watchDocument).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	return r
}

// Handler returns the handler of this server.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts this server by opening the gateway port.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.conf.Port))
	if err != nil {
		return fmt.Errorf("listen gateway on %d: %w", s.conf.Port, err)
	}

	s.Serve(lis)
	return nil
}

// Serve serves the gateway on the given listener in the background.
func (s *Server) Serve(lis net.Listener) {
	if s.conf.MaxConnections > 0 {
		lis = netutil.LimitListener(lis, s.conf.MaxConnections)
	}
	s.listener = lis

	go func() {
		logging.DefaultLogger().Infof("serving gateway on %s", lis.Addr())
		if err := s.httpServer.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
			logging.DefaultLogger().Errorf("HTTP gateway Serve: %v", err)
		}
	}()
}

// Addr returns the address the server listens on, or nil before it serves.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown shuts down this server.
func (s *Server) Shutdown(graceful bool) {
	s.cancel()

	if graceful {
		if err := s.httpServer.Shutdown(context.Background()); err != nil {
			logging.DefaultLogger().Errorf("HTTP gateway Shutdown: %v", err)
		}
		return
	}

	if err := s.httpServer.Close(); err != nil {
		logging.DefaultLogger().Errorf("HTTP gateway Close: %v", err)
	}
}
