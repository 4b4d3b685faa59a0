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

// Package admin provides the operator endpoints of TextSync. The server only
// listens on the loopback interface.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yorkie-team/textsync/api/types"
	"github.com/yorkie-team/textsync/server/backend"
	"github.com/yorkie-team/textsync/server/documents"
	"github.com/yorkie-team/textsync/server/logging"
)

// ClearCachePath is the path of the endpoint that discards every document.
const ClearCachePath = "/admin/cache/clear"

const clearedMessage = "Server cache cleared successfully"

// Server is the HTTP server for admin operations.
type Server struct {
	conf       *Config
	backend    *backend.Backend
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a new Server.
func NewServer(conf *Config, be *backend.Backend) *Server {
	server := &Server{
		conf:    conf,
		backend: be,
	}

	r := mux.NewRouter()
	r.Use(loopbackOnly)
	r.HandleFunc(ClearCachePath, server.clearCache).Methods(http.MethodPost)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, &types.ClearCacheResponse{
			Success: false,
			Message: "Method not allowed",
		})
	})
	server.httpServer = &http.Server{Handler: r}

	return server
}

// Handler returns the handler of this server.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts this server by opening the admin port on localhost.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.conf.Port))
	if err != nil {
		return fmt.Errorf("listen admin on %d: %w", s.conf.Port, err)
	}
	s.listener = lis

	go func() {
		logging.DefaultLogger().Infof("serving admin on %s", lis.Addr())
		if err := s.httpServer.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
			logging.DefaultLogger().Errorf("HTTP admin Serve: %v", err)
		}
	}()

	return nil
}

// Addr returns the address the server listens on, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown shuts down this server.
func (s *Server) Shutdown(graceful bool) {
	if graceful {
		if err := s.httpServer.Shutdown(context.Background()); err != nil {
			logging.DefaultLogger().Errorf("HTTP admin Shutdown: %v", err)
		}
		return
	}

	if err := s.httpServer.Close(); err != nil {
		logging.DefaultLogger().Errorf("HTTP admin Close: %v", err)
	}
}

// clearCache discards every document and its action log.
func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	if err := documents.Clear(r.Context(), s.backend); err != nil {
		logging.From(r.Context()).Errorf("clear cache: %v", err)
		writeJSON(w, http.StatusInternalServerError, &types.ClearCacheResponse{
			Success: false,
			Message: "Failed to clear cache",
		})
		return
	}

	writeJSON(w, http.StatusOK, &types.ClearCacheResponse{
		Success: true,
		Message: clearedMessage,
	})
}

// loopbackOnly rejects requests that do not come from the local host.
func loopbackOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
			logging.DefaultLogger().Warnf("admin request from %s rejected", r.RemoteAddr)
			writeJSON(w, http.StatusForbidden, &types.ClearCacheResponse{
				Success: false,
				Message: "Forbidden",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.DefaultLogger().Warnf("write response: %v", err)
	}
}
