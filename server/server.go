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

// Package server provides the TextSync server which is the main entry point
// of the TextSync system. The server is responsible for starting the RPC
// server, the HTTP gateway, and the optional profiling and admin servers.
package server

import (
	gosync "sync"

	"github.com/yorkie-team/textsync/server/admin"
	"github.com/yorkie-team/textsync/server/backend"
	"github.com/yorkie-team/textsync/server/gateway"
	"github.com/yorkie-team/textsync/server/profiling"
	"github.com/yorkie-team/textsync/server/profiling/prometheus"
	"github.com/yorkie-team/textsync/server/rpc"
)

// TextSync is a server of TextSync.
// The server receives actions from clients, applies them to the documents it
// holds, and answers stale clients with the actions they missed.
type TextSync struct {
	lock gosync.Mutex

	conf            *Config
	backend         *backend.Backend
	rpcServer       *rpc.Server
	gatewayServer   *gateway.Server
	profilingServer *profiling.Server
	adminServer     *admin.Server

	shutdown   bool
	shutdownCh chan struct{}
}

// New creates a new instance of TextSync.
func New(conf *Config) (*TextSync, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	metrics, err := prometheus.NewMetrics()
	if err != nil {
		return nil, err
	}

	be, err := backend.New(conf.Backend, conf.Mongo, metrics)
	if err != nil {
		return nil, err
	}

	rpcServer, err := rpc.NewServer(conf.RPC, be)
	if err != nil {
		return nil, err
	}

	gatewayServer := gateway.NewServer(conf.Gateway, be, rpc.NewTextSyncServer(be))

	var profilingServer *profiling.Server
	if conf.Profiling != nil {
		profilingServer = profiling.NewServer(conf.Profiling, metrics)
	}

	var adminServer *admin.Server
	if conf.Admin != nil {
		adminServer = admin.NewServer(conf.Admin, be)
	}

	return &TextSync{
		conf:            conf,
		backend:         be,
		rpcServer:       rpcServer,
		gatewayServer:   gatewayServer,
		profilingServer: profilingServer,
		adminServer:     adminServer,
		shutdownCh:      make(chan struct{}),
	}, nil
}

// Start starts the server by opening the rpc and gateway ports.
func (r *TextSync) Start() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.profilingServer != nil {
		if err := r.profilingServer.Start(); err != nil {
			return err
		}
	}

	if r.adminServer != nil {
		if err := r.adminServer.Start(); err != nil {
			return err
		}
	}

	if err := r.gatewayServer.Start(); err != nil {
		return err
	}

	return r.rpcServer.Start()
}

// Shutdown shuts down this TextSync server.
func (r *TextSync) Shutdown(graceful bool) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.shutdown {
		return nil
	}

	r.rpcServer.Shutdown(graceful)
	r.gatewayServer.Shutdown(graceful)
	if r.adminServer != nil {
		r.adminServer.Shutdown(graceful)
	}
	if r.profilingServer != nil {
		r.profilingServer.Shutdown(graceful)
	}

	if err := r.backend.Shutdown(); err != nil {
		return err
	}

	close(r.shutdownCh)
	r.shutdown = true
	return nil
}

// ShutdownCh returns the shutdown channel.
func (r *TextSync) ShutdownCh() <-chan struct{} {
	return r.shutdownCh
}

// RPCAddr returns the address of the RPC.
func (r *TextSync) RPCAddr() string {
	return r.conf.RPCAddr()
}

// GatewayAddr returns the address of the HTTP gateway.
func (r *TextSync) GatewayAddr() string {
	return r.conf.GatewayAddr()
}

// AdminAddr returns the address of the admin server, or "" if it is disabled.
func (r *TextSync) AdminAddr() string {
	return r.conf.AdminAddr()
}
