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

// Package rpc provides the gRPC server of TextSync.
package rpc

import (
	"errors"
	"fmt"
	"math"
	"net"

	grpcmiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	api "github.com/yorkie-team/textsync/api/v1"
	"github.com/yorkie-team/textsync/server/backend"
	"github.com/yorkie-team/textsync/server/grpchelper"
	"github.com/yorkie-team/textsync/server/logging"
)

// Server is a normal server that processes the logic requested by the client.
type Server struct {
	conf         *Config
	grpcServer   *grpc.Server
	healthServer *health.Server
	listener     net.Listener
}

// NewServer creates a new instance of Server.
func NewServer(conf *Config, be *backend.Backend) (*Server, error) {
	loggingInterceptor := grpchelper.NewLoggingInterceptor()
	serverMetrics := be.Metrics.ServerMetrics()

	maxRequestBytes := conf.MaxRequestBytes
	if maxRequestBytes == 0 || maxRequestBytes > math.MaxInt32 {
		maxRequestBytes = DefaultMaxRequestBytes
	}

	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(grpcmiddleware.ChainUnaryServer(
			serverMetrics.UnaryServerInterceptor(),
			loggingInterceptor.Unary(),
		)),
		grpc.StreamInterceptor(grpcmiddleware.ChainStreamServer(
			serverMetrics.StreamServerInterceptor(),
			loggingInterceptor.Stream(),
		)),
		grpc.MaxRecvMsgSize(int(maxRequestBytes)),
	}

	if age := conf.ParseMaxConnectionAge(); age > 0 {
		opts = append(opts, grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionAge:      age,
			MaxConnectionAgeGrace: conf.ParseMaxConnectionAgeGrace(),
		}))
	}

	if conf.CertFile != "" && conf.KeyFile != "" {
		creds, err := credentials.NewServerTLSFromFile(conf.CertFile, conf.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load TLS cert: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}

	grpcServer := grpc.NewServer(opts...)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	api.RegisterTextSyncServiceServer(grpcServer, NewTextSyncServer(be))
	be.Metrics.RegisterGRPCServer(grpcServer)

	return &Server{
		conf:         conf,
		grpcServer:   grpcServer,
		healthServer: healthServer,
	}, nil
}

// Start starts this server by opening the rpc port.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.conf.Port))
	if err != nil {
		return fmt.Errorf("listen RPC on %d: %w", s.conf.Port, err)
	}

	s.Serve(lis)
	return nil
}

// Serve serves the RPC on the given listener in the background.
func (s *Server) Serve(lis net.Listener) {
	s.listener = lis

	go func() {
		logging.DefaultLogger().Infof("serving RPC on %s", lis.Addr())

		if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logging.DefaultLogger().Error(err)
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
	s.healthServer.Shutdown()

	if graceful {
		s.grpcServer.GracefulStop()
	} else {
		s.grpcServer.Stop()
	}
}

// GRPCServer returns the gRPC server.
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpcServer
}
