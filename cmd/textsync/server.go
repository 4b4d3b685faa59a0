/*
 * Copyright 2022 The Yorkie Authors. All rights reserved.
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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yorkie-team/textsync/server"
	"github.com/yorkie-team/textsync/server/admin"
	"github.com/yorkie-team/textsync/server/backend/database/mongo"
	"github.com/yorkie-team/textsync/server/logging"
)

var (
	gracefulTimeout = 10 * time.Second
)

var (
	flagConfPath  string
	flagLogLevel  string
	flagLogFormat string

	adminPort int

	mongoConnectionURI     string
	mongoConnectionTimeout time.Duration
	mongoTextSyncDatabase  string
	mongoPingTimeout       time.Duration

	gatewayReadTimeout time.Duration

	conf = server.NewConfig()
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server [options]",
		Short: "Start TextSync server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf.Gateway.ReadTimeout = gatewayReadTimeout.String()

			if adminPort > 0 {
				conf.Admin = &admin.Config{Port: adminPort}
			}

			if mongoConnectionURI != "" {
				conf.Mongo = &mongo.Config{
					ConnectionURI:     mongoConnectionURI,
					ConnectionTimeout: mongoConnectionTimeout.String(),
					TextSyncDatabase:  mongoTextSyncDatabase,
					PingTimeout:       mongoPingTimeout.String(),
				}
			}

			// If config file is given, command-line arguments will be overwritten.
			if flagConfPath != "" {
				parsed, err := server.NewConfigFromFile(flagConfPath)
				if err != nil {
					return err
				}
				conf = parsed
			}

			if err := logging.SetLogLevel(flagLogLevel); err != nil {
				return err
			}
			if err := logging.SetLogFormat(flagLogFormat); err != nil {
				return err
			}

			ts, err := server.New(conf)
			if err != nil {
				return err
			}

			if err := ts.Start(); err != nil {
				return err
			}

			if code := handleSignal(ts); code != 0 {
				return fmt.Errorf("exit code: %d", code)
			}

			return nil
		},
	}
}

func handleSignal(ts *server.TextSync) int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	var sig os.Signal
	select {
	case s := <-sigCh:
		sig = s
	case <-ts.ShutdownCh():
		// textsync is already shutdown
		return 0
	}

	graceful := false
	if sig == syscall.SIGINT || sig == syscall.SIGTERM {
		graceful = true
	}

	gracefulCh := make(chan struct{})
	go func() {
		if err := ts.Shutdown(graceful); err != nil {
			logging.DefaultLogger().Error(err)
			return
		}
		close(gracefulCh)
	}()

	select {
	case <-sigCh:
		return 1
	case <-time.After(gracefulTimeout):
		return 1
	case <-gracefulCh:
		return 0
	}
}

func init() {
	cmd := newServerCmd()
	cmd.Flags().StringVarP(
		&flagConfPath,
		"config",
		"c",
		"",
		"Config path",
	)
	cmd.Flags().StringVarP(
		&flagLogLevel,
		"log-level",
		"l",
		"info",
		"Log level: debug, info, warn, error, panic, fatal",
	)
	cmd.Flags().StringVar(
		&flagLogFormat,
		"log-format",
		"console",
		"Log format: json, console",
	)
	cmd.Flags().IntVar(
		&conf.RPC.Port,
		"rpc-port",
		server.DefaultRPCPort,
		"RPC port",
	)
	cmd.Flags().StringVar(
		&conf.RPC.CertFile,
		"rpc-cert-file",
		"",
		"RPC certification file's path",
	)
	cmd.Flags().StringVar(
		&conf.RPC.KeyFile,
		"rpc-key-file",
		"",
		"RPC key file's path",
	)
	cmd.Flags().Uint64Var(
		&conf.RPC.MaxRequestBytes,
		"rpc-max-requests-bytes",
		server.DefaultRPCMaxRequestBytes,
		"Maximum client request size in bytes the server will accept.",
	)
	cmd.Flags().StringVar(
		&conf.RPC.MaxConnectionAge,
		"rpc-max-connection-age",
		server.DefaultRPCMaxConnectionAge,
		"Maximum duration of connection may exist before it will be closed by sending a GoAway.",
	)
	cmd.Flags().StringVar(
		&conf.RPC.MaxConnectionAgeGrace,
		"rpc-max-connection-age-grace",
		server.DefaultRPCMaxConnectionAgeGrace,
		"Additional grace period after MaxConnectionAge after which connections will be forcibly closed.",
	)
	cmd.Flags().IntVar(
		&conf.Gateway.Port,
		"gateway-port",
		server.DefaultGatewayPort,
		"HTTP gateway port",
	)
	cmd.Flags().Int64Var(
		&conf.Gateway.MaxRequestBytes,
		"gateway-max-request-bytes",
		server.DefaultGatewayMaxRequestBytes,
		"Maximum request body size in bytes the HTTP gateway will accept.",
	)
	cmd.Flags().IntVar(
		&conf.Gateway.MaxConnections,
		"gateway-max-connections",
		0,
		"Maximum number of simultaneous HTTP connections. 0 means unlimited.",
	)
	cmd.Flags().DurationVar(
		&gatewayReadTimeout,
		"gateway-read-timeout",
		30*time.Second,
		"Timeout for reading a whole HTTP request.",
	)
	cmd.Flags().IntVar(
		&conf.Profiling.Port,
		"profiling-port",
		server.DefaultProfilingPort,
		"Profiling port",
	)
	cmd.Flags().BoolVar(
		&conf.Profiling.EnablePprof,
		"enable-pprof",
		false,
		"Enable runtime profiling data via HTTP server.",
	)
	cmd.Flags().IntVar(
		&adminPort,
		"admin-port",
		0,
		"Admin port on localhost. The admin server is disabled if it is not given.",
	)
	cmd.Flags().IntVar(
		&conf.Backend.MaxActionsPerSync,
		"max-actions-per-sync",
		server.DefaultMaxActionsPerSync,
		"Maximum number of actions a single sync may carry.",
	)
	cmd.Flags().StringVar(
		&mongoConnectionURI,
		"mongo-connection-uri",
		"",
		"MongoDB's connection URI. The in-memory database is used if it is not given.",
	)
	cmd.Flags().DurationVar(
		&mongoConnectionTimeout,
		"mongo-connection-timeout",
		server.DefaultMongoConnectionTimeout,
		"Mongo DB's connection timeout",
	)
	cmd.Flags().StringVar(
		&mongoTextSyncDatabase,
		"mongo-database",
		server.DefaultMongoTextSyncDatabase,
		"TextSync's database name in MongoDB",
	)
	cmd.Flags().DurationVar(
		&mongoPingTimeout,
		"mongo-ping-timeout",
		server.DefaultMongoPingTimeout,
		"Mongo DB's ping timeout",
	)
	cmd.Flags().StringVar(
		&conf.Backend.Hostname,
		"hostname",
		server.DefaultHostname,
		"TextSync Server Hostname",
	)

	rootCmd.AddCommand(cmd)
}
