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

package server

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yorkie-team/textsync/server/admin"
	"github.com/yorkie-team/textsync/server/backend"
	"github.com/yorkie-team/textsync/server/backend/database/mongo"
	"github.com/yorkie-team/textsync/server/gateway"
	"github.com/yorkie-team/textsync/server/profiling"
	"github.com/yorkie-team/textsync/server/rpc"
)

// Below are the values of the default values of TextSync config.
const (
	DefaultRPCPort       = rpc.DefaultPort
	DefaultGatewayPort   = gateway.DefaultPort
	DefaultProfilingPort = profiling.DefaultPort
	DefaultAdminPort     = admin.DefaultPort

	DefaultRPCMaxRequestBytes       = rpc.DefaultMaxRequestBytes
	DefaultRPCMaxConnectionAge      = rpc.DefaultMaxConnectionAge
	DefaultRPCMaxConnectionAgeGrace = rpc.DefaultMaxConnectionAgeGrace

	DefaultGatewayMaxRequestBytes = gateway.DefaultMaxRequestBytes
	DefaultGatewayReadTimeout     = gateway.DefaultReadTimeout

	DefaultMaxActionsPerSync = backend.DefaultMaxActionsPerSync

	DefaultMongoConnectionURI     = "mongodb://localhost:27017"
	DefaultMongoConnectionTimeout = 5 * time.Second
	DefaultMongoPingTimeout       = 5 * time.Second
	DefaultMongoTextSyncDatabase  = "textsync-meta"

	DefaultHostname = ""
)

// Config is the configuration for creating a TextSync instance.
type Config struct {
	RPC       *rpc.Config       `yaml:"RPC"`
	Gateway   *gateway.Config   `yaml:"Gateway"`
	Profiling *profiling.Config `yaml:"Profiling"`
	Admin     *admin.Config     `yaml:"Admin"`
	Backend   *backend.Config   `yaml:"Backend"`
	Mongo     *mongo.Config     `yaml:"Mongo"`
}

// NewConfig returns a Config struct that contains reasonable defaults
// for most of the configurations.
func NewConfig() *Config {
	return newConfig(DefaultRPCPort, DefaultGatewayPort, DefaultProfilingPort)
}

// NewConfigFromFile returns a Config struct for the given conf file.
func NewConfigFromFile(path string) (*Config, error) {
	conf := &Config{}
	bytes, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err = yaml.Unmarshal(bytes, conf); err != nil {
		return nil, fmt.Errorf("unmarshal config file: %w", err)
	}

	conf.ensureDefaultValue()
	return conf, nil
}

// RPCAddr returns the RPC address.
func (c *Config) RPCAddr() string {
	return fmt.Sprintf("localhost:%d", c.RPC.Port)
}

// GatewayAddr returns the HTTP gateway address.
func (c *Config) GatewayAddr() string {
	return fmt.Sprintf("localhost:%d", c.Gateway.Port)
}

// AdminAddr returns the admin address, or "" if the admin server is disabled.
func (c *Config) AdminAddr() string {
	if c.Admin == nil {
		return ""
	}
	return fmt.Sprintf("127.0.0.1:%d", c.Admin.Port)
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if err := c.RPC.Validate(); err != nil {
		return err
	}

	if err := c.Gateway.Validate(); err != nil {
		return err
	}

	if c.Profiling != nil {
		if err := c.Profiling.Validate(); err != nil {
			return err
		}
	}

	if c.Admin != nil {
		if err := c.Admin.Validate(); err != nil {
			return err
		}
	}

	if err := c.Backend.Validate(); err != nil {
		return err
	}

	if c.Mongo != nil {
		if err := c.Mongo.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ensureDefaultValue sets the value of the option to which the default value
// should be applied when the user does not input it.
func (c *Config) ensureDefaultValue() {
	if c.RPC == nil {
		c.RPC = &rpc.Config{}
	}
	if c.RPC.Port == 0 {
		c.RPC.Port = DefaultRPCPort
	}
	if c.RPC.MaxRequestBytes == 0 {
		c.RPC.MaxRequestBytes = DefaultRPCMaxRequestBytes
	}
	if c.RPC.MaxConnectionAge == "" {
		c.RPC.MaxConnectionAge = DefaultRPCMaxConnectionAge
	}
	if c.RPC.MaxConnectionAgeGrace == "" {
		c.RPC.MaxConnectionAgeGrace = DefaultRPCMaxConnectionAgeGrace
	}

	if c.Gateway == nil {
		c.Gateway = &gateway.Config{}
	}
	if c.Gateway.Port == 0 {
		c.Gateway.Port = DefaultGatewayPort
	}
	if c.Gateway.MaxRequestBytes == 0 {
		c.Gateway.MaxRequestBytes = DefaultGatewayMaxRequestBytes
	}
	if c.Gateway.ReadTimeout == "" {
		c.Gateway.ReadTimeout = DefaultGatewayReadTimeout
	}

	if c.Profiling != nil && c.Profiling.Port == 0 {
		c.Profiling.Port = DefaultProfilingPort
	}

	if c.Admin != nil && c.Admin.Port == 0 {
		c.Admin.Port = DefaultAdminPort
	}

	if c.Backend == nil {
		c.Backend = &backend.Config{}
	}
	if c.Backend.MaxActionsPerSync == 0 {
		c.Backend.MaxActionsPerSync = DefaultMaxActionsPerSync
	}

	if c.Mongo != nil {
		if c.Mongo.ConnectionURI == "" {
			c.Mongo.ConnectionURI = DefaultMongoConnectionURI
		}

		if c.Mongo.ConnectionTimeout == "" {
			c.Mongo.ConnectionTimeout = DefaultMongoConnectionTimeout.String()
		}

		if c.Mongo.TextSyncDatabase == "" {
			c.Mongo.TextSyncDatabase = DefaultMongoTextSyncDatabase
		}

		if c.Mongo.PingTimeout == "" {
			c.Mongo.PingTimeout = DefaultMongoPingTimeout.String()
		}
	}
}

func newConfig(port, gatewayPort, profilingPort int) *Config {
	return &Config{
		RPC: &rpc.Config{
			Port:                  port,
			MaxRequestBytes:       DefaultRPCMaxRequestBytes,
			MaxConnectionAge:      DefaultRPCMaxConnectionAge,
			MaxConnectionAgeGrace: DefaultRPCMaxConnectionAgeGrace,
		},
		Gateway: &gateway.Config{
			Port:            gatewayPort,
			MaxRequestBytes: DefaultGatewayMaxRequestBytes,
			ReadTimeout:     DefaultGatewayReadTimeout,
		},
		Profiling: &profiling.Config{
			Port: profilingPort,
		},
		Backend: &backend.Config{
			MaxActionsPerSync: DefaultMaxActionsPerSync,
			Hostname:          DefaultHostname,
		},
	}
}
