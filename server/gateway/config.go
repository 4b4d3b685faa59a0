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
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultPort is the default port of the HTTP gateway.
	DefaultPort = 8080

	// DefaultMaxRequestBytes is the default maximum size of a request body.
	DefaultMaxRequestBytes = 4 * 1024 * 1024

	// DefaultMaxConnections is the default maximum number of simultaneous
	// connections. 0 means unlimited.
	DefaultMaxConnections = 0

	// DefaultReadTimeout is the default timeout for reading a request.
	DefaultReadTimeout = "30s"
)

var (
	// ErrInvalidGatewayPort occurs when the port in the config is invalid.
	ErrInvalidGatewayPort = errors.New("invalid port number for HTTP gateway")

	// ErrInvalidMaxConnections occurs when MaxConnections is negative.
	ErrInvalidMaxConnections = errors.New("invalid max connections for HTTP gateway")

	// ErrInvalidReadTimeout occurs when the read timeout is invalid.
	ErrInvalidReadTimeout = errors.New("invalid read timeout for HTTP gateway")
)

// Config is the configuration for creating a Server instance.
type Config struct {
	// Port is the port number for the HTTP gateway.
	Port int `yaml:"Port"`

	// MaxRequestBytes is the maximum size of a request body in bytes.
	MaxRequestBytes int64 `yaml:"MaxRequestBytes"`

	// MaxConnections is the maximum number of simultaneous connections.
	MaxConnections int `yaml:"MaxConnections"`

	// ReadTimeout is the timeout for reading a whole request.
	ReadTimeout string `yaml:"ReadTimeout"`
}

// Validate validates this config.
func (c *Config) Validate() error {
	if c.Port < 1 || 65535 < c.Port {
		return fmt.Errorf("must be between 1 and 65535, given %d: %w", c.Port, ErrInvalidGatewayPort)
	}

	if c.MaxConnections < 0 {
		return fmt.Errorf("given %d: %w", c.MaxConnections, ErrInvalidMaxConnections)
	}

	if _, err := time.ParseDuration(c.ReadTimeout); err != nil {
		return fmt.Errorf("%s: %w", c.ReadTimeout, ErrInvalidReadTimeout)
	}

	return nil
}

// ParseReadTimeout returns the read timeout, or 0 if it is invalid.
func (c *Config) ParseReadTimeout() time.Duration {
	d, err := time.ParseDuration(c.ReadTimeout)
	if err != nil {
		return 0
	}
	return d
}
