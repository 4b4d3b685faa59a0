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

package backend

import (
	"errors"
	"fmt"
)

const (
	// DefaultMaxActionsPerSync is the default maximum number of actions a
	// single sync may carry.
	DefaultMaxActionsPerSync = 1000
)

var (
	// ErrInvalidMaxActionsPerSync occurs when MaxActionsPerSync is not positive.
	ErrInvalidMaxActionsPerSync = errors.New("invalid max actions per sync")
)

// Config is the configuration for creating a Backend instance.
type Config struct {
	// MaxActionsPerSync is the maximum number of actions a single sync may
	// carry. Larger batches are rejected before any action is applied.
	MaxActionsPerSync int `yaml:"MaxActionsPerSync"`

	// Hostname is textsync server hostname. hostname is used by metrics.
	Hostname string `yaml:"Hostname"`
}

// Validate validates this config.
func (c *Config) Validate() error {
	if c.MaxActionsPerSync < 1 {
		return fmt.Errorf(
			`invalid argument "%d" for "--max-actions-per-sync" flag: %w`,
			c.MaxActionsPerSync,
			ErrInvalidMaxActionsPerSync,
		)
	}

	return nil
}
