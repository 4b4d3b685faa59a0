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

// Package backend provides the backend implementation of the TextSync.
// This package is responsible for managing the database and other
// resources required to run TextSync.
package backend

import (
	"errors"
	"fmt"
	"os"

	"github.com/yorkie-team/textsync/server/backend/background"
	"github.com/yorkie-team/textsync/server/backend/database"
	memdb "github.com/yorkie-team/textsync/server/backend/database/memory"
	"github.com/yorkie-team/textsync/server/backend/database/mongo"
	"github.com/yorkie-team/textsync/server/backend/sync"
	"github.com/yorkie-team/textsync/server/logging"
	"github.com/yorkie-team/textsync/server/profiling/prometheus"
)

// Backend manages TextSync's backend such as Database. It also provides
// pubsub and locker.
type Backend struct {
	Config *Config

	// DB is the database instance.
	DB database.Database

	// Lockers is used to serialize syncs of the same document.
	Lockers *sync.LockerManager

	// PubSub is used to notify watchers of document changes.
	PubSub *sync.PubSub

	// Background is used to manage background tasks.
	Background *background.Background

	// Metrics is used to expose metrics.
	Metrics *prometheus.Metrics
}

// New creates a new instance of Backend.
func New(
	conf *Config,
	mongoConf *mongo.Config,
	metrics *prometheus.Metrics,
) (*Backend, error) {
	// 01. Build the server info with the given hostname or the hostname of the
	// current machine.
	if conf.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("os.Hostname: %w", err)
		}
		conf.Hostname = hostname
	}

	// 02. Create the database instance. If the MongoDB configuration is given,
	// create a MongoDB instance. Otherwise, create a memory database instance.
	var db database.Database
	var err error
	if mongoConf != nil {
		db, err = mongo.Dial(mongoConf)
	} else {
		db, err = memdb.New()
	}
	if err != nil {
		return nil, err
	}

	dbInfo := "memory"
	if mongoConf != nil {
		dbInfo = mongoConf.ConnectionURI
	}
	logging.DefaultLogger().Infof("backend created: db: %s", dbInfo)

	return &Backend{
		Config:     conf,
		DB:         db,
		Lockers:    sync.New(),
		PubSub:     sync.NewPubSub(),
		Background: background.New(metrics),
		Metrics:    metrics,
	}, nil
}

// Shutdown closes all resources of this instance.
func (b *Backend) Shutdown() error {
	var errs []error

	b.Background.Close()

	if err := b.DB.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("shutdown backend: %w", err)
	}

	logging.DefaultLogger().Infof("backend stopped")
	return nil
}
