// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package main

import (
	"fmt"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/vigil/internal/config"
	"github.com/tomtom215/vigil/internal/logging"
	"github.com/tomtom215/vigil/internal/storage"
)

// initStorage opens the configured backend. The returned service, if any,
// runs background maintenance and belongs in the data layer.
func initStorage(cfg *config.StorageConfig) (storage.Store, suture.Service, error) {
	switch cfg.Backend {
	case "memory":
		logging.Warn().Msg("Using in-memory storage: notifications and chart history are lost on restart")
		return storage.NewMemoryStore(), nil, nil
	case "badger", "":
		store, err := storage.OpenBadger(storage.BadgerOptions{
			Path:       cfg.Path,
			SyncWrites: cfg.SyncWrites,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
