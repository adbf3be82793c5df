package main

import (
	"fmt"
	"time"

	"github.com/hakim/scanreports/internal/config"
	"github.com/hakim/scanreports/internal/storage"
)

// openProvider builds the report provider selected by the data config
func openProvider(c *config.Config) (*storage.MemoryStore, error) {
	if c.Data.FixturesPath == "" {
		return storage.NewSampleStore(time.Now()), nil
	}

	store, err := storage.LoadFixtures(c.Data.FixturesPath)
	if err != nil {
		return nil, fmt.Errorf("loading fixtures: %w", err)
	}
	return store, nil
}
