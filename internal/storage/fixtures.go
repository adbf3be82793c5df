package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fixtureFile is the on-disk layout of a report fixture document.
// JSON documents are accepted as well since JSON is a subset of YAML.
type fixtureFile struct {
	Reports []Entry `yaml:"reports"`
}

// LoadFixtures reads a fixture document and returns a store serving its reports
func LoadFixtures(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures %s: %w", path, err)
	}

	var doc fixtureFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing fixtures %s: %w", path, err)
	}

	store, err := NewMemoryStore(doc.Reports)
	if err != nil {
		return nil, fmt.Errorf("loading fixtures %s: %w", path, err)
	}
	return store, nil
}

// MarshalFixtures encodes entries in the fixture document layout
func MarshalFixtures(entries []Entry) ([]byte, error) {
	data, err := yaml.Marshal(fixtureFile{Reports: entries})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fixtures: %w", err)
	}
	return data, nil
}

// WriteFixtures writes entries to path so they can be loaded with LoadFixtures
func WriteFixtures(path string, entries []Entry) error {
	data, err := MarshalFixtures(entries)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write fixtures file: %w", err)
	}

	return nil
}
