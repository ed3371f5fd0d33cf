package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrScenarioMalformed signals a structurally invalid scenario document.
// Load-time failures are fatal: the system refuses to start with a
// known-bad scenario rather than serve a half-built one.
var ErrScenarioMalformed = errors.New("scenario malformed")

// LoadAll parses every scenario document in dir (one YAML file per
// scenario) into a map keyed by scenario id.
func LoadAll(dir string) (map[string]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario directory: %w", err)
	}

	scenarios := make(map[string]*Scenario)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		sc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}

		if _, dup := scenarios[sc.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate scenario id %q in %s", ErrScenarioMalformed, sc.ID, entry.Name())
		}
		scenarios[sc.ID] = sc
	}

	return scenarios, nil
}

// LoadFile parses and validates a single scenario document.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var sc Scenario
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrScenarioMalformed, filepath.Base(path), err)
	}

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrScenarioMalformed, filepath.Base(path), err)
	}

	return &sc, nil
}
