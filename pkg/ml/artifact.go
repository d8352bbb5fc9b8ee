package ml

import (
	"encoding/json"
	"fmt"
	"os"
)

// Save writes the model as a JSON artifact.
func (m *LogisticModel) Save(path string) error {
	return saveJSON(path, m)
}

// Save writes the ensemble as a JSON artifact.
func (m *MultiStumpModel) Save(path string) error {
	return saveJSON(path, m)
}

// Save writes the binary booster as a JSON artifact.
func (m *StumpModel) Save(path string) error {
	return saveJSON(path, m)
}

// LoadLogisticModel reads a logistic artifact from disk.
func LoadLogisticModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", path, err)
	}
	return ParseLogisticModel(data)
}

// LoadMultiStumpModel reads a multiclass stump artifact from disk.
func LoadMultiStumpModel(path string) (*MultiStumpModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", path, err)
	}
	return ParseMultiStumpModel(data)
}

// ParseLogisticModel decodes a logistic artifact. Used directly by the
// mtime-keyed artifact caches.
func ParseLogisticModel(data []byte) (*LogisticModel, error) {
	var m LogisticModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse logistic model: %w", err)
	}
	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("logistic model artifact has no weights")
	}
	return &m, nil
}

// ParseMultiStumpModel decodes a multiclass stump artifact.
func ParseMultiStumpModel(data []byte) (*MultiStumpModel, error) {
	var m MultiStumpModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse stump model: %w", err)
	}
	if len(m.Models) == 0 || len(m.Models) != len(m.Classes) {
		return nil, fmt.Errorf("stump model artifact has %d boosters for %d classes", len(m.Models), len(m.Classes))
	}
	return &m, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model %s: %w", path, err)
	}
	return nil
}
