package qanything

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/models.yaml
var modelCatalogYAML []byte

// Model Catalog Philosophy:
//
// This package ships MODEL METADATA for UX and advisory validation purposes.
// It does NOT enforce limits - the remote API is the source of truth, and
// the hosted service adds models faster than this file is updated.
//
// Library users can override the embedded catalog by:
//  1. Calling LoadModelCatalogFromFile() with custom YAML
//  2. Calling RegisterModel() programmatically

// ModelCatalog describes the chat models known to the hosted service.
type ModelCatalog struct {
	Version     string               `yaml:"version"`
	LastUpdated string               `yaml:"last_updated"`
	Models      map[string]ModelInfo `yaml:"models"`
}

// ModelInfo describes one chat model's limits and features.
type ModelInfo struct {
	MaxToken int           `yaml:"max_token"`
	Features ModelFeatures `yaml:"features"`
}

// ModelFeatures indicates which chat settings a model supports.
type ModelFeatures struct {
	Networking        bool `yaml:"networking"`
	HybridSearch      bool `yaml:"hybrid_search"`
	SourceAttribution bool `yaml:"source_attribution"`
}

// ModelRegistry manages the model catalog.
type ModelRegistry struct {
	catalog ModelCatalog
	mu      sync.RWMutex
}

var (
	globalModelRegistry     *ModelRegistry
	globalModelRegistryOnce sync.Once
)

// GetModelRegistry returns the global model registry (singleton), seeded
// from the embedded catalog.
func GetModelRegistry() *ModelRegistry {
	globalModelRegistryOnce.Do(func() {
		globalModelRegistry = &ModelRegistry{}
		if err := yaml.Unmarshal(modelCatalogYAML, &globalModelRegistry.catalog); err != nil {
			// Keep an empty catalog; validation degrades to "model unknown".
			globalModelRegistry.catalog.Models = map[string]ModelInfo{}
		}
	})
	return globalModelRegistry
}

// GetModelInfo returns catalog metadata for a model.
func (r *ModelRegistry) GetModelInfo(model string) (*ModelInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.catalog.Models[model]
	if !ok {
		return nil, fmt.Errorf("model %s not found in catalog", model)
	}
	return &info, nil
}

// KnownModel checks whether a model appears in the catalog.
func (r *ModelRegistry) KnownModel(model string) bool {
	_, err := r.GetModelInfo(model)
	return err == nil
}

// ModelNames lists the catalog's model names.
func (r *ModelRegistry) ModelNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.catalog.Models))
	for name := range r.catalog.Models {
		names = append(names, name)
	}
	return names
}

// RegisterModel adds or replaces one model's catalog entry.
func (r *ModelRegistry) RegisterModel(name string, info ModelInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.catalog.Models == nil {
		r.catalog.Models = map[string]ModelInfo{}
	}
	r.catalog.Models[name] = info
}

// LoadModelCatalogFromFile replaces the catalog from a YAML file matching the
// embedded format. Lets users track service-side model additions without a
// library upgrade.
func (r *ModelRegistry) LoadModelCatalogFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model catalog: %w", err)
	}

	var catalog ModelCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("failed to unmarshal model catalog: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalog = catalog
	return nil
}
