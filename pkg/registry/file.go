package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/coredata/pkg/domain"
)

// File represents the structure of entities.yaml.
type File struct {
	Entities []map[string]any `yaml:"entities" json:"entities"`
}

// LoadFile reads entity descriptors from a YAML or JSON file.
// A missing file is treated as "no extra entities configured".
func LoadFile(path string) ([]domain.Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read entities file: %w", err)
	}

	var file File
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	entities := make([]domain.Entity, 0, len(file.Entities))
	for i, raw := range file.Entities {
		e, err := decodeEntity(raw)
		if err != nil {
			return nil, fmt.Errorf("entity #%d: %w", i, err)
		}
		entities = append(entities, e)
	}

	return entities, nil
}

func decodeEntity(raw map[string]any) (domain.Entity, error) {
	var e domain.Entity
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &e,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return e, err
	}
	if err := decoder.Decode(raw); err != nil {
		return e, fmt.Errorf("failed to decode entity: %w", err)
	}

	if e.Kind == "" || e.Name == "" || e.BaseURL == "" {
		return e, fmt.Errorf("entity requires kind, name and baseURL (got %s/%s %q)", e.Kind, e.Name, e.BaseURL)
	}
	e.BaseURL = strings.TrimSuffix(e.BaseURL, "/")

	return e, nil
}
