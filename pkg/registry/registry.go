// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"advisor-ai/internal/common/validation"
)

var schema = validation.MustCompile(registrySchema)

// LoadRegistry reads and validates the catalog at path.
func LoadRegistry(path string) (*PromptRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse validates data against the catalog schema, then rejects duplicate
// (category, responseType) pairs.
func Parse(data []byte) (*PromptRegistry, error) {
	if err := schemaError(schema.ValidateJSON(data)); err != nil {
		return nil, err
	}

	var reg PromptRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	if err := checkDuplicates(&reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate runs an in-memory catalog through the same checks as Parse.
func Validate(reg *PromptRegistry) error {
	if err := schemaError(schema.ValidateValue(reg)); err != nil {
		return err
	}
	return checkDuplicates(reg)
}

func schemaError(result *validation.ValidationResult) error {
	if result.Valid {
		return nil
	}
	return fmt.Errorf("invalid prompt registry: %s", result.Error())
}

func checkDuplicates(reg *PromptRegistry) error {
	seen := make(map[string]bool, len(reg.Prompts))
	for _, p := range reg.Prompts {
		if seen[p.Key()] {
			return fmt.Errorf("duplicate prompt: %s", p.Key())
		}
		seen[p.Key()] = true
	}
	return nil
}

// Add appends entry, refusing a key that is already present.
func (r *PromptRegistry) Add(entry PromptEntry) error {
	for _, p := range r.Prompts {
		if p.Key() == entry.Key() {
			return fmt.Errorf("prompt %s already exists", entry.Key())
		}
	}
	r.Prompts = append(r.Prompts, entry)
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return nil
}

// Save writes the catalog as indented JSON, creating the directory if needed.
func Save(reg *PromptRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
