package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"meal-prep-planner/internal/logging"
	"meal-prep-planner/internal/recipe"
)

// CatalogStore reads and writes recipe catalogs as JSON files.
type CatalogStore struct {
	path string
}

type catalogFile struct {
	Recipes []recipe.Recipe `json:"recipes"`
}

// NewCatalogStore creates a CatalogStore for the file at path.
func NewCatalogStore(path string) *CatalogStore {
	return &CatalogStore{path: path}
}

// Path returns the catalog file location.
func (s *CatalogStore) Path() string {
	return s.path
}

// Exists checks if the catalog file exists.
func (s *CatalogStore) Exists() bool {
	_, err := os.Stat(s.path)
	return !errors.Is(err, os.ErrNotExist)
}

// Load reads the catalog. Both {"recipes": [...]} and a bare array are
// accepted. Entries that fail validation are skipped with a warning.
func (s *CatalogStore) Load() ([]recipe.Recipe, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Decode(data)
}

// Decode parses catalog JSON in either accepted shape.
func Decode(data []byte) ([]recipe.Recipe, error) {
	var raw []recipe.Recipe
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
		}
	} else {
		var file catalogFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
		}
		raw = file.Recipes
	}

	recipes := make([]recipe.Recipe, 0, len(raw))
	for _, r := range raw {
		if err := r.Validate(); err != nil {
			logging.Warn().Err(err).Msg("skipping invalid catalog entry")
			continue
		}
		recipes = append(recipes, r.WithDefaults())
	}
	return recipes, nil
}

// Save writes recipes in the {"recipes": [...]} shape, creating the parent
// directory when needed.
func (s *CatalogStore) Save(recipes []recipe.Recipe) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", filepath.Dir(s.path), err)
	}

	data, err := json.MarshalIndent(catalogFile{Recipes: recipes}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	// Write to a sibling file first so a failed write leaves the old catalog intact.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace catalog file: %w", err)
	}
	return nil
}
