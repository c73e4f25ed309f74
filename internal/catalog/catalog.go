// Package catalog provides the read-only lookup of entities and their registered reviews.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/hyperjump/reviewcheck/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed hotels.yaml
var defaultCatalog []byte

// Catalog maps entity IDs to entities and review sets. It is built once and never mutated,
// so it is safe for concurrent readers.
type Catalog struct {
	entities map[string]*models.Entity
	reviews  map[string]models.ReviewSet
	ids      []string
}

type catalogFile struct {
	Entities []catalogEntry `yaml:"entities"`
}

type catalogEntry struct {
	models.Entity `yaml:",inline"`
	Reviews       models.ReviewSet `yaml:"reviews"`
}

// Load reads a catalog from a YAML file. An empty path loads the built-in sample hotels.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in sample catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse builds a catalog from YAML. Entity IDs must be unique and names non-empty.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	c := &Catalog{
		entities: make(map[string]*models.Entity, len(f.Entities)),
		reviews:  make(map[string]models.ReviewSet, len(f.Entities)),
	}
	for i, e := range f.Entities {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: id is required", i)
		}
		if e.Name == "" {
			return nil, fmt.Errorf("catalog entry %q: name is required", e.ID)
		}
		if _, dup := c.entities[e.ID]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate id", e.ID)
		}
		entity := e.Entity
		c.entities[e.ID] = &entity
		c.reviews[e.ID] = e.Reviews
		c.ids = append(c.ids, e.ID)
	}
	sort.Strings(c.ids)
	return c, nil
}

// Entity returns the entity with id. The returned value must not be modified.
func (c *Catalog) Entity(id string) (*models.Entity, bool) {
	e, ok := c.entities[id]
	return e, ok
}

// Reviews returns the reviews registered for id, or an empty set if there are none.
func (c *Catalog) Reviews(id string) models.ReviewSet {
	return c.reviews[id]
}

// Entities returns all entities sorted by ID.
func (c *Catalog) Entities() []*models.Entity {
	out := make([]*models.Entity, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.entities[id])
	}
	return out
}

// Len returns the number of entities.
func (c *Catalog) Len() int {
	return len(c.ids)
}
