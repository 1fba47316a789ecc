// Package resources serves the recommended books, movies and songs.
package resources

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"mindbloom/models"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

var ErrUnknownKind = errors.New("unknown resource kind")

// Catalog holds one shelf per resource kind.
type Catalog struct {
	shelves map[string]models.Shelf
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

// Parse builds a catalog from YAML keyed by kind.
func Parse(data []byte) (*Catalog, error) {
	shelves := make(map[string]models.Shelf)
	if err := yaml.Unmarshal(data, &shelves); err != nil {
		return nil, fmt.Errorf("failed to parse resource catalog: %w", err)
	}
	for _, kind := range []string{models.KindBook, models.KindMovie, models.KindSong} {
		if _, ok := shelves[kind]; !ok {
			return nil, fmt.Errorf("resource catalog has no %q shelf", kind)
		}
	}
	return &Catalog{shelves: shelves}, nil
}

// Shelf returns the shelf for kind. A non-empty symptom keeps only items
// tagged with it, compared case-insensitively; a category id such as
// "self-help" matches "Self-Help".
func (c *Catalog) Shelf(kind, symptom string) (models.Shelf, error) {
	shelf, ok := c.shelves[kind]
	if !ok {
		return models.Shelf{}, ErrUnknownKind
	}
	symptom = normalize(symptom)
	if symptom == "" {
		return shelf, nil
	}

	filtered := make([]models.Resource, 0, len(shelf.Items))
	for _, item := range shelf.Items {
		if matches(item, symptom) {
			filtered = append(filtered, item)
		}
	}
	shelf.Items = filtered
	return shelf, nil
}

// Symptoms lists the distinct tags used on a shelf, in first-seen order.
func (c *Catalog) Symptoms(kind string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, item := range c.shelves[kind].Items {
		for _, s := range item.Symptoms {
			key := normalize(s)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func matches(item models.Resource, symptom string) bool {
	for _, s := range item.Symptoms {
		if strings.Contains(normalize(s), symptom) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", " ")
}
