// Package pillars provides the read-only catalog of topic pillars.
package pillars

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/insight-journal/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed pillars.yaml
var builtin []byte

// document is the on-disk shape of a catalog file.
type document struct {
	Pillars []types.Pillar `yaml:"pillars" validate:"required,min=1,dive"`
}

// Catalog is an ordered, immutable set of pillar definitions.
type Catalog struct {
	pillars []types.Pillar
	byID    map[types.PillarID]int
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("built-in pillar catalog is invalid: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pillar catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse pillar catalog: %w", err)
	}
	return New(doc.Pillars)
}

// New builds a catalog from definitions, enforcing unique ids and non-empty
// questions for every content pillar.
func New(defs []types.Pillar) (*Catalog, error) {
	if err := validator.New().Struct(document{Pillars: defs}); err != nil {
		return nil, &CatalogError{Message: "invalid pillar definition", Cause: err}
	}

	c := &Catalog{
		pillars: make([]types.Pillar, 0, len(defs)),
		byID:    make(map[types.PillarID]int, len(defs)),
	}
	for _, p := range defs {
		if _, dup := c.byID[p.ID]; dup {
			return nil, &CatalogError{Pillar: p.ID, Message: "duplicate pillar id"}
		}
		if p.ID.IsContent() && len(p.Questions) == 0 {
			return nil, &CatalogError{Pillar: p.ID, Message: "content pillar has no questions"}
		}
		c.byID[p.ID] = len(c.pillars)
		c.pillars = append(c.pillars, p.Clone())
	}
	return c, nil
}

// Get looks up a pillar by id.
func (c *Catalog) Get(id types.PillarID) (types.Pillar, bool) {
	i, ok := c.byID[id]
	if !ok {
		return types.Pillar{}, false
	}
	return c.pillars[i].Clone(), true
}

// All returns every pillar in catalog order.
func (c *Catalog) All() []types.Pillar {
	out := make([]types.Pillar, len(c.pillars))
	for i, p := range c.pillars {
		out[i] = p.Clone()
	}
	return out
}

// First returns the default selection: the first pillar in catalog order.
func (c *Catalog) First() types.Pillar {
	return c.pillars[0].Clone()
}

// ContentPillars returns all pillars except the newsletter sentinel.
func (c *Catalog) ContentPillars() []types.Pillar {
	out := make([]types.Pillar, 0, len(c.pillars))
	for _, p := range c.pillars {
		if p.ID.IsContent() {
			out = append(out, p.Clone())
		}
	}
	return out
}

// CatalogError reports an invalid catalog definition.
type CatalogError struct {
	Pillar  types.PillarID
	Message string
	Cause   error
}

func (e *CatalogError) Error() string {
	msg := e.Message
	if e.Pillar != "" {
		msg = fmt.Sprintf("pillar %q: %s", e.Pillar, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *CatalogError) Unwrap() error {
	return e.Cause
}
