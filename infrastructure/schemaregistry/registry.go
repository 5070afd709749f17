// Package schemaregistry implements ports.SchemaRegistry and the
// core.SchemaDefinition view over a metainfo-style metamodel: packages of
// named sections composed of quantities, sub-sections, and references
// (spec.md §6, Schema registry; §4.6 DefinitionReader).
package schemaregistry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"graphqueryreader/domain/core"
)

var validate = validator.New()

// QuantityType names the primitive or reference type a Quantity holds.
type QuantityType string

const (
	QuantityTypeString    QuantityType = "string"
	QuantityTypeNumber    QuantityType = "number"
	QuantityTypeBool      QuantityType = "bool"
	QuantityTypeReference QuantityType = "reference"
)

// Quantity is a leaf field of a Section.
type Quantity struct {
	Name string       `yaml:"name" json:"name" validate:"required"`
	Type QuantityType `yaml:"type" json:"type" validate:"required,oneof=string number bool reference"`
}

// SubSection names a nested Section, optionally repeating (rendered as a
// list in the archive).
type SubSection struct {
	Name    string `yaml:"name" json:"name" validate:"required"`
	Section string `yaml:"section" json:"section" validate:"required"`
	Repeats bool   `yaml:"repeats" json:"repeats"`
}

// Section is one named definition: a set of quantities and sub-sections.
type Section struct {
	QualifiedName string       `yaml:"name" json:"name" validate:"required"`
	BaseSections  []string     `yaml:"base_sections" json:"base_sections"`
	Quantities    []Quantity   `yaml:"quantities" json:"quantities"`
	SubSections   []SubSection `yaml:"sub_sections" json:"sub_sections"`
}

// Package is a named collection of sections, the unit a definitions
// registry loads and resolves paths within. The json tags let Package also
// be decoded from a custom definitions dict embedded in an archive body
// (spec.md §4.6), not just from a YAML-loaded metainfo package.
type Package struct {
	Name     string             `yaml:"name" json:"name" validate:"required"`
	Sections map[string]Section `yaml:"sections" json:"sections"`
}

// definition adapts a Section (plus the registry it was resolved from)
// to core.SchemaDefinition, the narrow view GraphNode/ArchiveReader need.
// local, when non-nil, is the sibling-sections map of the custom package
// this definition was parsed from (spec.md §4.6): sub-sections are looked
// up there first, before falling back to the shared registry, so a custom
// package's internal section references resolve without polluting the
// global package pool.
type definition struct {
	section  Section
	registry *Registry
	local    map[string]Section
}

func (d *definition) Name() string { return d.section.QualifiedName }

func (d *definition) ChildDefinition(property string) (core.SchemaDefinition, bool) {
	for _, sub := range d.section.SubSections {
		if sub.Name == property {
			if d.local != nil {
				if s, ok := d.local[sub.Section]; ok {
					return &definition{section: s, registry: d.registry, local: d.local}, true
				}
			}
			child, err := d.registry.Resolve(sub.Section)
			if err != nil {
				return nil, false
			}
			return child, true
		}
	}
	return nil, false
}

func (d *definition) IsRepeated(property string) bool {
	for _, sub := range d.section.SubSections {
		if sub.Name == property {
			return sub.Repeats
		}
	}
	return false
}

func (d *definition) Quantities() []core.QuantityRef {
	out := make([]core.QuantityRef, 0, len(d.section.Quantities))
	for _, q := range d.section.Quantities {
		out = append(out, core.QuantityRef{Name: q.Name, IsReference: q.Type == QuantityTypeReference})
	}
	return out
}

func (d *definition) SubSectionNames() []string {
	out := make([]string, 0, len(d.section.SubSections))
	for _, sub := range d.section.SubSections {
		out = append(out, sub.Name)
	}
	return out
}

func (d *definition) BaseSections() []string {
	return append([]string(nil), d.section.BaseSections...)
}

// Registry holds loaded Packages and resolves qualified section names to
// SchemaDefinitions, memoizing resolved definitions since a single
// request may touch the same definition from many archive paths (spec.md
// §4.6, package pool).
type Registry struct {
	mu         sync.RWMutex
	packages   map[string]Package
	cache      map[string]*definition
	customPool map[string]Package // poolKey ("upload:entry") -> parsed custom package
}

// New returns an empty registry; LoadPackage populates it.
func New() *Registry {
	return &Registry{
		packages:   make(map[string]Package),
		cache:      make(map[string]*definition),
		customPool: make(map[string]Package),
	}
}

// LoadPackage parses a YAML-encoded metainfo package and registers every
// section it contains under its qualified name.
func (r *Registry) LoadPackage(data []byte) error {
	var pkg Package
	if err := yaml.Unmarshal(data, &pkg); err != nil {
		return fmt.Errorf("parse package: %w", err)
	}
	if err := validate.Struct(pkg); err != nil {
		return fmt.Errorf("invalid package %q: %w", pkg.Name, err)
	}
	for name, section := range pkg.Sections {
		if err := validate.Struct(section); err != nil {
			return fmt.Errorf("invalid section %q in package %q: %w", name, pkg.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.packages[pkg.Name] = pkg
	for _, section := range pkg.Sections {
		r.cache[section.QualifiedName] = nil // invalidate any stale cached resolution
	}
	return nil
}

// Resolve returns the SchemaDefinition for a qualified section name,
// searching every loaded package.
func (r *Registry) Resolve(name string) (core.SchemaDefinition, error) {
	r.mu.RLock()
	if cached, ok := r.cache[name]; ok && cached != nil {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pkg := range r.packages {
		if section, ok := pkg.Sections[name]; ok {
			def := &definition{section: section, registry: r}
			r.cache[name] = def
			return def, nil
		}
	}
	return nil, fmt.Errorf("unknown schema definition %q", name)
}

// ResolveCustom parses a custom definitions package embedded in an
// archive body (the `definitions` key a custom `m_def` string points
// into) and resolves path within it, walking sub-sections by name after
// the first segment names the package's own section (spec.md §4.6,
// custom definitions). The parsed package is memoized under poolKey so
// repeated lookups against the same owning upload/entry reuse it instead
// of re-decoding raw on every reference.
func (r *Registry) ResolveCustom(poolKey string, raw map[string]interface{}, path []string) (core.SchemaDefinition, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("empty custom definition path")
	}

	r.mu.Lock()
	pkg, ok := r.customPool[poolKey]
	if !ok {
		data, err := json.Marshal(raw)
		if err != nil {
			r.mu.Unlock()
			return nil, fmt.Errorf("encode custom definitions package: %w", err)
		}
		if err := json.Unmarshal(data, &pkg); err != nil {
			r.mu.Unlock()
			return nil, fmt.Errorf("parse custom definitions package: %w", err)
		}
		r.customPool[poolKey] = pkg
	}
	r.mu.Unlock()

	section, ok := pkg.Sections[path[0]]
	if !ok {
		return nil, fmt.Errorf("unknown custom section %q in package %q", path[0], poolKey)
	}

	var result core.SchemaDefinition = &definition{section: section, registry: r, local: pkg.Sections}
	for _, seg := range path[1:] {
		child, ok := result.ChildDefinition(seg)
		if !ok {
			return nil, fmt.Errorf("unknown custom definition path segment %q", seg)
		}
		result = child
	}
	return result, nil
}
