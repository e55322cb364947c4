package component

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"schematic-editor/pkg/geometry"
)

const libraryFile = "parts.json"

// ErrBuiltinType is returned when a library part reuses a built-in type name.
var ErrBuiltinType = errors.New("type is built in")

// PartDefinition describes a user-defined part type.
type PartDefinition struct {
	Type    string           `json:"type"`
	Prefix  string           `json:"prefix"`
	Pins    []geometry.Point `json:"pins"`
	Body    *geometry.Rect   `json:"body,omitempty"`
	Aliases []string         `json:"aliases,omitempty"` // Alternate type names
}

// Footprint converts the definition.
func (pd *PartDefinition) Footprint() Footprint {
	fp := Footprint{Prefix: pd.Prefix, Pins: append([]geometry.Point(nil), pd.Pins...)}
	if pd.Body != nil {
		fp.Body = *pd.Body
	}
	return fp
}

func (pd *PartDefinition) validate() error {
	name := normalizeType(pd.Type)
	switch {
	case name == "":
		return errors.New("part without type")
	case pd.Prefix == "":
		return fmt.Errorf("part %s: missing prefix", name)
	case len(pd.Pins) == 0:
		return fmt.Errorf("part %s: no pins", name)
	}
	if len(pd.Pins) == 2 && geometry.AxisOf(pd.Pins[0], pd.Pins[1]) == geometry.AxisNone {
		return fmt.Errorf("part %s: two-pin parts need axis-aligned pins", name)
	}
	return nil
}

// Library is a set of user-defined part types, kept in a JSON file.
type Library struct {
	Parts []*PartDefinition `json:"parts"`
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{Parts: make([]*PartDefinition, 0)}
}

// Add adds or replaces a part definition.
func (lib *Library) Add(part *PartDefinition) {
	for i, p := range lib.Parts {
		if strings.EqualFold(p.Type, part.Type) {
			lib.Parts[i] = part
			lib.Sort()
			return
		}
	}
	lib.Parts = append(lib.Parts, part)
	lib.Sort()
}

// Get returns the definition whose type or alias matches name, or nil.
func (lib *Library) Get(name string) *PartDefinition {
	name = strings.TrimSpace(name)
	for _, p := range lib.Parts {
		if strings.EqualFold(p.Type, name) {
			return p
		}
	}
	for _, p := range lib.Parts {
		for _, alias := range p.Aliases {
			if strings.EqualFold(alias, name) {
				return p
			}
		}
	}
	return nil
}

// Sort orders parts by type name.
func (lib *Library) Sort() {
	sort.Slice(lib.Parts, func(i, j int) bool {
		return strings.ToLower(lib.Parts[i].Type) < strings.ToLower(lib.Parts[j].Type)
	})
}

// Install registers every part and alias in reg. Built-in types cannot be
// redefined; nothing is registered when any part is invalid.
func (lib *Library) Install(reg *Registry) error {
	for _, p := range lib.Parts {
		if err := p.validate(); err != nil {
			return err
		}
		for _, name := range append([]string{p.Type}, p.Aliases...) {
			t := normalizeType(name)
			if _, builtin := Footprints[t]; builtin {
				return fmt.Errorf("install %s: %w", t, ErrBuiltinType)
			}
		}
	}
	for _, p := range lib.Parts {
		fp := p.Footprint()
		for _, name := range append([]string{p.Type}, p.Aliases...) {
			reg.register(normalizeType(name), fp)
		}
	}
	return nil
}

// DefaultLibraryPath returns ~/.config/schematic-editor/parts.json.
func DefaultLibraryPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "schematic-editor", libraryFile), nil
}

// LoadLibrary reads a library file. A missing file yields an empty library.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewLibrary(), nil
		}
		return nil, err
	}
	lib := NewLibrary()
	if err := json.Unmarshal(data, lib); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	lib.Sort()
	return lib, nil
}

// Save writes the library to path, creating its directory.
func (lib *Library) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
