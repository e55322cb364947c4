// Package project provides schematic document handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"schematic-editor/internal/component"
	"schematic-editor/internal/wire"
)

// CurrentVersion is the document format version written by Save.
const CurrentVersion = 1

// File represents a schematic document.
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	Components []*component.Component `json:"components"`
	Wires      []wire.Wire            `json:"wires"`
}

// New creates an empty document.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:    CurrentVersion,
		Name:       name,
		Created:    now,
		Modified:   now,
		Components: []*component.Component{},
		Wires:      []wire.Wire{},
	}
}

// Load loads a document from a file.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	proj, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return proj, nil
}

// Decode reads a document from r. Components with unknown types are kept
// and laid out as resistors.
func Decode(r io.Reader) (*File, error) {
	var proj File
	if err := json.NewDecoder(r).Decode(&proj); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if proj.Version == 0 {
		proj.Version = CurrentVersion
	}
	if proj.Version > CurrentVersion {
		return nil, fmt.Errorf("document version %d is newer than %d", proj.Version, CurrentVersion)
	}
	for i, c := range proj.Components {
		if c == nil {
			return nil, fmt.Errorf("component %d is null", i)
		}
	}
	return &proj, nil
}

// Encode writes the document to w as indented JSON.
func (p *File) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// Save saves the document to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
