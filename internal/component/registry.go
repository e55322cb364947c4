package component

import "strings"

// Registry resolves type names to footprints: the built-in Footprints plus
// the parts installed from a Library. A nil Registry knows only the
// built-ins. Footprints itself is never modified.
type Registry struct {
	parts map[Type]Footprint
}

// NewRegistry creates a registry holding only the built-in types.
func NewRegistry() *Registry {
	return &Registry{parts: make(map[Type]Footprint)}
}

func normalizeType(s string) Type {
	return Type(strings.ToLower(strings.TrimSpace(s)))
}

// Lookup returns the footprint for t.
func (r *Registry) Lookup(t Type) (Footprint, bool) {
	if fp, ok := Footprints[t]; ok {
		return fp, true
	}
	if r == nil {
		return Footprint{}, false
	}
	fp, ok := r.parts[t]
	return fp, ok
}

// ParseType maps a type name to a Type known to the registry.
func (r *Registry) ParseType(s string) (Type, bool) {
	t := normalizeType(s)
	_, ok := r.Lookup(t)
	return t, ok
}

// Prefix returns the reference designator prefix for t, or "U".
func (r *Registry) Prefix(t Type) string {
	if fp, ok := r.Lookup(t); ok {
		return fp.Prefix
	}
	return "U"
}

// Resolve binds each component to its registered footprint so Pins and
// Footprint see library parts. Unknown types are left alone.
func (r *Registry) Resolve(cs ...*Component) {
	for _, c := range cs {
		if fp, ok := r.Lookup(c.Type); ok {
			fp := fp
			c.footprint = &fp
		}
	}
}

func (r *Registry) register(t Type, fp Footprint) {
	r.parts[t] = fp
}
