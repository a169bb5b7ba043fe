// Package naming assigns collision-free type names for one inference run.
package naming

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/jsontyper/internal/models"
)

// ArrayItemSuffix distinguishes the element type of an array from the array.
const ArrayItemSuffix = "Item"

// Style selects how a JSON key becomes a type name.
type Style string

const (
	// StyleCapitalize upper-cases the first letter and keeps the rest.
	StyleCapitalize Style = "capitalize"
	// StylePascal converts snake, kebab and space separated keys to PascalCase.
	StylePascal Style = "pascal"
)

// Shape separates logical types that may be proposed under the same name.
type Shape string

const (
	ShapeRecord Shape = "record"
	ShapeArray  Shape = "array"
)

// Registry tracks the names of one run: the caller's existing names and the
// names allocated so far. The same logical key always yields the same name.
type Registry struct {
	style  Style
	prefix string

	existing map[string]struct{}
	// reusable existing names whose declaration text is known; they may be
	// kept when the inferred declaration turns out identical
	reusable map[string]string

	assigned map[string]string // logical key -> final name
	owners   map[string]string // final name -> logical key
	bases    map[string]string // logical key -> normalized candidate
}

// NewRegistry creates a registry for the given existing names.
// existingTypes maps existing names to their known type text.
func NewRegistry(style Style, existingNames []string, existingTypes map[string]string) *Registry {
	r := &Registry{
		style:    style,
		existing: make(map[string]struct{}, len(existingNames)+len(existingTypes)),
		reusable: make(map[string]string, len(existingTypes)),
		assigned: make(map[string]string),
		owners:   make(map[string]string),
		bases:    make(map[string]string),
	}
	for _, n := range existingNames {
		r.existing[n] = struct{}{}
	}
	for n, text := range existingTypes {
		r.existing[n] = struct{}{}
		r.reusable[n] = text
	}
	return r
}

// WithPrefix sets a prefix for every name produced by Allocate.
func (r *Registry) WithPrefix(prefix string) *Registry {
	r.prefix = prefix
	return r
}

// Normalize turns a proposed name into an identifier. The prefix is not
// applied.
func (r *Registry) Normalize(base string) string {
	name := r.styled(base)
	if name == "" {
		return "Field"
	}
	return models.EscapeIdentifier(name)
}

func (r *Registry) styled(s string) string {
	if r.style == StylePascal {
		return strcase.ToCamel(s)
	}
	return Capitalize(s)
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(first)) + s[size:]
}

// Allocate returns the final name for base. Repeated calls for the same base
// and shape return the same name, which is what lets the builder merge in
// place.
//
// With isArrayItem set, base must be the final name of the array; the item
// name is base with ArrayItemSuffix appended.
func (r *Registry) Allocate(base string, isArrayItem bool, shape Shape) string {
	return r.AllocateAvoiding(base, isArrayItem, shape, nil)
}

// AllocateAvoiding is Allocate for names that reject refuses, for example a
// name that belongs to an enclosing type still being built. A refused name
// stays with its key; base is re-keyed until an acceptable name comes up.
func (r *Registry) AllocateAvoiding(base string, isArrayItem bool, shape Shape, reject func(string) bool) string {
	candidate := r.candidate(base, isArrayItem)
	key := string(shape) + ":" + candidate
	for {
		name := r.allocateKey(key, candidate)
		if reject == nil || !reject(name) {
			return name
		}
		key += "/"
	}
}

func (r *Registry) candidate(base string, isArrayItem bool) string {
	if isArrayItem {
		return base + ArrayItemSuffix
	}
	if r.prefix == "" {
		return r.Normalize(base)
	}
	name := r.styled(r.prefix) + r.styled(base)
	return models.EscapeIdentifier(name)
}

// AllocateRoot returns a name for a root type. Roots are not prefixed.
func (r *Registry) AllocateRoot(base string, shape Shape) string {
	candidate := r.Normalize(base)
	return r.allocateKey(string(shape)+":"+candidate, candidate)
}

// Claim reserves an exact, caller-chosen name. It reports false when the name
// is taken by the existing scope and cannot be reused.
func (r *Registry) Claim(name string, shape Shape) bool {
	key := string(shape) + ":" + name
	if final, ok := r.assigned[key]; ok {
		return final == name
	}
	if !r.available(name, key) {
		return false
	}
	r.bind(key, name, name)
	return true
}

// Tentative reports whether name was kept only because the existing scope
// declares a type under it whose text is known.
func (r *Registry) Tentative(name string) (string, bool) {
	if _, allocated := r.owners[name]; !allocated {
		return "", false
	}
	text, ok := r.reusable[name]
	return text, ok
}

// Reject withdraws a tentatively kept name and returns the replacement for
// the key that owned it.
func (r *Registry) Reject(name string) string {
	delete(r.reusable, name)
	key, ok := r.owners[name]
	if !ok {
		return name
	}
	delete(r.owners, name)
	delete(r.assigned, key)
	return r.allocateKey(key, r.bases[key])
}

func (r *Registry) allocateKey(key, candidate string) string {
	if final, ok := r.assigned[key]; ok {
		return final
	}
	name := candidate
	for n := 2; !r.available(name, key); n++ {
		name = candidate + strconv.Itoa(n)
	}
	r.bind(key, candidate, name)
	return name
}

func (r *Registry) bind(key, candidate, name string) {
	r.assigned[key] = name
	r.owners[name] = key
	r.bases[key] = candidate
}

// available reports whether name may be bound to key.
func (r *Registry) available(name, key string) bool {
	if owner, ok := r.owners[name]; ok && owner != key {
		return false
	}
	if _, taken := r.existing[name]; taken {
		_, ok := r.reusable[name]
		return ok
	}
	return true
}
