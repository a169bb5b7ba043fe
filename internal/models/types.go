package models

import (
	"strings"
	"unicode"
)

// Primitive type names.
const (
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeInt     = "int"
	TypeDecimal = "decimal"
	TypeJSON    = "json"
)

// Kind identifies the variant of a TypeDesc.
type Kind int

const (
	KindPrimitive Kind = iota
	KindRecord
	KindArray
	KindUnion
	KindOptional
	KindReference
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindRecord:
		return "record"
	case KindArray:
		return "array"
	case KindUnion:
		return "union"
	case KindOptional:
		return "optional"
	case KindReference:
		return "reference"
	default:
		return "unknown"
	}
}

// TypeDesc is an inferred type. Two descriptors describe the same type iff
// their signatures are equal.
type TypeDesc interface {
	Kind() Kind
	// Signature is the canonical compact text form of the type.
	Signature() string
}

// Primitive is one of the JSON primitive categories.
type Primitive struct {
	Name string
}

// Record is a composite type with named fields.
type Record struct {
	Fields []Field
	// Closed records disallow fields other than Fields. Open records carry an
	// implicit json rest field.
	Closed bool
}

// Array is a list of Elem.
type Array struct {
	Elem TypeDesc
}

// Union is "one of" Members. Build it with NewUnion to keep members distinct.
type Union struct {
	Members []TypeDesc
}

// Optional marks a type that may be absent or null.
type Optional struct {
	Inner TypeDesc
}

// Reference points at a named entry of the TypeTable.
type Reference struct {
	Name string
}

// Field is a named member of a Record.
type Field struct {
	Name     string
	Type     TypeDesc
	Optional bool
	// NullOnly is set when the field has only ever been observed as null and
	// Type is a placeholder.
	NullOnly bool
}

func (*Primitive) Kind() Kind { return KindPrimitive }
func (*Record) Kind() Kind    { return KindRecord }
func (*Array) Kind() Kind     { return KindArray }
func (*Union) Kind() Kind     { return KindUnion }
func (*Optional) Kind() Kind  { return KindOptional }
func (*Reference) Kind() Kind { return KindReference }

func (p *Primitive) Signature() string { return p.Name }
func (r *Reference) Signature() string { return r.Name }

func (r *Record) Signature() string {
	var sb strings.Builder
	if r.Closed {
		sb.WriteString("record {|")
	} else {
		sb.WriteString("record {")
	}
	for _, f := range r.Fields {
		sb.WriteString(f.Signature())
	}
	if r.Closed {
		sb.WriteString("|}")
	} else {
		sb.WriteString("json...;}")
	}
	return sb.String()
}

func (a *Array) Signature() string {
	if a.Elem.Kind() == KindUnion {
		return "(" + a.Elem.Signature() + ")[]"
	}
	return a.Elem.Signature() + "[]"
}

func (u *Union) Signature() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.Signature()
	}
	return strings.Join(parts, "|")
}

func (o *Optional) Signature() string {
	if o.Inner.Kind() == KindUnion {
		return "(" + o.Inner.Signature() + ")?"
	}
	return o.Inner.Signature() + "?"
}

// Signature renders the field as "<type> <name>[?];".
func (f Field) Signature() string {
	sig := f.Type.Signature() + " " + EscapeIdentifier(f.Name)
	if f.Optional {
		sig += "?"
	}
	return sig + ";"
}

// NewPrimitive returns a primitive descriptor.
func NewPrimitive(name string) *Primitive {
	return &Primitive{Name: name}
}

// NewUnion builds a union of members. Nested unions are flattened and
// members with an already seen signature are dropped; first occurrence wins.
// A single remaining member is returned as is.
func NewUnion(members ...TypeDesc) TypeDesc {
	seen := make(map[string]struct{}, len(members))
	flat := make([]TypeDesc, 0, len(members))
	var add func(TypeDesc)
	add = func(t TypeDesc) {
		if u, ok := t.(*Union); ok {
			for _, m := range u.Members {
				add(m)
			}
			return
		}
		sig := t.Signature()
		if _, dup := seen[sig]; dup {
			return
		}
		seen[sig] = struct{}{}
		flat = append(flat, t)
	}
	for _, m := range members {
		add(m)
	}
	switch len(flat) {
	case 0:
		return NewPrimitive(TypeJSON)
	case 1:
		return flat[0]
	default:
		return &Union{Members: flat}
	}
}

// NonOptional strips Optional wrappers, including those on union members.
func NonOptional(t TypeDesc) TypeDesc {
	switch v := t.(type) {
	case *Optional:
		return NonOptional(v.Inner)
	case *Union:
		members := make([]TypeDesc, len(v.Members))
		for i, m := range v.Members {
			members[i] = NonOptional(m)
		}
		return NewUnion(members...)
	default:
		return t
	}
}

// RewriteReferences returns a copy of t with every reference name passed
// through rename. Descriptors without references are returned unchanged.
func RewriteReferences(t TypeDesc, rename func(string) string) TypeDesc {
	switch v := t.(type) {
	case *Reference:
		if n := rename(v.Name); n != v.Name {
			return &Reference{Name: n}
		}
		return v
	case *Record:
		fields := make([]Field, len(v.Fields))
		for i, f := range v.Fields {
			f.Type = RewriteReferences(f.Type, rename)
			fields[i] = f
		}
		return &Record{Fields: fields, Closed: v.Closed}
	case *Array:
		return &Array{Elem: RewriteReferences(v.Elem, rename)}
	case *Union:
		members := make([]TypeDesc, len(v.Members))
		for i, m := range v.Members {
			members[i] = RewriteReferences(m, rename)
		}
		return &Union{Members: members}
	case *Optional:
		return &Optional{Inner: RewriteReferences(v.Inner, rename)}
	default:
		return t
	}
}

// References lists the distinct table names t refers to, in first-seen order.
func References(t TypeDesc) []string {
	var out []string
	seen := make(map[string]struct{})
	var walk func(TypeDesc)
	walk = func(t TypeDesc) {
		switch v := t.(type) {
		case *Reference:
			if _, ok := seen[v.Name]; !ok {
				seen[v.Name] = struct{}{}
				out = append(out, v.Name)
			}
		case *Record:
			for _, f := range v.Fields {
				walk(f.Type)
			}
		case *Array:
			walk(v.Elem)
		case *Union:
			for _, m := range v.Members {
				walk(m)
			}
		case *Optional:
			walk(v.Inner)
		}
	}
	walk(t)
	return out
}

var reservedWords = map[string]struct{}{
	"anydata": {}, "boolean": {}, "byte": {}, "check": {}, "class": {}, "decimal": {},
	"error": {}, "float": {}, "function": {}, "future": {}, "handle": {}, "import": {},
	"int": {}, "json": {}, "map": {}, "never": {}, "object": {}, "readonly": {},
	"record": {}, "return": {}, "service": {}, "stream": {}, "string": {}, "table": {},
	"type": {}, "typedesc": {}, "var": {}, "xml": {}, "null": {}, "true": {}, "false": {},
	"if": {}, "else": {}, "while": {}, "foreach": {}, "in": {}, "from": {}, "select": {},
	"where": {}, "public": {}, "private": {}, "final": {}, "const": {}, "enum": {},
}

// EmptyFieldName names a field whose JSON key is "".
const EmptyFieldName = "field"

// EscapeIdentifier makes name usable as an identifier: reserved words get a
// leading single quote and characters other than letters, digits and '_' are
// escaped with a backslash. A leading digit is escaped too. The empty key
// becomes EmptyFieldName.
func EscapeIdentifier(name string) string {
	if name == "" {
		return EmptyFieldName
	}
	if _, reserved := reservedWords[name]; reserved {
		return "'" + name
	}
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
			sb.WriteRune(r)
		case unicode.IsDigit(r) && i > 0:
			sb.WriteRune(r)
		default:
			sb.WriteRune('\\')
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
