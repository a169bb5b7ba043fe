// Package schema renders inferred types as a JSON Schema document
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/models"
)

// Draft is the JSON Schema dialect of generated documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a JSON Schema document or subschema
type Schema struct {
	// Meta
	Schema string `json:"$schema,omitempty"`
	Ref    string `json:"$ref,omitempty"`
	Title  string `json:"title,omitempty"`

	Type string `json:"type,omitempty"`

	// Object properties
	Properties           Properties `json:"properties,omitempty"`
	Required             []string   `json:"required,omitempty"`
	AdditionalProperties *bool      `json:"additionalProperties,omitempty"`

	// Array items
	Items *Schema `json:"items,omitempty"`

	AnyOf []*Schema `json:"anyOf,omitempty"`

	Defs Properties `json:"$defs,omitempty"`
}

// Property is one named subschema.
type Property struct {
	Name   string
	Schema *Schema
}

// Properties is a name to schema mapping that marshals as a JSON object,
// keeping insertion order so records list fields as declared.
type Properties []Property

// MarshalJSON writes the entries as object members in order
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(prop.Schema)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Generate converts a type table into a schema document. Every table entry
// becomes a $defs entry and the document refers to the root entry.
func Generate(result models.AnalysisResult) (*Schema, error) {
	if result.Table == nil || !result.Table.Has(result.RootName) {
		return nil, errors.NewInternalInvariantError(
			fmt.Sprintf("root type '%s' is not in the type table", result.RootName),
			errors.ErrMissingReference,
		)
	}

	doc := &Schema{
		Schema: Draft,
		Title:  result.RootName,
		Ref:    DefRef(result.RootName),
		Defs:   make(Properties, 0, result.Table.Len()),
	}
	for _, name := range result.Table.Names() {
		desc, _ := result.Table.Get(name)
		for _, ref := range models.References(desc) {
			if !result.Table.Has(ref) {
				return nil, errors.NewInternalInvariantError(
					fmt.Sprintf("type '%s' refers to undefined type '%s'", name, ref),
					errors.ErrMissingReference,
				)
			}
		}
		doc.Defs = append(doc.Defs, Property{Name: name, Schema: FromType(desc)})
	}
	return doc, nil
}

// GenerateInline converts one self-contained type into a schema document.
// desc must not contain references.
func GenerateInline(name string, desc models.TypeDesc) (*Schema, error) {
	if refs := models.References(desc); len(refs) > 0 {
		return nil, errors.NewRenderError(
			fmt.Sprintf("inline type '%s' still refers to '%s'", name, refs[0]),
			nil,
		)
	}
	doc := FromType(desc)
	doc.Schema = Draft
	doc.Title = name
	return doc, nil
}

// FromType converts a single descriptor.
func FromType(desc models.TypeDesc) *Schema {
	switch v := desc.(type) {
	case *models.Primitive:
		return primitive(v.Name)
	case *models.Reference:
		return &Schema{Ref: DefRef(v.Name)}
	case *models.Record:
		s := &Schema{
			Type:       "object",
			Properties: make(Properties, 0, len(v.Fields)),
		}
		for _, f := range v.Fields {
			s.Properties = append(s.Properties, Property{Name: f.Name, Schema: FromType(f.Type)})
			if !f.Optional {
				s.Required = append(s.Required, f.Name)
			}
		}
		if v.Closed {
			closed := false
			s.AdditionalProperties = &closed
		}
		return s
	case *models.Array:
		return &Schema{Type: "array", Items: FromType(v.Elem)}
	case *models.Union:
		s := &Schema{}
		for _, m := range v.Members {
			s.AnyOf = append(s.AnyOf, FromType(m))
		}
		return s
	case *models.Optional:
		s := &Schema{}
		if u, ok := v.Inner.(*models.Union); ok {
			for _, m := range u.Members {
				s.AnyOf = append(s.AnyOf, FromType(m))
			}
		} else {
			s.AnyOf = append(s.AnyOf, FromType(v.Inner))
		}
		s.AnyOf = append(s.AnyOf, &Schema{Type: "null"})
		return s
	default:
		return &Schema{}
	}
}

func primitive(name string) *Schema {
	switch name {
	case models.TypeString:
		return &Schema{Type: "string"}
	case models.TypeBoolean:
		return &Schema{Type: "boolean"}
	case models.TypeInt:
		return &Schema{Type: "integer"}
	case models.TypeDecimal:
		return &Schema{Type: "number"}
	default:
		// json accepts any value
		return &Schema{}
	}
}

// DefRef returns the JSON pointer of a $defs entry.
func DefRef(name string) string {
	escaped := strings.NewReplacer("~", "~0", "/", "~1").Replace(name)
	return "#/$defs/" + escaped
}
