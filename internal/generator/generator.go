package generator

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/models"
)

// Declaration is one named type rendered as source text.
type Declaration struct {
	Name string
	Type models.TypeDesc
	Text string
}

// Generator renders type declarations from analysis results
type Generator struct{}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateDeclarations renders one declaration per table entry, in table
// order. A reference to a name missing from the table is an internal error.
func (g *Generator) GenerateDeclarations(result models.AnalysisResult) ([]Declaration, error) {
	if result.Table == nil {
		return nil, errors.NewInternalInvariantError("analysis result has no type table", nil)
	}

	names := result.Table.Names()
	decls := make([]Declaration, 0, len(names))
	for _, name := range names {
		desc, _ := result.Table.Get(name)
		for _, ref := range models.References(desc) {
			if !result.Table.Has(ref) {
				return nil, errors.NewInternalInvariantError(
					fmt.Sprintf("type '%s' refers to undefined type '%s'", name, ref),
					errors.ErrMissingReference,
				)
			}
		}
		decls = append(decls, g.GenerateDeclaration(name, desc))
	}
	return decls, nil
}

// GenerateDeclaration renders a single declaration.
func (g *Generator) GenerateDeclaration(name string, desc models.TypeDesc) Declaration {
	return Declaration{
		Name: name,
		Type: desc,
		Text: fmt.Sprintf("type %s %s;", name, TypeExpression(desc)),
	}
}

// Generate joins declarations into one source text.
func (g *Generator) Generate(decls []Declaration) string {
	var buf strings.Builder
	for i, d := range decls {
		if i > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(d.Text)
	}
	if len(decls) > 0 {
		buf.WriteString("\n")
	}
	return buf.String()
}

// TypeExpression renders desc as a type expression, for example
// "record {| int id; string name?; |}".
func TypeExpression(desc models.TypeDesc) string {
	var buf strings.Builder
	writeType(&buf, desc)
	return buf.String()
}

func writeType(buf *strings.Builder, desc models.TypeDesc) {
	switch v := desc.(type) {
	case *models.Primitive:
		buf.WriteString(v.Name)
	case *models.Reference:
		buf.WriteString(v.Name)
	case *models.Record:
		writeRecord(buf, v)
	case *models.Array:
		writeGrouped(buf, v.Elem)
		buf.WriteString("[]")
	case *models.Optional:
		writeGrouped(buf, v.Inner)
		buf.WriteString("?")
	case *models.Union:
		for i, m := range v.Members {
			if i > 0 {
				buf.WriteString("|")
			}
			writeType(buf, m)
		}
	default:
		buf.WriteString(models.TypeJSON)
	}
}

// writeGrouped parenthesizes unions so that a suffix applies to the whole.
func writeGrouped(buf *strings.Builder, desc models.TypeDesc) {
	if desc.Kind() != models.KindUnion {
		writeType(buf, desc)
		return
	}
	buf.WriteString("(")
	writeType(buf, desc)
	buf.WriteString(")")
}

func writeRecord(buf *strings.Builder, r *models.Record) {
	if r.Closed {
		if len(r.Fields) == 0 {
			buf.WriteString("record {||}")
			return
		}
		buf.WriteString("record {| ")
	} else {
		buf.WriteString("record { ")
	}
	for _, f := range r.Fields {
		writeType(buf, f.Type)
		buf.WriteString(" ")
		buf.WriteString(models.EscapeIdentifier(f.Name))
		if f.Optional {
			buf.WriteString("?")
		}
		buf.WriteString("; ")
	}
	if r.Closed {
		buf.WriteString("|}")
	} else {
		buf.WriteString("json...; }")
	}
}
