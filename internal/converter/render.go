package converter

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/formatter"
	"github.com/mcncl/jsontyper/internal/generator"
	"github.com/mcncl/jsontyper/internal/schema"
	"github.com/mcncl/jsontyper/internal/typedata"
)

// Format selects the renderer.
type Format string

const (
	FormatText       Format = "text"
	FormatTypeData   Format = "typedata"
	FormatJSONSchema Format = "jsonschema"
)

// RenderOptions control rendering.
type RenderOptions struct {
	Format Format
	// MultiLine puts every record field on its own line (text only).
	MultiLine bool
	// Indent is one nesting level of multi-line output. Empty means
	// formatter.DefaultIndent.
	Indent string
}

// Response holds the rendered output. Exactly one field is set, matching
// the requested format.
type Response struct {
	Declarations []generator.Declaration
	Nodes        []*typedata.Node
	Schema       *schema.Schema
}

// Render renders result. Inline results render as a single declaration.
func Render(result *Result, opts RenderOptions) (*Response, error) {
	switch opts.Format {
	case "", FormatText:
		decls, err := renderText(result)
		if err != nil {
			return nil, err
		}
		if opts.MultiLine {
			f := formatter.NewFormatter()
			if opts.Indent != "" {
				f = formatter.NewFormatterWithIndent(opts.Indent)
			}
			for i := range decls {
				text, err := f.Format(decls[i].Text)
				if err != nil {
					return nil, errors.NewRenderError("failed to format declaration", err)
				}
				decls[i].Text = strings.TrimSuffix(text, "\n")
			}
		}
		return &Response{Declarations: decls}, nil

	case FormatTypeData:
		if result.Inline != nil {
			node, err := typedata.Render(result.RootName, result.Inline)
			if err != nil {
				return nil, err
			}
			return &Response{Nodes: []*typedata.Node{node}}, nil
		}
		nodes, err := typedata.RenderTable(result.Analysis())
		if err != nil {
			return nil, err
		}
		return &Response{Nodes: nodes}, nil

	case FormatJSONSchema:
		var doc *schema.Schema
		var err error
		if result.Inline != nil {
			doc, err = schema.GenerateInline(result.RootName, result.Inline)
		} else {
			doc, err = schema.Generate(result.Analysis())
		}
		if err != nil {
			return nil, err
		}
		return &Response{Schema: doc}, nil

	default:
		return nil, errors.NewRenderError(fmt.Sprintf("unknown format '%s'", opts.Format), errors.ErrUnknownFormat)
	}
}

func renderText(result *Result) ([]generator.Declaration, error) {
	g := generator.NewGenerator()
	if result.Inline != nil {
		return []generator.Declaration{g.GenerateDeclaration(result.RootName, result.Inline)}, nil
	}
	return g.GenerateDeclarations(result.Analysis())
}

// Text joins the declarations of a text response.
func (r *Response) Text() string {
	return generator.NewGenerator().Generate(r.Declarations)
}

// ExistingTypes maps every declared name to its type text, in the form
// Request.ExistingTypes accepts.
func (r *Response) ExistingTypes() map[string]string {
	out := make(map[string]string, len(r.Declarations))
	for _, d := range r.Declarations {
		out[d.Name] = d.Text
	}
	return out
}

// Names lists the declared names in order.
func (r *Response) Names() []string {
	out := make([]string, len(r.Declarations))
	for i, d := range r.Declarations {
		out[i] = d.Name
	}
	return out
}
