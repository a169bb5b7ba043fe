// Package converter runs one JSON to type conversion: parse, infer, name,
// optionally inline, then render.
package converter

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsontyper/internal/analyzer"
	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/generator"
	"github.com/mcncl/jsontyper/internal/inliner"
	"github.com/mcncl/jsontyper/internal/models"
	"github.com/mcncl/jsontyper/internal/naming"
	"github.com/mcncl/jsontyper/internal/parser"
)

// InputFormat is the encoding of the sample document.
type InputFormat string

const (
	InputJSON InputFormat = "json"
	InputYAML InputFormat = "yaml"
)

// Request describes one conversion.
type Request struct {
	// JSON is the sample document.
	JSON        string
	InputFormat InputFormat

	// RootName names the root type. Empty means analyzer.DefaultRootName.
	RootName string
	// TypeNamePrefix is prepended to every synthesized type name except the root.
	TypeNamePrefix string
	NameStyle      naming.Style

	IsClosed       bool
	Inline         bool
	NullAsOptional bool

	// ExistingNames are identifiers already used by the caller.
	ExistingNames []string
	// ExistingTypes maps existing names to their declared type text. A name
	// listed here is reused when the inferred type is identical.
	ExistingTypes map[string]string
}

// Result is the finalized type table of a conversion.
type Result struct {
	RootName string
	Table    *models.TypeTable
	// Inline is the self-contained root type, set for inline requests.
	Inline models.TypeDesc
}

// Analysis returns the table in the form the renderers take.
func (r *Result) Analysis() models.AnalysisResult {
	return models.AnalysisResult{RootName: r.RootName, Table: r.Table}
}

// Convert infers the types described by req.
func Convert(req Request) (*Result, error) {
	ir, err := parse(req)
	if err != nil {
		return nil, err
	}

	var shape naming.Shape
	switch ir.Root.(type) {
	case *models.JSONObject:
		shape = naming.ShapeRecord
	case models.JSONArray:
		shape = naming.ShapeArray
	default:
		return nil, errors.NewUnsupportedRootError("the JSON root must be an object or an array")
	}

	style := req.NameStyle
	if style == "" {
		style = naming.StyleCapitalize
	}
	names := naming.NewRegistry(style, req.ExistingNames, req.ExistingTypes).WithPrefix(req.TypeNamePrefix)

	var rootName, pinned string
	if strings.TrimSpace(req.RootName) != "" {
		rootName = names.Normalize(strings.TrimSpace(req.RootName))
		if !names.Claim(rootName, shape) {
			return nil, errors.NewNameConflictError(rootName)
		}
		pinned = rootName
	} else {
		rootName = names.AllocateRoot(analyzer.DefaultRootName, shape)
	}

	opts := analyzer.Options{Closed: req.IsClosed, NullAsOptional: req.NullAsOptional}
	analysis, err := analyzer.NewAnalyzer(opts, names).Analyze(ir, rootName)
	if err != nil {
		return nil, err
	}

	if err := reconcile(names, &analysis, pinned); err != nil {
		return nil, err
	}

	result := &Result{RootName: analysis.RootName, Table: analysis.Table}
	if req.Inline {
		inline, err := inliner.InlineEntry(result.RootName, result.Table)
		if err != nil {
			return nil, err
		}
		result.Inline = inline
	}
	return result, nil
}

func parse(req Request) (models.IntermediateRepresentation, error) {
	switch req.InputFormat {
	case "", InputJSON:
		return parser.ParseString(req.JSON)
	case InputYAML:
		return parser.ParseYAML(req.JSON)
	default:
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("unknown input format '%s'", req.InputFormat), nil,
		)
	}
}

// reconcile keeps a reused existing name only if the inferred declaration is
// identical to the existing one. Any other reused name is replaced by a fresh
// one; renames change references, so the check repeats until nothing
// changes. A caller-chosen root that does not match is a conflict.
func reconcile(names *naming.Registry, analysis *models.AnalysisResult, pinned string) error {
	for {
		mismatch := ""
		for _, name := range analysis.Table.Names() {
			text, tentative := names.Tentative(name)
			if !tentative {
				continue
			}
			desc, _ := analysis.Table.Get(name)
			if !sameDeclaration(name, text, desc) {
				mismatch = name
				break
			}
		}
		if mismatch == "" {
			return nil
		}
		if mismatch == pinned {
			return errors.NewNameConflictError(mismatch)
		}

		renamed := names.Reject(mismatch)
		if err := analysis.Table.Rename(mismatch, renamed); err != nil {
			return errors.NewInternalInvariantError("failed to rename reused type", err)
		}
		if analysis.RootName == mismatch {
			analysis.RootName = renamed
		}
	}
}

// sameDeclaration compares existing declaration text, either a bare type
// expression or a full "type Name ...;" declaration, with desc. Whitespace
// is not significant.
func sameDeclaration(name, text string, desc models.TypeDesc) bool {
	fields := strings.Fields(text)
	if len(fields) >= 2 && fields[0] == "type" && fields[1] == name {
		fields = fields[2:]
	}
	existing := strings.TrimSuffix(strings.Join(fields, ""), ";")
	inferred := strings.Join(strings.Fields(generator.TypeExpression(desc)), "")
	return existing == inferred
}
