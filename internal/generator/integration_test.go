package generator

import (
	"testing"

	"github.com/mcncl/jsontyper/internal/analyzer"
	"github.com/mcncl/jsontyper/internal/naming"
	"github.com/mcncl/jsontyper/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_ParserAnalyzerGenerator(t *testing.T) {
	// Test the full pipeline: Parser -> Analyzer -> Generator
	jsonInput := `{
		"user_id": 123,
		"username": "johndoe",
		"is_active": true,
		"profile": {
			"full_name": "John Doe",
			"email": "john.doe@example.com"
		}
	}`

	ir, err := parser.ParseString(jsonInput)
	require.NoError(t, err)

	registry := naming.NewRegistry(naming.StyleCapitalize, nil, nil)
	require.True(t, registry.Claim("User", naming.ShapeRecord))
	result, err := analyzer.NewAnalyzer(analyzer.Options{Closed: true}, registry).Analyze(ir, "User")
	require.NoError(t, err)

	g := NewGenerator()
	decls, err := g.GenerateDeclarations(result)
	require.NoError(t, err)

	expected := `type Profile record {| string full_name; string email; |};

type User record {| int user_id; string username; boolean is_active; Profile profile; |};
`
	assert.Equal(t, expected, g.Generate(decls))
}

func TestIntegration_ArrayOfObjects(t *testing.T) {
	jsonInput := `[
		{"id": 1, "name": "Item 1", "price": 10.5},
		{"id": 2, "name": "Item 2", "tags": ["sale"]},
		{"id": 3, "name": null}
	]`

	ir, err := parser.ParseString(jsonInput)
	require.NoError(t, err)

	result, err := analyzer.NewAnalyzer(analyzer.Options{Closed: true}, naming.NewRegistry(naming.StyleCapitalize, nil, nil)).Analyze(ir, "")
	require.NoError(t, err)

	g := NewGenerator()
	decls, err := g.GenerateDeclarations(result)
	require.NoError(t, err)

	expected := `type Tags string[];

type NewRecordItem record {| int id; string|json name; decimal price?; Tags tags?; |};

type NewRecord NewRecordItem[];
`
	assert.Equal(t, expected, g.Generate(decls))
}

func TestIntegration_OpenRecordsWithPascalNames(t *testing.T) {
	ir, err := parser.ParseString(`{"shipping_address": {"line_1": "x"}}`)
	require.NoError(t, err)

	registry := naming.NewRegistry(naming.StylePascal, nil, nil)
	result, err := analyzer.NewAnalyzer(analyzer.Options{}, registry).Analyze(ir, "")
	require.NoError(t, err)

	g := NewGenerator()
	decls, err := g.GenerateDeclarations(result)
	require.NoError(t, err)

	expected := `type ShippingAddress record { string line_1; json...; };

type NewRecord record { ShippingAddress shipping_address; json...; };
`
	assert.Equal(t, expected, g.Generate(decls))
}
