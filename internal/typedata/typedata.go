// Package typedata renders inferred types as a tree of generic nodes for UI
// consumers.
package typedata

import (
	"encoding/json"
	"fmt"

	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/generator"
	"github.com/mcncl/jsontyper/internal/models"
)

// NodeKind is the shape of a composite node.
type NodeKind string

const (
	NodeRecord NodeKind = "RECORD"
	NodeArray  NodeKind = "ARRAY"
	NodeUnion  NodeKind = "UNION"
)

// MemberKind tells a record field apart from a type parameter.
type MemberKind string

const (
	MemberField MemberKind = "FIELD"
	MemberType  MemberKind = "TYPE"
)

// Node is one composite type.
type Node struct {
	Name                  string     `json:"name,omitempty"`
	Editable              bool       `json:"editable"`
	Metadata              Metadata   `json:"metadata"`
	Codedata              Codedata   `json:"codedata"`
	Properties            Properties `json:"properties"`
	Members               []Member   `json:"members"`
	Includes              []string   `json:"includes"`
	AllowAdditionalFields bool       `json:"allowAdditionalFields"`
}

type Metadata struct {
	Label       string `json:"label,omitempty"`
	Description string `json:"description"`
}

type Codedata struct {
	Node NodeKind `json:"node"`
}

type Properties struct {
	IsPublic  bool   `json:"isPublic"`
	IsArray   bool   `json:"isArray"`
	ArraySize string `json:"arraySize"`
}

// Member is a record field or a type parameter of an array or union.
type Member struct {
	Kind     MemberKind `json:"kind"`
	Name     string     `json:"name,omitempty"`
	Type     TypeRef    `json:"type"`
	Optional bool       `json:"optional"`
	Refs     []string   `json:"refs"`
}

// TypeRef is either a type written as text or a nested node. It encodes as
// a JSON string or object respectively.
type TypeRef struct {
	Name string
	Node *Node
}

func (r TypeRef) MarshalJSON() ([]byte, error) {
	if r.Node != nil {
		return json.Marshal(r.Node)
	}
	return json.Marshal(r.Name)
}

// RenderTable renders every table entry in table order.
func RenderTable(result models.AnalysisResult) ([]*Node, error) {
	if result.Table == nil {
		return nil, errors.NewInternalInvariantError("analysis result has no type table", nil)
	}
	nodes := make([]*Node, 0, result.Table.Len())
	for _, name := range result.Table.Names() {
		desc, _ := result.Table.Get(name)
		node, err := Render(name, desc)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// Render renders a named record, array or union.
func Render(name string, desc models.TypeDesc) (*Node, error) {
	ref := toTypeRef(name, desc)
	if ref.Node == nil {
		return nil, errors.NewRenderError(
			fmt.Sprintf("type '%s' is a %s, only records, arrays and unions become nodes", name, desc.Kind()),
			nil,
		)
	}
	return ref.Node, nil
}

func toTypeRef(name string, desc models.TypeDesc) TypeRef {
	switch v := desc.(type) {
	case *models.Record:
		node := newNode(name, NodeRecord)
		node.AllowAdditionalFields = !v.Closed
		for _, f := range v.Fields {
			node.Members = append(node.Members, Member{
				Kind:     MemberField,
				Name:     f.Name,
				Type:     toTypeRef("", f.Type),
				Optional: f.Optional,
				Refs:     []string{},
			})
		}
		return TypeRef{Node: node}
	case *models.Array:
		node := newNode(name, NodeArray)
		node.Properties.IsArray = true
		node.Members = append(node.Members, Member{Kind: MemberType, Type: toTypeRef("", v.Elem), Refs: []string{}})
		return TypeRef{Node: node}
	case *models.Union:
		node := newNode(name, NodeUnion)
		for _, m := range v.Members {
			node.Members = append(node.Members, Member{Kind: MemberType, Type: toTypeRef("", m), Refs: []string{}})
		}
		return TypeRef{Node: node}
	default:
		// primitives, references and optionals are plain type text
		return TypeRef{Name: generator.TypeExpression(desc)}
	}
}

func newNode(name string, kind NodeKind) *Node {
	return &Node{
		Name:     name,
		Editable: true,
		Metadata: Metadata{Label: name},
		Codedata: Codedata{Node: kind},
		Properties: Properties{
			IsPublic: true,
		},
		Members:  []Member{},
		Includes: []string{},
	}
}
