package analyzer

import (
	"fmt"

	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/models"
	"github.com/mcncl/jsontyper/internal/naming"
)

// DefaultRootName is the name of the root type if none is given.
const DefaultRootName = "NewRecord"

// Options control how JSON values become types.
type Options struct {
	// Closed produces closed records that disallow unknown fields.
	Closed bool
	// NullAsOptional turns a null value into an optional field instead of a
	// json-typed one.
	NullAsOptional bool
}

// Analyzer infers a table of named types from JSON samples. An Analyzer
// owns its table for one run and must not be reused.
type Analyzer struct {
	opts  Options
	names *naming.Registry
	table *models.TypeTable
	// building holds the types whose construction has not finished yet
	building map[string]struct{}
	// emptyArrays holds array types whose element type was never observed
	emptyArrays map[string]struct{}
}

// NewAnalyzer creates an Analyzer that allocates names from names.
func NewAnalyzer(opts Options, names *naming.Registry) *Analyzer {
	return &Analyzer{
		opts:        opts,
		names:       names,
		table:       models.NewTypeTable(),
		building:    make(map[string]struct{}),
		emptyArrays: make(map[string]struct{}),
	}
}

// Analyze builds the type table for ir. rootName must already be a final
// name; when empty, DefaultRootName is allocated.
func (a *Analyzer) Analyze(ir models.IntermediateRepresentation, rootName string) (models.AnalysisResult, error) {
	switch root := ir.Root.(type) {
	case *models.JSONObject:
		if rootName == "" {
			rootName = a.names.AllocateRoot(DefaultRootName, naming.ShapeRecord)
		}
		if err := a.buildObject(root, rootName, ""); err != nil {
			return models.AnalysisResult{}, fmt.Errorf("failed to analyze root object: %w", err)
		}
	case models.JSONArray:
		if rootName == "" {
			rootName = a.names.AllocateRoot(DefaultRootName, naming.ShapeArray)
		}
		if err := a.buildArray(root, rootName, ""); err != nil {
			return models.AnalysisResult{}, fmt.Errorf("failed to analyze root array: %w", err)
		}
	default:
		return models.AnalysisResult{}, errors.NewUnsupportedRootError(
			fmt.Sprintf("root value is %s, expected an object or an array", describe(ir.Root)),
		)
	}

	a.table.SortByDependencies()
	return models.AnalysisResult{RootName: rootName, Table: a.table}, nil
}

// buildObject creates the record name from obj, or merges obj into it when
// the record already exists. New types are inserted before moveBefore.
func (a *Analyzer) buildObject(obj *models.JSONObject, name, moveBefore string) error {
	a.building[name] = struct{}{}
	defer delete(a.building, name)

	// children discovered while merging must be declared ahead of the record
	childAnchor := moveBefore
	if a.table.Has(name) {
		childAnchor = name
	}

	fields := make([]models.Field, 0, obj.Len())
	for _, key := range obj.Keys() {
		value, _ := obj.Get(key)
		field, err := a.buildField(key, value, childAnchor)
		if err != nil {
			return err
		}
		fields = append(fields, field)
	}

	existing, merging := a.table.Get(name)
	if merging {
		prev, ok := existing.(*models.Record)
		if !ok {
			return errors.NewInternalInvariantError(
				fmt.Sprintf("type '%s' is a %s, cannot merge an object into it", name, existing.Kind()),
				nil,
			)
		}
		fields = MergeFields(prev.Fields, fields)
	}
	a.register(name, &models.Record{Fields: fields, Closed: a.opts.Closed}, moveBefore)
	return nil
}

func (a *Analyzer) buildField(key string, value models.JSONValue, anchor string) (models.Field, error) {
	switch v := value.(type) {
	case *models.JSONObject:
		name := a.names.AllocateAvoiding(key, false, naming.ShapeRecord, a.wouldCycle)
		if err := a.buildObject(v, name, anchor); err != nil {
			return models.Field{}, err
		}
		return models.Field{Name: key, Type: &models.Reference{Name: name}}, nil
	case models.JSONArray:
		name := a.names.AllocateAvoiding(key, false, naming.ShapeArray, a.wouldCycle)
		if err := a.buildArray(v, name, anchor); err != nil {
			return models.Field{}, err
		}
		return models.Field{Name: key, Type: &models.Reference{Name: name}}, nil
	case nil:
		if a.opts.NullAsOptional {
			return models.Field{Name: key, Type: models.NewPrimitive(models.TypeJSON), Optional: true, NullOnly: true}, nil
		}
		return models.Field{Name: key, Type: models.NewPrimitive(models.TypeJSON)}, nil
	default:
		return models.Field{Name: key, Type: Classify(v)}, nil
	}
}

// register stores desc under name. Existing entries keep their position.
func (a *Analyzer) register(name string, desc models.TypeDesc, moveBefore string) {
	if a.table.Has(name) || moveBefore == "" || moveBefore == name {
		a.table.Put(name, desc)
		return
	}
	a.table.InsertBefore(moveBefore, name, desc)
}

// wouldCycle reports whether referring to name from the type currently being
// built would make the table cyclic.
func (a *Analyzer) wouldCycle(name string) bool {
	seen := make(map[string]struct{})
	var reaches func(string) bool
	reaches = func(n string) bool {
		if _, ok := a.building[n]; ok {
			return true
		}
		if _, ok := seen[n]; ok {
			return false
		}
		seen[n] = struct{}{}
		desc, ok := a.table.Get(n)
		if !ok {
			return false
		}
		for _, ref := range models.References(desc) {
			if reaches(ref) {
				return true
			}
		}
		return false
	}
	return reaches(name)
}

func describe(value models.JSONValue) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	default:
		return "a number"
	}
}
