// Package inliner flattens a table of named types into one type expression.
package inliner

import (
	"fmt"

	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/models"
)

// Inline replaces every reference reachable from root with the inlined
// descriptor it names. Nested optionals collapse and unions are
// re-normalized in member order.
func Inline(root models.TypeDesc, table *models.TypeTable) (models.TypeDesc, error) {
	return inline(root, table, nil)
}

// InlineEntry inlines the table entry name.
func InlineEntry(name string, table *models.TypeTable) (models.TypeDesc, error) {
	return inline(&models.Reference{Name: name}, table, nil)
}

// path holds the references being expanded; a repeat means the table has a
// cycle, which inference never produces.
func inline(t models.TypeDesc, table *models.TypeTable, path []string) (models.TypeDesc, error) {
	switch v := t.(type) {
	case *models.Reference:
		for _, p := range path {
			if p == v.Name {
				return nil, errors.NewInternalInvariantError(
					fmt.Sprintf("type '%s' refers to itself", v.Name), nil,
				)
			}
		}
		target, ok := table.Get(v.Name)
		if !ok {
			return nil, errors.NewInternalInvariantError(
				fmt.Sprintf("type '%s' is referenced but not defined", v.Name),
				errors.ErrMissingReference,
			)
		}
		return inline(target, table, append(path, v.Name))

	case *models.Record:
		fields := make([]models.Field, len(v.Fields))
		for i, f := range v.Fields {
			ft, err := inline(f.Type, table, path)
			if err != nil {
				return nil, err
			}
			f.Type = ft
			fields[i] = f
		}
		return &models.Record{Fields: fields, Closed: v.Closed}, nil

	case *models.Array:
		elem, err := inline(v.Elem, table, path)
		if err != nil {
			return nil, err
		}
		return &models.Array{Elem: elem}, nil

	case *models.Optional:
		inner, err := inline(models.NonOptional(v.Inner), table, path)
		if err != nil {
			return nil, err
		}
		if _, ok := inner.(*models.Optional); ok {
			return inner, nil
		}
		return &models.Optional{Inner: inner}, nil

	case *models.Union:
		members := make([]models.TypeDesc, len(v.Members))
		for i, m := range v.Members {
			inlined, err := inline(m, table, path)
			if err != nil {
				return nil, err
			}
			members[i] = inlined
		}
		return models.NewUnion(members...), nil

	default:
		return t, nil
	}
}
