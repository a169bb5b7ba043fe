package analyzer

import (
	"fmt"

	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/models"
	"github.com/mcncl/jsontyper/internal/naming"
)

// buildArray registers the array type name for arr. When name is already
// registered, the element types observed before are kept.
func (a *Analyzer) buildArray(arr models.JSONArray, name, moveBefore string) error {
	a.building[name] = struct{}{}
	defer delete(a.building, name)

	childAnchor := moveBefore
	if a.table.Has(name) {
		childAnchor = name
	}

	elem, err := a.unifyArray(arr, name, childAnchor)
	if err != nil {
		return err
	}

	if existing, merging := a.table.Get(name); merging {
		prev, ok := existing.(*models.Array)
		if !ok {
			return errors.NewInternalInvariantError(
				fmt.Sprintf("type '%s' is a %s, cannot merge an array into it", name, existing.Kind()),
				nil,
			)
		}
		_, prevEmpty := a.emptyArrays[name]
		switch {
		case len(arr) == 0:
			elem = prev.Elem
		case !prevEmpty:
			elem = models.NewUnion(prev.Elem, elem)
		}
	}

	if len(arr) > 0 {
		delete(a.emptyArrays, name)
	} else if !a.table.Has(name) {
		a.emptyArrays[name] = struct{}{}
	}

	a.register(name, &models.Array{Elem: elem}, moveBefore)
	return nil
}

// unifyArray returns the element type of arr. Element types are deduplicated
// by signature; several distinct ones form a union and no elements give json.
// Objects at any depth of arr merge into the single record arrayName+"Item".
func (a *Analyzer) unifyArray(arr models.JSONArray, arrayName, anchor string) (models.TypeDesc, error) {
	members := make([]models.TypeDesc, 0, len(arr))
	for _, element := range arr {
		switch v := element.(type) {
		case *models.JSONObject:
			itemName := a.names.AllocateAvoiding(arrayName, true, naming.ShapeRecord, a.wouldCycle)
			if err := a.buildObject(v, itemName, anchor); err != nil {
				return nil, err
			}
			members = append(members, &models.Reference{Name: itemName})
		case models.JSONArray:
			nested, err := a.unifyArray(v, arrayName, anchor)
			if err != nil {
				return nil, err
			}
			members = append(members, &models.Array{Elem: nested})
		default:
			members = append(members, Classify(v))
		}
	}
	return models.NewUnion(members...), nil
}
