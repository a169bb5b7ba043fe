package analyzer

import "github.com/mcncl/jsontyper/internal/models"

// MergeFields unifies two observations of the same record.
//
// Fields present in both are widened: identical fields are kept, fields that
// differ only in optionality become optional, optional types are unwrapped
// and re-wrapped, anything else becomes a union. Fields present in only one
// observation are copied and made optional. Intersecting fields come first in
// the order of oldFields, followed by the old-only and then the new-only fields.
func MergeFields(oldFields, newFields []models.Field) []models.Field {
	newByName := make(map[string]models.Field, len(newFields))
	for _, f := range newFields {
		newByName[f.Name] = f
	}
	oldNames := make(map[string]struct{}, len(oldFields))
	for _, f := range oldFields {
		oldNames[f.Name] = struct{}{}
	}

	merged := make([]models.Field, 0, len(oldFields)+len(newFields))
	var differing []models.Field

	for _, f := range oldFields {
		other, ok := newByName[f.Name]
		if !ok {
			differing = append(differing, f)
			continue
		}
		merged = append(merged, mergeField(f, other))
	}
	for _, f := range newFields {
		if _, ok := oldNames[f.Name]; !ok {
			differing = append(differing, f)
		}
	}

	for _, f := range differing {
		f.Optional = true
		merged = append(merged, f)
	}
	return merged
}

func mergeField(a, b models.Field) models.Field {
	if a.Signature() == b.Signature() {
		return a
	}

	optional := a.Optional || b.Optional

	// a field only ever seen as null takes the type of the concrete observation
	if a.NullOnly != b.NullOnly {
		concrete := a
		if a.NullOnly {
			concrete = b
		}
		concrete.Optional = true
		return concrete
	}

	aSig, bSig := a.Type.Signature(), b.Type.Signature()
	if aSig == bSig {
		return models.Field{Name: a.Name, Type: a.Type, Optional: true, NullOnly: a.NullOnly}
	}

	_, aOpt := a.Type.(*models.Optional)
	_, bOpt := b.Type.(*models.Optional)
	if aOpt || bOpt {
		aInner := models.NonOptional(a.Type)
		bInner := models.NonOptional(b.Type)
		if aInner.Signature() == bInner.Signature() {
			return models.Field{Name: a.Name, Type: &models.Optional{Inner: aInner}, Optional: optional}
		}
		return models.Field{
			Name:     a.Name,
			Type:     &models.Optional{Inner: models.NewUnion(aInner, bInner)},
			Optional: optional,
		}
	}

	return models.Field{Name: a.Name, Type: models.NewUnion(a.Type, b.Type), Optional: optional}
}
