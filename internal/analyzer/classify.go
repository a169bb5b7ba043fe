package analyzer

import (
	"encoding/json"
	"strings"

	"github.com/mcncl/jsontyper/internal/models"
)

// Classify maps a JSON scalar to its primitive type. Numbers with a fraction
// or an exponent are decimals; null and non-scalars are json.
func Classify(value models.JSONValue) *models.Primitive {
	switch v := value.(type) {
	case string:
		return models.NewPrimitive(models.TypeString)
	case bool:
		return models.NewPrimitive(models.TypeBoolean)
	case json.Number:
		if strings.ContainsAny(string(v), ".eE") {
			return models.NewPrimitive(models.TypeDecimal)
		}
		return models.NewPrimitive(models.TypeInt)
	default:
		return models.NewPrimitive(models.TypeJSON)
	}
}
