// Package model holds the GORM table models and their mappers to and from
// the domain entities.
package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

func encodeCategories(categories []string) datatypes.JSON {
	if len(categories) == 0 {
		return datatypes.JSON("[]")
	}

	encoded, err := json.Marshal(categories)
	if err != nil {
		return datatypes.JSON("[]")
	}

	return datatypes.JSON(encoded)
}

func decodeCategories(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}

	var categories []string
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil
	}

	return categories
}
