package shopping

import (
	"strings"

	"mykitchen/models"
)

const keySeparator = "|"

// MergeKey canonicalizes an ingredient so that case variants of the same
// name and unit collapse together. Units are never converted.
func MergeKey(name, unit string) string {
	return strings.ToLower(name) + keySeparator + strings.ToLower(unit)
}

// MergedIngredient is one consolidated shopping line. Name and Unit keep the
// casing of the first ingredient seen for Key.
type MergedIngredient struct {
	Key         string
	Name        string
	Unit        string
	TotalAmount float64
}

// Aggregate folds the ingredients of recipes, in order, into one entry per
// merge key. Amounts are summed as given, including zero and negative values.
// The result is in first-seen order.
func Aggregate(recipes []models.Recipe) []MergedIngredient {
	index := make(map[string]int)
	merged := make([]MergedIngredient, 0)

	for _, recipe := range recipes {
		for _, ingredient := range recipe.Ingredients {
			key := MergeKey(ingredient.Name, ingredient.Unit)
			if i, ok := index[key]; ok {
				merged[i].TotalAmount += ingredient.Amount
				continue
			}
			index[key] = len(merged)
			merged = append(merged, MergedIngredient{
				Key:         key,
				Name:        ingredient.Name,
				Unit:        ingredient.Unit,
				TotalAmount: ingredient.Amount,
			})
		}
	}

	return merged
}

// AggregateByKey is Aggregate keyed by merge key.
func AggregateByKey(recipes []models.Recipe) map[string]MergedIngredient {
	merged := Aggregate(recipes)
	out := make(map[string]MergedIngredient, len(merged))
	for _, m := range merged {
		out[m.Key] = m
	}
	return out
}
