package shopping

import (
	"strings"
	"time"

	"mykitchen/models"
)

const provenanceSeparator = ", "

// Assemble builds an unsaved shopping list for owner from already resolved
// recipes. Every item starts unchecked.
func Assemble(ownerID uint, name string, recipes []models.Recipe, now time.Time) models.ShoppingList {
	return models.ShoppingList{
		Name:                    strings.TrimSpace(name),
		OwnerID:                 ownerID,
		GeneratedFromRecipeText: Provenance(recipes),
		Items:                   Items(recipes),
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

// Items converts the aggregation of recipes into fresh list items.
func Items(recipes []models.Recipe) []models.ListItem {
	merged := Aggregate(recipes)
	items := make([]models.ListItem, 0, len(merged))
	for _, m := range merged {
		checked := false
		items = append(items, models.ListItem{
			Name:    m.Name,
			Amount:  m.TotalAmount,
			Unit:    m.Unit,
			Checked: &checked,
		})
	}
	return items
}

// Provenance joins recipe titles in the order given.
func Provenance(recipes []models.Recipe) string {
	titles := make([]string, 0, len(recipes))
	for _, recipe := range recipes {
		titles = append(titles, recipe.Title)
	}
	return strings.Join(titles, provenanceSeparator)
}
