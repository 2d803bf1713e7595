package models

import "gorm.io/gorm"

// Ingredient is a single quantity line that belongs to exactly one recipe.
type Ingredient struct {
	gorm.Model
	RecipeID uint    `gorm:"not null;index" json:"recipe_id"`
	Position int     `gorm:"not null;default:0" json:"position"`
	Name     string  `gorm:"not null" json:"name"`
	Amount   float64 `gorm:"not null" json:"amount"`
	Unit     string  `gorm:"not null" json:"unit"`
}
