package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recipe is a user-authored dish with an ordered list of ingredients.
type Recipe struct {
	gorm.Model
	Title         string                      `gorm:"not null;index" json:"title"`
	Description   string                      `gorm:"type:text" json:"description"`
	Instructions  string                      `gorm:"type:text" json:"instructions"`
	Servings      int                         `json:"servings"`
	PrepMinutes   int                         `json:"prep_minutes"`
	CookMinutes   int                         `json:"cook_minutes"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	ImageURL      string                      `json:"image_url"`
	ImagePublicID string                      `json:"-"`
	OwnerID       uint                        `gorm:"not null;index" json:"owner_id"`
	Owner         *User                       `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Ingredients   []Ingredient                `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`
}
