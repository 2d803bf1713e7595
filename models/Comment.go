package models

import "gorm.io/gorm"

// Comment is free text left by a user on a recipe.
type Comment struct {
	gorm.Model
	RecipeID uint   `gorm:"not null;index" json:"recipe_id"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Body     string `gorm:"type:text;not null" json:"body"`
}
