package models

import "time"

const (
	ReactionLike    = "LIKE"
	ReactionDislike = "DISLIKE"
)

// Reaction records a single like or dislike of a recipe by a user.
type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_reaction_recipe_user" json:"recipe_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reaction_recipe_user" json:"user_id"`
	Kind      string    `gorm:"type:varchar(16);not null" json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidReaction reports whether kind names a supported reaction.
func ValidReaction(kind string) bool {
	return kind == ReactionLike || kind == ReactionDislike
}
