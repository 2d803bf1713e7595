package models

import "time"

// ShoppingList is a named, owned set of merged ingredient lines generated
// from one or more recipes. Timestamps are stamped by the shopping service,
// not by the ORM.
type ShoppingList struct {
	ID                      uint       `gorm:"primaryKey"`
	Name                    string     `gorm:"not null"`
	OwnerID                 uint       `gorm:"not null;index"`
	GeneratedFromRecipeText string     `gorm:"type:text"`
	Items                   []ListItem `gorm:"foreignKey:ShoppingListID;constraint:OnDelete:CASCADE"`
	CreatedAt               time.Time  `gorm:"autoCreateTime:false"`
	UpdatedAt               time.Time  `gorm:"autoUpdateTime:false"`
}

// ListItem is one line of a shopping list. Checked is nullable; a nil value
// reads as unchecked.
type ListItem struct {
	ID             uint    `gorm:"primaryKey"`
	ShoppingListID uint    `gorm:"not null;index"`
	Name           string  `gorm:"not null"`
	Amount         float64 `gorm:"not null"`
	Unit           string  `gorm:"not null"`
	Checked        *bool
}

// IsChecked treats an absent checked flag as false.
func (i ListItem) IsChecked() bool {
	return i.Checked != nil && *i.Checked
}
