package shopping

import (
	"sort"
	"time"

	"mykitchen/models"
)

type ItemResponse struct {
	ID      uint    `json:"id"`
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	Unit    string  `json:"unit"`
	Checked bool    `json:"checked"`
}

type ListResponse struct {
	ID            uint           `json:"id"`
	Name          string         `json:"name"`
	OwnerID       uint           `json:"owner_id"`
	GeneratedFrom string         `json:"generated_from"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Items         []ItemResponse `json:"items"`
}

func projectItem(item models.ListItem) ItemResponse {
	return ItemResponse{
		ID:      item.ID,
		Name:    item.Name,
		Amount:  item.Amount,
		Unit:    item.Unit,
		Checked: item.IsChecked(),
	}
}

// Project converts a stored list into its API shape with items ordered by id.
func Project(list models.ShoppingList) ListResponse {
	items := make([]ItemResponse, 0, len(list.Items))
	for _, item := range list.Items {
		items = append(items, projectItem(item))
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return ListResponse{
		ID:            list.ID,
		Name:          list.Name,
		OwnerID:       list.OwnerID,
		GeneratedFrom: list.GeneratedFromRecipeText,
		CreatedAt:     list.CreatedAt,
		UpdatedAt:     list.UpdatedAt,
		Items:         items,
	}
}
