package shopping

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"mykitchen/internal/apperr"
	applog "mykitchen/internal/log"
	"mykitchen/models"
)

// CreateInput is the payload for a new shopping list.
type CreateInput struct {
	Name      string `json:"name"`
	RecipeIDs []uint `json:"recipe_ids"`
}

// UpdateInput renames a list and, when RecipeIDs is non-empty, regenerates
// its items. An empty RecipeIDs keeps the current items.
type UpdateInput struct {
	Name      string `json:"name"`
	RecipeIDs []uint `json:"recipe_ids"`
}

// Service implements shopping list generation and mutation on behalf of an
// authenticated owner.
type Service struct {
	store    Store
	resolver Resolver

	// Now stamps created and updated times.
	Now func() time.Time
}

func NewService(store Store, resolver Resolver) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, ownerID uint, input CreateInput) (ListResponse, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ListResponse{}, apperr.Validationf("name is required")
	}
	if len(input.RecipeIDs) == 0 {
		return ListResponse{}, apperr.Validationf("at least one recipe is required")
	}

	recipes, err := s.resolve(ctx, input.RecipeIDs)
	if err != nil {
		return ListResponse{}, err
	}

	list := Assemble(ownerID, name, recipes, s.Now())
	if err := s.store.Transaction(ctx, func(tx Store) error {
		return tx.CreateList(ctx, &list)
	}); err != nil {
		return ListResponse{}, apperr.Internal(err, "create shopping list")
	}

	applog.Info(ctx, "shopping list created", "list_id", list.ID, "owner_id", ownerID, "items", len(list.Items))
	return Project(list), nil
}

func (s *Service) Get(ctx context.Context, listID, ownerID uint) (ListResponse, error) {
	list, err := s.ownedList(ctx, listID, ownerID)
	if err != nil {
		return ListResponse{}, err
	}
	return Project(*list), nil
}

func (s *Service) ListForOwner(ctx context.Context, ownerID uint, nameFilter string) ([]ListResponse, error) {
	lists, err := s.store.ListByOwner(ctx, ownerID, nameFilter)
	if err != nil {
		return nil, apperr.Internal(err, "list shopping lists")
	}

	out := make([]ListResponse, 0, len(lists))
	for _, list := range lists {
		out = append(out, Project(list))
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, listID, ownerID uint, input UpdateInput) (ListResponse, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ListResponse{}, apperr.Validationf("name is required")
	}

	list, err := s.ownedList(ctx, listID, ownerID)
	if err != nil {
		return ListResponse{}, err
	}

	var recipes []models.Recipe
	regenerate := len(input.RecipeIDs) > 0
	if regenerate {
		recipes, err = s.resolve(ctx, input.RecipeIDs)
		if err != nil {
			return ListResponse{}, err
		}
	}

	list.Name = name
	list.UpdatedAt = s.Now()
	if regenerate {
		list.GeneratedFromRecipeText = Provenance(recipes)
	}

	err = s.store.Transaction(ctx, func(tx Store) error {
		if err := tx.SaveList(ctx, list); err != nil {
			return err
		}
		if !regenerate {
			return nil
		}
		items, err := tx.ReplaceItems(ctx, list.ID, Items(recipes))
		if err != nil {
			return err
		}
		list.Items = items
		return nil
	})
	if errors.Is(err, ErrNoRecord) {
		return ListResponse{}, apperr.NotFoundf("shopping list %d not found", listID)
	}
	if err != nil {
		return ListResponse{}, apperr.Internal(err, "update shopping list")
	}

	applog.Info(ctx, "shopping list updated", "list_id", list.ID, "regenerated", regenerate)
	return Project(*list), nil
}

func (s *Service) Delete(ctx context.Context, listID, ownerID uint) error {
	if _, err := s.ownedList(ctx, listID, ownerID); err != nil {
		return err
	}

	if err := s.store.Transaction(ctx, func(tx Store) error {
		return tx.DeleteList(ctx, listID)
	}); err != nil {
		if errors.Is(err, ErrNoRecord) {
			return apperr.NotFoundf("shopping list %d not found", listID)
		}
		return apperr.Internal(err, "delete shopping list")
	}

	applog.Info(ctx, "shopping list deleted", "list_id", listID)
	return nil
}

// ToggleItem flips the checked state of one item. The read and the write
// share one transaction. An item that belongs to a different list is
// reported as missing.
func (s *Service) ToggleItem(ctx context.Context, listID, itemID, ownerID uint) (ItemResponse, error) {
	if _, err := s.ownedList(ctx, listID, ownerID); err != nil {
		return ItemResponse{}, err
	}

	var item *models.ListItem
	err := s.store.Transaction(ctx, func(tx Store) error {
		found, err := tx.FindItem(ctx, itemID)
		if errors.Is(err, ErrNoRecord) {
			return apperr.NotFoundf("item %d not found", itemID)
		}
		if err != nil {
			return err
		}
		if found.ShoppingListID != listID {
			return apperr.NotFoundf("item %d not found in list %d", itemID, listID)
		}

		checked := !found.IsChecked()
		found.Checked = &checked
		if err := tx.SaveItem(ctx, found); err != nil {
			return err
		}
		item = found
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return ItemResponse{}, err
		}
		if errors.Is(err, ErrNoRecord) {
			return ItemResponse{}, apperr.NotFoundf("item %d not found", itemID)
		}
		return ItemResponse{}, apperr.Internal(err, "toggle list item")
	}

	return projectItem(*item), nil
}

func (s *Service) ownedList(ctx context.Context, listID, ownerID uint) (*models.ShoppingList, error) {
	list, err := s.store.FindList(ctx, listID)
	if errors.Is(err, ErrNoRecord) {
		return nil, apperr.NotFoundf("shopping list %d not found", listID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "find shopping list")
	}
	if list.OwnerID != ownerID {
		return nil, apperr.Unauthorizedf("shopping list %d belongs to another user", listID)
	}
	return list, nil
}

// resolve looks up every distinct id and fails without side effects if any
// of them is missing. Recipes come back in resolver order.
func (s *Service) resolve(ctx context.Context, ids []uint) ([]models.Recipe, error) {
	unique := dedupe(ids)
	recipes, err := s.resolver.FindAllByID(ctx, unique)
	if err != nil {
		return nil, apperr.Internal(err, "resolve recipes")
	}

	found := make(map[uint]struct{}, len(recipes))
	for _, recipe := range recipes {
		found[recipe.ID] = struct{}{}
	}

	var missing []string
	for _, id := range unique {
		if _, ok := found[id]; !ok {
			missing = append(missing, fmt.Sprint(id))
		}
	}
	if len(missing) > 0 {
		return nil, apperr.NotFoundf("recipes not found: %s", strings.Join(missing, ", "))
	}
	return recipes, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
