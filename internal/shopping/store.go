package shopping

import (
	"context"
	"errors"
	"strings"

	"mykitchen/models"

	"gorm.io/gorm"
)

// ErrNoRecord is returned by a Store when a list or item does not exist.
var ErrNoRecord = errors.New("shopping: no record")

// Store persists shopping lists and their items.
type Store interface {
	// Transaction runs fn against a Store bound to a single transaction.
	Transaction(ctx context.Context, fn func(Store) error) error
	CreateList(ctx context.Context, list *models.ShoppingList) error
	FindList(ctx context.Context, id uint) (*models.ShoppingList, error)
	ListByOwner(ctx context.Context, ownerID uint, nameFilter string) ([]models.ShoppingList, error)
	// SaveList writes the header columns only; items are left alone.
	SaveList(ctx context.Context, list *models.ShoppingList) error
	ReplaceItems(ctx context.Context, listID uint, items []models.ListItem) ([]models.ListItem, error)
	DeleteList(ctx context.Context, id uint) error
	FindItem(ctx context.Context, id uint) (*models.ListItem, error)
	SaveItem(ctx context.Context, item *models.ListItem) error
}

// Resolver looks recipes up by id. Missing ids are simply absent from the
// result; callers decide whether that is an error.
type Resolver interface {
	FindAllByID(ctx context.Context, ids []uint) ([]models.Recipe, error)
}

// GormStore is the gorm backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) CreateList(ctx context.Context, list *models.ShoppingList) error {
	return s.db.WithContext(ctx).Create(list).Error
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("list_items.id ASC")
}

func (s *GormStore) FindList(ctx context.Context, id uint) (*models.ShoppingList, error) {
	var list models.ShoppingList
	err := s.db.WithContext(ctx).Preload("Items", orderedItems).First(&list, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *GormStore) ListByOwner(ctx context.Context, ownerID uint, nameFilter string) ([]models.ShoppingList, error) {
	query := s.db.WithContext(ctx).Preload("Items", orderedItems).Where("owner_id = ?", ownerID)
	if filter := strings.TrimSpace(nameFilter); filter != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter)+"%")
	}

	var lists []models.ShoppingList
	if err := query.Order("created_at DESC").Order("id DESC").Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}

func (s *GormStore) SaveList(ctx context.Context, list *models.ShoppingList) error {
	result := s.db.WithContext(ctx).Model(&models.ShoppingList{}).
		Where("id = ?", list.ID).
		Updates(map[string]any{
			"name":                       list.Name,
			"generated_from_recipe_text": list.GeneratedFromRecipeText,
			"updated_at":                 list.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRecord
	}
	return nil
}

func (s *GormStore) ReplaceItems(ctx context.Context, listID uint, items []models.ListItem) ([]models.ListItem, error) {
	db := s.db.WithContext(ctx)
	if err := db.Where("shopping_list_id = ?", listID).Delete(&models.ListItem{}).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []models.ListItem{}, nil
	}

	created := make([]models.ListItem, len(items))
	for i, item := range items {
		item.ID = 0
		item.ShoppingListID = listID
		created[i] = item
	}
	if err := db.Create(&created).Error; err != nil {
		return nil, err
	}
	return created, nil
}

func (s *GormStore) DeleteList(ctx context.Context, id uint) error {
	db := s.db.WithContext(ctx)
	if err := db.Where("shopping_list_id = ?", id).Delete(&models.ListItem{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.ShoppingList{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRecord
	}
	return nil
}

func (s *GormStore) FindItem(ctx context.Context, id uint) (*models.ListItem, error) {
	var item models.ListItem
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *GormStore) SaveItem(ctx context.Context, item *models.ListItem) error {
	result := s.db.WithContext(ctx).Model(&models.ListItem{}).
		Where("id = ?", item.ID).
		Update("checked", item.Checked)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoRecord
	}
	return nil
}
