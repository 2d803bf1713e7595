package recipes

import (
	"context"
	"errors"
	"strings"

	"mykitchen/models"

	"gorm.io/gorm"
)

// ErrNoRecord is returned when a recipe or ingredient does not exist.
var ErrNoRecord = errors.New("recipes: no record")

// Filter narrows recipe listings. Zero values disable a criterion.
type Filter struct {
	Query   string
	Tag     string
	OwnerID uint
	Limit   int
	Offset  int
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Repository is the gorm persistence for recipes and their ingredients. It
// also serves as the recipe resolver for shopping list generation.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func orderedIngredients(db *gorm.DB) *gorm.DB {
	return db.Order("ingredients.position ASC").Order("ingredients.id ASC")
}

func (r *Repository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Ingredients", orderedIngredients).Preload("Owner")
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.withDetails(ctx).First(&recipe, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// FindAllByID returns the recipes that exist among ids, ordered by id, each
// with its ingredients in stored order.
func (r *Repository) FindAllByID(ctx context.Context, ids []uint) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return []models.Recipe{}, nil
	}

	var recipes []models.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients", orderedIngredients).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *Repository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) List(ctx context.Context, filter Filter) ([]models.Recipe, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Recipe{})
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		like := "%" + q + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if tag := normalizeTag(filter.Tag); tag != "" {
		query = query.Where("CAST(tags AS TEXT) LIKE ?", `%"`+tag+`"%`)
	}
	if filter.OwnerID != 0 {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var recipes []models.Recipe
	err := query.
		Preload("Ingredients", orderedIngredients).
		Preload("Owner").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

func (r *Repository) Create(ctx context.Context, recipe *models.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(recipe).Error
	})
}

// Save writes the recipe columns and, when replaceIngredients is set,
// swaps the whole ingredient list in the same transaction.
func (r *Repository) Save(ctx context.Context, recipe *models.Recipe, replaceIngredients bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Ingredients", "Owner").Save(recipe).Error; err != nil {
			return err
		}
		if !replaceIngredients {
			return nil
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Ingredient{}).Error; err != nil {
			return err
		}
		if len(recipe.Ingredients) == 0 {
			return nil
		}
		for i := range recipe.Ingredients {
			recipe.Ingredients[i].ID = 0
			recipe.Ingredients[i].RecipeID = recipe.ID
		}
		return tx.Create(&recipe.Ingredients).Error
	})
}

// Delete removes a recipe with its ingredients and the social rows that
// point at it.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []any{&models.Ingredient{}, &models.Comment{}, &models.Reaction{}, &models.Favorite{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&models.Recipe{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoRecord
		}
		return nil
	})
}

func (r *Repository) FindIngredient(ctx context.Context, recipeID, ingredientID uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).First(&ingredient, ingredientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// AppendIngredient stores ingredient after the recipe's current last one.
func (r *Repository) AppendIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next struct{ Position int }
		err := tx.Model(&models.Ingredient{}).
			Select("COALESCE(MAX(position) + 1, 0) AS position").
			Where("recipe_id = ?", ingredient.RecipeID).
			Scan(&next).Error
		if err != nil {
			return err
		}
		ingredient.Position = next.Position
		return tx.Create(ingredient).Error
	})
}

func (r *Repository) SaveIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	return r.db.WithContext(ctx).Save(ingredient).Error
}

func (r *Repository) DeleteIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	return r.db.WithContext(ctx).Delete(ingredient).Error
}

func (r *Repository) SetImage(ctx context.Context, id uint, url, publicID string) error {
	return r.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).
		Updates(map[string]any{"image_url": url, "image_public_id": publicID}).Error
}
