package recipes

import (
	"context"
	"errors"
	"strings"
	"time"

	"mykitchen/internal/apperr"
	"mykitchen/internal/auth"
	applog "mykitchen/internal/log"
	"mykitchen/internal/media"
	"mykitchen/models"

	"gorm.io/datatypes"
)

type IngredientInput struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Input is the writable part of a recipe. On update a nil Ingredients keeps
// the stored ingredients; any non-nil slice replaces them.
type Input struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Instructions string            `json:"instructions"`
	Servings     int               `json:"servings"`
	PrepMinutes  int               `json:"prep_minutes"`
	CookMinutes  int               `json:"cook_minutes"`
	Tags         []string          `json:"tags"`
	Ingredients  []IngredientInput `json:"ingredients"`
}

type IngredientResponse struct {
	ID       uint    `json:"id"`
	Position int     `json:"position"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
}

type Response struct {
	ID           uint                 `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Instructions string               `json:"instructions"`
	Servings     int                  `json:"servings"`
	PrepMinutes  int                  `json:"prep_minutes"`
	CookMinutes  int                  `json:"cook_minutes"`
	Tags         []string             `json:"tags"`
	ImageURL     string               `json:"image_url,omitempty"`
	OwnerID      uint                 `json:"owner_id"`
	OwnerName    string               `json:"owner_name,omitempty"`
	Ingredients  []IngredientResponse `json:"ingredients"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

type Page struct {
	Items  []Response `json:"items"`
	Total  int64      `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

func projectIngredient(i models.Ingredient) IngredientResponse {
	return IngredientResponse{ID: i.ID, Position: i.Position, Name: i.Name, Amount: i.Amount, Unit: i.Unit}
}

func project(r models.Recipe) Response {
	ingredients := make([]IngredientResponse, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		ingredients = append(ingredients, projectIngredient(i))
	}
	tags := []string(r.Tags)
	if tags == nil {
		tags = []string{}
	}

	resp := Response{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Instructions: r.Instructions,
		Servings:     r.Servings,
		PrepMinutes:  r.PrepMinutes,
		CookMinutes:  r.CookMinutes,
		Tags:         tags,
		ImageURL:     r.ImageURL,
		OwnerID:      r.OwnerID,
		Ingredients:  ingredients,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.Owner != nil {
		resp.OwnerName = r.Owner.Name
	}
	return resp
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func normalizeTags(tags []string) datatypes.JSONSlice[string] {
	seen := make(map[string]struct{}, len(tags))
	out := make(datatypes.JSONSlice[string], 0, len(tags))
	for _, tag := range tags {
		tag = normalizeTag(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func validateIngredient(i IngredientInput) error {
	if strings.TrimSpace(i.Name) == "" {
		return apperr.Validationf("ingredient name is required")
	}
	if strings.TrimSpace(i.Unit) == "" {
		return apperr.Validationf("ingredient unit is required for %q", i.Name)
	}
	if i.Amount <= 0 {
		return apperr.Validationf("ingredient amount must be positive for %q", i.Name)
	}
	return nil
}

func validateInput(input Input) error {
	if strings.TrimSpace(input.Title) == "" {
		return apperr.Validationf("title is required")
	}
	if input.Servings < 0 || input.PrepMinutes < 0 || input.CookMinutes < 0 {
		return apperr.Validationf("servings and durations must not be negative")
	}
	for _, i := range input.Ingredients {
		if err := validateIngredient(i); err != nil {
			return err
		}
	}
	return nil
}

func toIngredients(inputs []IngredientInput) []models.Ingredient {
	ingredients := make([]models.Ingredient, 0, len(inputs))
	for pos, i := range inputs {
		ingredients = append(ingredients, models.Ingredient{
			Position: pos,
			Name:     strings.TrimSpace(i.Name),
			Amount:   i.Amount,
			Unit:     strings.TrimSpace(i.Unit),
		})
	}
	return ingredients
}

func apply(recipe *models.Recipe, input Input) {
	recipe.Title = strings.TrimSpace(input.Title)
	recipe.Description = strings.TrimSpace(input.Description)
	recipe.Instructions = strings.TrimSpace(input.Instructions)
	recipe.Servings = input.Servings
	recipe.PrepMinutes = input.PrepMinutes
	recipe.CookMinutes = input.CookMinutes
	recipe.Tags = normalizeTags(input.Tags)
}

// Service implements recipe management with ownership checks.
type Service struct {
	repo     *Repository
	images   media.Store
	maxWidth int
}

func NewService(repo *Repository, images media.Store, maxWidth int) *Service {
	if images == nil {
		images = media.DisabledStore{}
	}
	return &Service{repo: repo, images: images, maxWidth: maxWidth}
}

func (s *Service) load(ctx context.Context, id uint) (*models.Recipe, error) {
	recipe, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNoRecord) {
		return nil, apperr.NotFoundf("recipe %d not found", id)
	}
	if err != nil {
		return nil, apperr.Internal(err, "find recipe")
	}
	return recipe, nil
}

func (s *Service) loadOwned(ctx context.Context, id uint, actor auth.Principal) (*models.Recipe, error) {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(recipe.OwnerID) {
		return nil, apperr.Unauthorizedf("recipe %d belongs to another user", id)
	}
	return recipe, nil
}

func (s *Service) Create(ctx context.Context, ownerID uint, input Input) (Response, error) {
	if err := validateInput(input); err != nil {
		return Response{}, err
	}

	recipe := models.Recipe{OwnerID: ownerID, Ingredients: toIngredients(input.Ingredients)}
	apply(&recipe, input)

	if err := s.repo.Create(ctx, &recipe); err != nil {
		return Response{}, apperr.Internal(err, "create recipe")
	}

	applog.Info(ctx, "recipe created", "recipe_id", recipe.ID, "owner_id", ownerID)
	return s.Get(ctx, recipe.ID)
}

func (s *Service) Get(ctx context.Context, id uint) (Response, error) {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return Response{}, err
	}
	return project(*recipe), nil
}

func (s *Service) List(ctx context.Context, filter Filter) (Page, error) {
	recipes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return Page{}, apperr.Internal(err, "list recipes")
	}

	items := make([]Response, 0, len(recipes))
	for _, r := range recipes {
		items = append(items, project(r))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Page{Items: items, Total: total, Limit: limit, Offset: max(filter.Offset, 0)}, nil
}

func (s *Service) Update(ctx context.Context, id uint, actor auth.Principal, input Input) (Response, error) {
	if err := validateInput(input); err != nil {
		return Response{}, err
	}

	recipe, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return Response{}, err
	}

	apply(recipe, input)
	replace := input.Ingredients != nil
	if replace {
		recipe.Ingredients = toIngredients(input.Ingredients)
	}

	if err := s.repo.Save(ctx, recipe, replace); err != nil {
		return Response{}, apperr.Internal(err, "update recipe")
	}

	applog.Info(ctx, "recipe updated", "recipe_id", id, "ingredients_replaced", replace)
	return s.Get(ctx, id)
}

// Delete removes the recipe. Its hosted image is removed best-effort.
func (s *Service) Delete(ctx context.Context, id uint, actor auth.Principal) error {
	recipe, err := s.loadOwned(ctx, id, actor)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNoRecord) {
			return apperr.NotFoundf("recipe %d not found", id)
		}
		return apperr.Internal(err, "delete recipe")
	}

	s.dropImage(ctx, recipe.ImagePublicID)
	applog.Info(ctx, "recipe deleted", "recipe_id", id)
	return nil
}

func (s *Service) AddIngredient(ctx context.Context, recipeID uint, actor auth.Principal, input IngredientInput) (IngredientResponse, error) {
	if err := validateIngredient(input); err != nil {
		return IngredientResponse{}, err
	}
	if _, err := s.loadOwned(ctx, recipeID, actor); err != nil {
		return IngredientResponse{}, err
	}

	ingredient := models.Ingredient{
		RecipeID: recipeID,
		Name:     strings.TrimSpace(input.Name),
		Amount:   input.Amount,
		Unit:     strings.TrimSpace(input.Unit),
	}
	if err := s.repo.AppendIngredient(ctx, &ingredient); err != nil {
		return IngredientResponse{}, apperr.Internal(err, "add ingredient")
	}
	return projectIngredient(ingredient), nil
}

func (s *Service) loadIngredient(ctx context.Context, recipeID, ingredientID uint, actor auth.Principal) (*models.Ingredient, error) {
	if _, err := s.loadOwned(ctx, recipeID, actor); err != nil {
		return nil, err
	}
	ingredient, err := s.repo.FindIngredient(ctx, recipeID, ingredientID)
	if errors.Is(err, ErrNoRecord) {
		return nil, apperr.NotFoundf("ingredient %d not found in recipe %d", ingredientID, recipeID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "find ingredient")
	}
	return ingredient, nil
}

func (s *Service) UpdateIngredient(ctx context.Context, recipeID, ingredientID uint, actor auth.Principal, input IngredientInput) (IngredientResponse, error) {
	if err := validateIngredient(input); err != nil {
		return IngredientResponse{}, err
	}
	ingredient, err := s.loadIngredient(ctx, recipeID, ingredientID, actor)
	if err != nil {
		return IngredientResponse{}, err
	}

	ingredient.Name = strings.TrimSpace(input.Name)
	ingredient.Amount = input.Amount
	ingredient.Unit = strings.TrimSpace(input.Unit)
	if err := s.repo.SaveIngredient(ctx, ingredient); err != nil {
		return IngredientResponse{}, apperr.Internal(err, "update ingredient")
	}
	return projectIngredient(*ingredient), nil
}

func (s *Service) RemoveIngredient(ctx context.Context, recipeID, ingredientID uint, actor auth.Principal) error {
	ingredient, err := s.loadIngredient(ctx, recipeID, ingredientID, actor)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteIngredient(ctx, ingredient); err != nil {
		return apperr.Internal(err, "remove ingredient")
	}
	return nil
}

// AttachImage downscales data, uploads it and points the recipe at the new
// asset. The previous asset, if any, is removed best-effort.
func (s *Service) AttachImage(ctx context.Context, recipeID uint, actor auth.Principal, data []byte) (Response, error) {
	recipe, err := s.loadOwned(ctx, recipeID, actor)
	if err != nil {
		return Response{}, err
	}

	prepared, _, err := media.Prepare(data, s.maxWidth)
	if err != nil {
		return Response{}, err
	}

	asset, err := s.images.Upload(ctx, prepared)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return Response{}, err
		}
		return Response{}, apperr.Internal(err, "upload image")
	}

	if err := s.repo.SetImage(ctx, recipeID, asset.URL, asset.PublicID); err != nil {
		s.dropImage(ctx, asset.PublicID)
		return Response{}, apperr.Internal(err, "store image reference")
	}

	s.dropImage(ctx, recipe.ImagePublicID)
	applog.Info(ctx, "recipe image attached", "recipe_id", recipeID, "public_id", asset.PublicID)
	return s.Get(ctx, recipeID)
}

func (s *Service) dropImage(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := s.images.Delete(ctx, publicID); err != nil {
		applog.Warn(ctx, "failed to delete hosted image", "public_id", publicID, "error", err)
	}
}
