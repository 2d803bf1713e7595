package social

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"mykitchen/internal/apperr"
	"mykitchen/internal/auth"
	applog "mykitchen/internal/log"
	"mykitchen/models"

	"gorm.io/gorm"
)

const maxCommentLength = 2000

type CommentResponse struct {
	ID         uint      `json:"id"`
	RecipeID   uint      `json:"recipe_id"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ReactionSummary struct {
	RecipeID uint   `json:"recipe_id"`
	Likes    int64  `json:"likes"`
	Dislikes int64  `json:"dislikes"`
	Mine     string `json:"mine,omitempty"`
}

type FavoriteResponse struct {
	RecipeID    uint      `json:"recipe_id"`
	Title       string    `json:"title"`
	ImageURL    string    `json:"image_url,omitempty"`
	FavoritedAt time.Time `json:"favorited_at"`
}

func projectComment(c models.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		RecipeID:  c.RecipeID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Author != nil {
		resp.AuthorName = c.Author.Name
	}
	return resp
}

// RecipeFinder reports whether a recipe exists. recipes.Repository
// implements it.
type RecipeFinder interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// Service implements comments, reactions and favorites on recipes.
type Service struct {
	db      *gorm.DB
	recipes RecipeFinder
}

func NewService(db *gorm.DB, recipes RecipeFinder) *Service {
	return &Service{db: db, recipes: recipes}
}

func (s *Service) requireRecipe(ctx context.Context, recipeID uint) error {
	ok, err := s.recipes.Exists(ctx, recipeID)
	if err != nil {
		return apperr.Internal(err, "find recipe")
	}
	if !ok {
		return apperr.NotFoundf("recipe %d not found", recipeID)
	}
	return nil
}

func validateBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", apperr.Validationf("comment body is required")
	}
	if utf8.RuneCountInString(body) > maxCommentLength {
		return "", apperr.Validationf("comment body must be at most %d characters", maxCommentLength)
	}
	return body, nil
}

func (s *Service) AddComment(ctx context.Context, recipeID uint, author auth.Principal, body string) (CommentResponse, error) {
	body, err := validateBody(body)
	if err != nil {
		return CommentResponse{}, err
	}
	if err := s.requireRecipe(ctx, recipeID); err != nil {
		return CommentResponse{}, err
	}

	comment := models.Comment{RecipeID: recipeID, AuthorID: author.UserID, Body: body}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return CommentResponse{}, apperr.Internal(err, "create comment")
	}

	applog.Debug(ctx, "comment added", "recipe_id", recipeID, "comment_id", comment.ID)
	return s.comment(ctx, comment.ID)
}

func (s *Service) comment(ctx context.Context, id uint) (CommentResponse, error) {
	c, err := s.findComment(ctx, id)
	if err != nil {
		return CommentResponse{}, err
	}
	return projectComment(*c), nil
}

func (s *Service) findComment(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	err := s.db.WithContext(ctx).Preload("Author").First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("comment %d not found", id)
	}
	if err != nil {
		return nil, apperr.Internal(err, "find comment")
	}
	return &c, nil
}

// ListComments returns a recipe's comments oldest first.
func (s *Service) ListComments(ctx context.Context, recipeID uint) ([]CommentResponse, error) {
	if err := s.requireRecipe(ctx, recipeID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("Author").
		Where("recipe_id = ?", recipeID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, apperr.Internal(err, "list comments")
	}

	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, projectComment(c))
	}
	return out, nil
}

// EditComment is reserved to the author.
func (s *Service) EditComment(ctx context.Context, commentID uint, actor auth.Principal, body string) (CommentResponse, error) {
	body, err := validateBody(body)
	if err != nil {
		return CommentResponse{}, err
	}
	c, err := s.findComment(ctx, commentID)
	if err != nil {
		return CommentResponse{}, err
	}
	if c.AuthorID != actor.UserID {
		return CommentResponse{}, apperr.Unauthorizedf("only the author may edit comment %d", commentID)
	}

	if err := s.db.WithContext(ctx).Model(c).Update("body", body).Error; err != nil {
		return CommentResponse{}, apperr.Internal(err, "edit comment")
	}
	return s.comment(ctx, commentID)
}

// DeleteComment is allowed for the author and administrators.
func (s *Service) DeleteComment(ctx context.Context, commentID uint, actor auth.Principal) error {
	c, err := s.findComment(ctx, commentID)
	if err != nil {
		return err
	}
	if !actor.CanModify(c.AuthorID) {
		return apperr.Unauthorizedf("comment %d belongs to another user", commentID)
	}
	if err := s.db.WithContext(ctx).Delete(c).Error; err != nil {
		return apperr.Internal(err, "delete comment")
	}
	return nil
}

// React records a like or dislike. Repeating the current reaction clears
// it; the opposite reaction replaces it.
func (s *Service) React(ctx context.Context, recipeID, userID uint, kind string) (ReactionSummary, error) {
	kind = strings.ToUpper(strings.TrimSpace(kind))
	if !models.ValidReaction(kind) {
		return ReactionSummary{}, apperr.Validationf("reaction must be %s or %s", models.ReactionLike, models.ReactionDislike)
	}
	if err := s.requireRecipe(ctx, recipeID); err != nil {
		return ReactionSummary{}, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Reaction
		err := tx.Where("recipe_id = ? AND user_id = ?", recipeID, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&models.Reaction{RecipeID: recipeID, UserID: userID, Kind: kind}).Error
		case err != nil:
			return err
		case existing.Kind == kind:
			return tx.Delete(&existing).Error
		default:
			return tx.Model(&existing).Update("kind", kind).Error
		}
	})
	if err != nil {
		return ReactionSummary{}, apperr.Internal(err, "record reaction")
	}

	return s.summary(ctx, recipeID, userID)
}

// Summary counts reactions; viewerID 0 means anonymous.
func (s *Service) Summary(ctx context.Context, recipeID, viewerID uint) (ReactionSummary, error) {
	if err := s.requireRecipe(ctx, recipeID); err != nil {
		return ReactionSummary{}, err
	}
	return s.summary(ctx, recipeID, viewerID)
}

func (s *Service) summary(ctx context.Context, recipeID, viewerID uint) (ReactionSummary, error) {
	var rows []struct {
		Kind  string
		Total int64
	}
	err := s.db.WithContext(ctx).Model(&models.Reaction{}).
		Select("kind, COUNT(*) AS total").
		Where("recipe_id = ?", recipeID).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return ReactionSummary{}, apperr.Internal(err, "count reactions")
	}

	summary := ReactionSummary{RecipeID: recipeID}
	for _, row := range rows {
		switch row.Kind {
		case models.ReactionLike:
			summary.Likes = row.Total
		case models.ReactionDislike:
			summary.Dislikes = row.Total
		}
	}

	if viewerID != 0 {
		var mine models.Reaction
		err := s.db.WithContext(ctx).Where("recipe_id = ? AND user_id = ?", recipeID, viewerID).First(&mine).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return ReactionSummary{}, apperr.Internal(err, "find reaction")
		}
		summary.Mine = mine.Kind
	}
	return summary, nil
}

func (s *Service) AddFavorite(ctx context.Context, recipeID, userID uint) error {
	if err := s.requireRecipe(ctx, recipeID); err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Favorite{}).Where("recipe_id = ? AND user_id = ?", recipeID, userID).Count(&count).Error; err != nil {
		return apperr.Internal(err, "check favorite")
	}
	if count > 0 {
		return apperr.Conflictf("recipe %d is already a favorite", recipeID)
	}

	if err := s.db.WithContext(ctx).Create(&models.Favorite{RecipeID: recipeID, UserID: userID}).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflictf("recipe %d is already a favorite", recipeID)
		}
		return apperr.Internal(err, "add favorite")
	}
	return nil
}

func (s *Service) RemoveFavorite(ctx context.Context, recipeID, userID uint) error {
	result := s.db.WithContext(ctx).Where("recipe_id = ? AND user_id = ?", recipeID, userID).Delete(&models.Favorite{})
	if result.Error != nil {
		return apperr.Internal(result.Error, "remove favorite")
	}
	if result.RowsAffected == 0 {
		return apperr.NotFoundf("recipe %d is not a favorite", recipeID)
	}
	return nil
}

// ListFavorites returns the user's favorites, most recent first.
func (s *Service) ListFavorites(ctx context.Context, userID uint) ([]FavoriteResponse, error) {
	var favorites []models.Favorite
	err := s.db.WithContext(ctx).Preload("Recipe").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, apperr.Internal(err, "list favorites")
	}

	out := make([]FavoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		if f.Recipe == nil {
			continue
		}
		out = append(out, FavoriteResponse{
			RecipeID:    f.RecipeID,
			Title:       f.Recipe.Title,
			ImageURL:    f.Recipe.ImageURL,
			FavoritedAt: f.CreatedAt,
		})
	}
	return out, nil
}
