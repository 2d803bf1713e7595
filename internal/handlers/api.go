package handlers

import (
	"errors"
	"net/http"
	"path"
	"strconv"

	"mykitchen/internal/apperr"
	"mykitchen/internal/auth"
	"mykitchen/internal/delivery"
	applog "mykitchen/internal/log"
	"mykitchen/internal/recipes"
	"mykitchen/internal/shopping"
	"mykitchen/internal/social"

	"github.com/gin-gonic/gin"
)

const defaultMaxUploadBytes = 5 << 20

// API holds the services behind the JSON endpoints.
type API struct {
	Auth           *auth.Service
	Recipes        *recipes.Service
	Social         *social.Service
	Shopping       *shopping.Service
	Delivery       *delivery.Dispatcher
	MaxUploadBytes int64
}

type route struct {
	method  string
	path    string
	access  auth.Access
	handler gin.HandlerFunc
}

func (h *API) routes() []route {
	return []route{
		{http.MethodPost, "/auth/register", auth.Public, h.register},
		{http.MethodPost, "/auth/login", auth.Public, h.login},
		{http.MethodPost, "/auth/logout", auth.Authenticated, h.logout},
		{http.MethodPost, "/auth/password", auth.Authenticated, h.changePassword},
		{http.MethodGet, "/auth/me", auth.Authenticated, h.me},
		{http.MethodGet, "/admin/users", auth.Admin, h.listUsers},

		{http.MethodGet, "/recipes", auth.Public, h.listRecipes},
		{http.MethodPost, "/recipes", auth.Authenticated, h.createRecipe},
		{http.MethodGet, "/recipes/:id", auth.Public, h.getRecipe},
		{http.MethodPut, "/recipes/:id", auth.Authenticated, h.updateRecipe},
		{http.MethodDelete, "/recipes/:id", auth.Authenticated, h.deleteRecipe},
		{http.MethodPost, "/recipes/:id/image", auth.Authenticated, h.uploadRecipeImage},
		{http.MethodPost, "/recipes/:id/ingredients", auth.Authenticated, h.addIngredient},
		{http.MethodPut, "/recipes/:id/ingredients/:ingredientId", auth.Authenticated, h.updateIngredient},
		{http.MethodDelete, "/recipes/:id/ingredients/:ingredientId", auth.Authenticated, h.removeIngredient},

		{http.MethodGet, "/recipes/:id/comments", auth.Public, h.listComments},
		{http.MethodPost, "/recipes/:id/comments", auth.Authenticated, h.addComment},
		{http.MethodPut, "/comments/:id", auth.Authenticated, h.editComment},
		{http.MethodDelete, "/comments/:id", auth.Authenticated, h.deleteComment},
		{http.MethodGet, "/recipes/:id/reactions", auth.Public, h.reactionSummary},
		{http.MethodPost, "/recipes/:id/reactions", auth.Authenticated, h.react},
		{http.MethodGet, "/favorites", auth.Authenticated, h.listFavorites},
		{http.MethodPost, "/recipes/:id/favorite", auth.Authenticated, h.addFavorite},
		{http.MethodDelete, "/recipes/:id/favorite", auth.Authenticated, h.removeFavorite},

		{http.MethodPost, "/shopping-lists", auth.Authenticated, h.createShoppingList},
		{http.MethodGet, "/shopping-lists", auth.Authenticated, h.listShoppingLists},
		{http.MethodGet, "/shopping-lists/:id", auth.Authenticated, h.getShoppingList},
		{http.MethodPut, "/shopping-lists/:id", auth.Authenticated, h.updateShoppingList},
		{http.MethodDelete, "/shopping-lists/:id", auth.Authenticated, h.deleteShoppingList},
		{http.MethodPatch, "/shopping-lists/:id/items/:itemId/toggle", auth.Authenticated, h.toggleShoppingListItem},
		{http.MethodGet, "/shopping-lists/:id/pdf", auth.Authenticated, h.shoppingListPDF},
		{http.MethodPost, "/shopping-lists/:id/email", auth.Authenticated, h.emailShoppingList},
	}
}

// RegisterRoutes mounts every endpoint on rg behind token authentication
// and the permission table derived from the same route list.
func (h *API) RegisterRoutes(rg *gin.RouterGroup) {
	routes := h.routes()

	rules := make([]auth.Rule, 0, len(routes))
	for _, r := range routes {
		rules = append(rules, auth.Rule{Method: r.method, Path: path.Join(rg.BasePath(), r.path), Access: r.access})
	}

	rg.Use(auth.Middleware(h.Auth), auth.Authorize(auth.NewPermissions(rules...)))
	for _, r := range routes {
		rg.Handle(r.method, r.path, r.handler)
	}
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusForbidden
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		applog.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(statusFor(kind), gin.H{"error": apperr.Message(err)})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return false
	}
	return true
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// principal returns the authenticated caller. Routes reaching it have been
// through Authorize, so a missing principal is a wiring error.
func principal(c *gin.Context) (auth.Principal, bool) {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		respondError(c, apperr.Unauthenticatedf("authentication required"))
	}
	return p, ok
}

var errNoDispatcher = errors.New("mail dispatcher not configured")
