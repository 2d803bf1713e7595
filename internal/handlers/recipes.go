package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"mykitchen/internal/apperr"
	"mykitchen/internal/recipes"

	"github.com/gin-gonic/gin"
)

func (h *API) listRecipes(c *gin.Context) {
	filter := recipes.Filter{
		Query: c.Query("q"),
		Tag:   c.Query("tag"),
	}
	if v := c.Query("owner_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			respondError(c, apperr.Validationf("invalid owner_id"))
			return
		}
		filter.OwnerID = uint(id)
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))
	filter.Offset, _ = strconv.Atoi(c.Query("offset"))

	page, err := h.Recipes.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *API) createRecipe(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req recipes.Input
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.Recipes.Create(c.Request.Context(), p.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *API) getRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	recipe, err := h.Recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *API) updateRecipe(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req recipes.Input
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.Recipes.Update(c.Request.Context(), id, p, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *API) deleteRecipe(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Recipes.Delete(c.Request.Context(), id, p); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *API) uploadRecipeImage(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image is too large"})
			return
		}
		respondError(c, apperr.Validationf("multipart field \"image\" is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, apperr.Validationf("could not read image"))
		return
	}

	recipe, err := h.Recipes.AttachImage(c.Request.Context(), id, p, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *API) addIngredient(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req recipes.IngredientInput
	if !bindJSON(c, &req) {
		return
	}
	ingredient, err := h.Recipes.AddIngredient(c.Request.Context(), id, p, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

func (h *API) updateIngredient(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ingredientID, ok := parseID(c, "ingredientId")
	if !ok {
		return
	}
	var req recipes.IngredientInput
	if !bindJSON(c, &req) {
		return
	}
	ingredient, err := h.Recipes.UpdateIngredient(c.Request.Context(), id, ingredientID, p, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *API) removeIngredient(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ingredientID, ok := parseID(c, "ingredientId")
	if !ok {
		return
	}
	if err := h.Recipes.RemoveIngredient(c.Request.Context(), id, ingredientID, p); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
