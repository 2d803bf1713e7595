package handlers

import (
	"net/http"
	"strings"

	"mykitchen/internal/apperr"
	"mykitchen/internal/delivery"
	applog "mykitchen/internal/log"
	"mykitchen/internal/shopping"

	"github.com/gin-gonic/gin"
)

type createShoppingListRequest struct {
	shopping.CreateInput
	SendEmail bool `json:"send_email"`
}

type emailShoppingListRequest struct {
	To string `json:"to"`
}

func (h *API) createShoppingList(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req createShoppingListRequest
	if !bindJSON(c, &req) {
		return
	}

	list, err := h.Shopping.Create(c.Request.Context(), p.UserID, req.CreateInput)
	if err != nil {
		respondError(c, err)
		return
	}

	// Mail is best-effort; the list is already committed.
	if req.SendEmail {
		if h.Delivery == nil {
			applog.Warn(c.Request.Context(), "shopping list email skipped", "list_id", list.ID, "error", errNoDispatcher)
		} else if err := h.Delivery.SendShoppingList(c.Request.Context(), p.Email, list); err != nil {
			applog.Warn(c.Request.Context(), "shopping list email not queued", "list_id", list.ID, "error", err)
		}
	}

	c.JSON(http.StatusCreated, list)
}

func (h *API) listShoppingLists(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	lists, err := h.Shopping.ListForOwner(c.Request.Context(), p.UserID, c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shopping_lists": lists})
}

func (h *API) getShoppingList(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	list, err := h.Shopping.Get(c.Request.Context(), id, p.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *API) updateShoppingList(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req shopping.UpdateInput
	if !bindJSON(c, &req) {
		return
	}
	list, err := h.Shopping.Update(c.Request.Context(), id, p.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *API) deleteShoppingList(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Shopping.Delete(c.Request.Context(), id, p.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *API) toggleShoppingListItem(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return
	}
	item, err := h.Shopping.ToggleItem(c.Request.Context(), id, itemID, p.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *API) shoppingListPDF(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	list, err := h.Shopping.Get(c.Request.Context(), id, p.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := delivery.RenderShoppingListPDF(list)
	if err != nil {
		respondError(c, apperr.Internal(err, "render pdf"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+delivery.PDFFilename(list)+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *API) emailShoppingList(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req emailShoppingListRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	// Lists go to the caller's own address; the server's mail account is
	// not a relay.
	to := p.Email
	if requested := strings.TrimSpace(req.To); requested != "" && !strings.EqualFold(requested, p.Email) {
		respondError(c, apperr.Unauthorizedf("shopping lists can only be emailed to your own address"))
		return
	}

	list, err := h.Shopping.Get(c.Request.Context(), id, p.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.Delivery == nil {
		respondError(c, apperr.Internal(errNoDispatcher, "email shopping list"))
		return
	}
	if err := h.Delivery.Deliver(c.Request.Context(), to, list); err != nil {
		respondError(c, apperr.Internal(err, "email shopping list"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent", "to": to})
}
