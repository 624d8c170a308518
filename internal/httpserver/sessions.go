package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopping-matrix/internal/domain"
	"shopping-matrix/internal/service/order"
	"shopping-matrix/internal/session"
)

type ctxKey string

const sessionCtxKey ctxKey = "session"

func sessionMiddleware(sessions sessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := c.Param("sid")
		if sid == "" {
			badRequest(c, "session id is required")
			return
		}
		sess, err := sessions.Get(sid)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), sessionCtxKey, sess))
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	sess, _ := c.Request.Context().Value(sessionCtxKey).(*session.Session)
	return sess
}

func (h *handlers) createSession(c *gin.Context) {
	sess := h.deps.Sessions.Create()
	c.JSON(http.StatusCreated, gin.H{"sessionId": sess.ID, "createdAt": sess.CreatedAt})
}

type cartResponse struct {
	Lines    []domain.CartLine `json:"lines"`
	Count    int               `json:"count"`
	Subtotal string            `json:"subtotal"`
}

func renderCart(sess *session.Session) cartResponse {
	lines := sess.Cart.Lines()
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return cartResponse{
		Lines:    lines,
		Count:    sess.Cart.TotalCount(),
		Subtotal: sess.Cart.Subtotal().StringFixed(2),
	}
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, renderCart(currentSession(c)))
}

type addLineRequest struct {
	ProductID   string `json:"productId"`
	Category    string `json:"category"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	Type        string `json:"type"`
	ServiceMode string `json:"serviceMode"`
}

// addCartLine resolves the product from the catalog so prices and names come
// from the source of truth, not the client.
func (h *handlers) addCartLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		badRequest(c, "productId is required")
		return
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		h.writeError(c, err)
		return
	}
	mode, err := domain.ParseServiceMode(req.ServiceMode)
	if err != nil {
		h.writeError(c, err)
		return
	}

	product, err := h.deps.Catalog.Find(c.Request.Context(), category, req.ProductID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	line, err := product.CartLineFor(req.Size, req.Color, domain.AcquisitionMode(req.Type), mode)
	if err != nil {
		h.writeError(c, err)
		return
	}

	sess := currentSession(c)
	if rec, ok := sess.Stock.Lookup(product.ID); ok && rec.RemainingCount == 0 {
		h.writeError(c, domain.ErrOutOfStock)
		return
	}

	sess.Lock()
	saved := sess.Cart.Add(line)
	sess.Unlock()
	c.JSON(http.StatusCreated, saved)
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *handlers) setCartLineQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		badRequest(c, "quantity is required")
		return
	}
	sess := currentSession(c)
	lineID := c.Param("lineID")

	sess.Lock()
	ok := sess.Cart.SetQuantity(lineID, *req.Quantity)
	line, kept := sess.Cart.Get(lineID)
	sess.Unlock()
	if !ok {
		h.writeError(c, domain.ErrNotFound)
		return
	}
	if !kept {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (h *handlers) removeCartLine(c *gin.Context) {
	sess := currentSession(c)
	sess.Lock()
	sess.Cart.Remove(c.Param("lineID"))
	sess.Unlock()
	c.Status(http.StatusNoContent)
}

func (h *handlers) clearCart(c *gin.Context) {
	sess := currentSession(c)
	sess.Lock()
	sess.Cart.Clear()
	sess.Unlock()
	c.Status(http.StatusNoContent)
}

func (h *handlers) getStorefront(c *gin.Context) {
	category, err := domain.ParseCategory(c.Param("category"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	sf, err := h.deps.Catalog.LoadStorefront(c.Request.Context(), currentSession(c), category, refresh)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sf)
}

// getStock answers 0 for items the session has not seen yet.
func (h *handlers) getStock(c *gin.Context) {
	itemID := c.Param("itemID")
	rec, ok := currentSession(c).Stock.Lookup(itemID)
	if !ok {
		rec = domain.StockRecord{ItemID: itemID}
	}
	c.JSON(http.StatusOK, gin.H{
		"itemId":         rec.ItemID,
		"remainingCount": rec.RemainingCount,
		"brand":          rec.Brand,
		"category":       rec.Category,
		"known":          ok,
	})
}

func (h *handlers) getQuote(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Orders.Quote())
}

func (h *handlers) checkout(c *gin.Context) {
	var req order.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	o, err := currentSession(c).Checkout(req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *handlers) listOrders(c *gin.Context) {
	j := currentSession(c).Orders
	var list []domain.Order
	switch c.Query("state") {
	case "":
		list = j.Orders()
	case "active":
		list = j.ActiveOrders()
	case "completed":
		list = j.CompletedOrders()
	default:
		badRequest(c, "state must be active or completed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *handlers) getOrder(c *gin.Context) {
	o, err := currentSession(c).Orders.Get(c.Param("orderID"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *handlers) advanceOrder(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	next, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		h.writeError(c, domain.ErrInvalidStatus)
		return
	}
	o, err := currentSession(c).Orders.AdvanceStatus(c.Param("orderID"), next)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// getRecommendations never fails: an unavailable AI service yields an empty
// suggestion.
func (h *handlers) getRecommendations(c *gin.Context) {
	suggestion := ""
	if h.deps.Recommender != nil {
		suggestion = h.deps.Recommender.Suggest(c.Request.Context(), currentSession(c).Cart.ProductNames())
	}
	c.JSON(http.StatusOK, gin.H{"suggestion": suggestion})
}
