package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopping-matrix/internal/domain"
	"shopping-matrix/internal/session"
)

type aiQueryRequest struct {
	Prompt string `json:"prompt"`
}

func (h *handlers) aiQuery(c *gin.Context) {
	if h.deps.AI == nil {
		h.writeError(c, errNotConfigured)
		return
	}
	var req aiQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	reply, err := h.deps.AI.Query(c.Request.Context(), req.Prompt)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// lookupQR asks the shared index first and falls back to scanning live
// sessions, so pickup scans work even without Redis.
func (h *handlers) lookupQR(c *gin.Context) {
	code := c.Param("code")
	if h.deps.QR != nil {
		o, err := h.deps.QR.Lookup(c.Request.Context(), code)
		if err == nil {
			c.JSON(http.StatusOK, o)
			return
		}
		if !errors.Is(err, domain.ErrNotFound) {
			h.logger.Printf("http: qr lookup code=%s error=%v", code, err)
		}
	}

	var (
		found domain.Order
		ok    bool
	)
	h.deps.Sessions.Each(func(s *session.Session) {
		if ok {
			return
		}
		if o, err := s.Orders.FindByQRCode(code); err == nil {
			found, ok = o, true
		}
	})
	if !ok {
		h.writeError(c, domain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, found)
}
