package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

func queryLimit(c *gin.Context) int64 {
	n, err := strconv.ParseInt(c.Query("limit"), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (h *handlers) documents(c *gin.Context) (documentStore, bool) {
	if h.deps.Documents == nil {
		h.writeError(c, errNotConfigured)
		return nil, false
	}
	return h.deps.Documents, true
}

func (h *handlers) listDocuments(c *gin.Context) {
	store, ok := h.documents(c)
	if !ok {
		return
	}
	docs, err := store.List(c.Request.Context(), c.Param("collection"), queryLimit(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *handlers) cursorDocuments(c *gin.Context) {
	store, ok := h.documents(c)
	if !ok {
		return
	}
	page, err := store.Cursor(c.Request.Context(), c.Param("collection"), c.Query("lastId"), queryLimit(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handlers) createDocument(c *gin.Context) {
	store, ok := h.documents(c)
	if !ok {
		return
	}
	var doc bson.M
	if err := c.ShouldBindJSON(&doc); err != nil || doc == nil {
		badRequest(c, "body must be a JSON object")
		return
	}
	id, err := store.Create(c.Request.Context(), c.Param("collection"), doc)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"insertedId": id})
}

func (h *handlers) updateDocument(c *gin.Context) {
	store, ok := h.documents(c)
	if !ok {
		return
	}
	var set bson.M
	if err := c.ShouldBindJSON(&set); err != nil || set == nil {
		badRequest(c, "body must be a JSON object")
		return
	}
	modified, err := store.Update(c.Request.Context(), c.Param("collection"), c.Param("id"), set)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"modifiedCount": modified})
}

func (h *handlers) deleteDocument(c *gin.Context) {
	store, ok := h.documents(c)
	if !ok {
		return
	}
	deleted, err := store.Delete(c.Request.Context(), c.Param("collection"), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": deleted})
}
