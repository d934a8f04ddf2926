package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dakotahome/services/conversation"
	"dakotahome/utils"
)

const defaultPageLimit = 20

// ThreadHandler exposes the conversation store over HTTP.
type ThreadHandler struct {
	Store  conversation.Store
	Logger *zap.Logger
}

func NewThreadHandler(store conversation.Store, logger *zap.Logger) *ThreadHandler {
	return &ThreadHandler{Store: store, Logger: logger}
}

func pageParams(c *gin.Context) (int, string, conversation.Order) {
	limit := defaultPageLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	order := conversation.OrderAsc
	if c.Query("order") == string(conversation.OrderDesc) {
		order = conversation.OrderDesc
	}
	return limit, c.Query("after"), order
}

// ListThreads returns one page of threads.
func (h *ThreadHandler) ListThreads(c *gin.Context) {
	limit, after, order := pageParams(c)
	page, err := h.Store.LoadThreads(c.Request.Context(), limit, after, order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list threads", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetThread returns one thread's metadata.
func (h *ThreadHandler) GetThread(c *gin.Context) {
	id := c.Param("threadID")
	thread, err := h.Store.LoadThread(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "thread not found", id)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load thread", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, thread)
}

// DeleteThread removes a thread, its items and its booking draft.
func (h *ThreadHandler) DeleteThread(c *gin.Context) {
	id := c.Param("threadID")
	if err := h.Store.DeleteThread(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete thread", "details": err.Error()})
		return
	}
	h.Logger.Info("thread deleted", zap.String("thread_id", id))
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// ListThreadItems returns one page of a thread's items.
func (h *ThreadHandler) ListThreadItems(c *gin.Context) {
	limit, after, order := pageParams(c)
	page, err := h.Store.LoadThreadItems(c.Request.Context(), c.Param("threadID"), limit, after, order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list items", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetThreadItem returns one item by id.
func (h *ThreadHandler) GetThreadItem(c *gin.Context) {
	threadID, itemID := c.Param("threadID"), c.Param("itemID")
	item, err := h.Store.LoadItem(c.Request.Context(), threadID, itemID)
	if err != nil {
		if errors.Is(err, conversation.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "item not found", itemID)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load item", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteThreadItem removes one item; deleting an absent item is a no-op.
func (h *ThreadHandler) DeleteThreadItem(c *gin.Context) {
	threadID, itemID := c.Param("threadID"), c.Param("itemID")
	if err := h.Store.DeleteThreadItem(c.Request.Context(), threadID, itemID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete item", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": itemID})
}

// GetDraft returns the thread's booking draft, empty if none exists.
func (h *ThreadHandler) GetDraft(c *gin.Context) {
	draft, err := h.Store.GetDraft(c.Request.Context(), c.Param("threadID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load draft", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, draft)
}
