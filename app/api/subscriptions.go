package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/juris-comb/app/alert"
)

func (h *Handler) CreateSubscription(c *gin.Context) {
	var req alert.NewSubscription
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	sub, err := h.subscriptions.Create(c.Request.Context(), req)
	if err != nil {
		h.subscriptionError(c, "create_subscription", err)
		return
	}

	slog.Info("Subscription created", "id", sub.ID, "owner", sub.OwnerID)
	c.JSON(http.StatusCreated, sub)
}

func (h *Handler) GetSubscription(c *gin.Context) {
	sub, err := h.subscriptions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.subscriptionError(c, "get_subscription", err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *Handler) ListSubscriptions(c *gin.Context) {
	owner := c.Query("owner")
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing owner parameter"})
		return
	}

	subs, err := h.subscriptions.ListByOwner(c.Request.Context(), owner)
	if err != nil {
		h.subscriptionError(c, "list_subscriptions", err)
		return
	}
	if subs == nil {
		subs = []alert.Subscription{}
	}

	c.JSON(http.StatusOK, gin.H{
		"subscriptions": subs,
		"total":         len(subs),
	})
}

// UpdateSubscription binds into alert.Patch, so only contact, filter,
// frequency and active can change; any other body field is ignored.
func (h *Handler) UpdateSubscription(c *gin.Context) {
	var patch alert.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	sub, err := h.subscriptions.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.subscriptionError(c, "update_subscription", err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *Handler) DeleteSubscription(c *gin.Context) {
	if err := h.subscriptions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.subscriptionError(c, "delete_subscription", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) subscriptionError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, alert.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, alert.ErrInvalidSubscription), errors.Is(err, alert.ErrInvalidFilter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("Database error", "operation", operation, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
	}
}
