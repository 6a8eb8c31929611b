package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kittisap.shop/app/internal/http/middleware"
	"kittisap.shop/app/internal/http/validation"
	"kittisap.shop/app/internal/modules/subscribers"
	"kittisap.shop/app/internal/shared/apperr"
)

type SubscribersHandler struct {
	Repo *subscribers.Repo
}

func NewSubscribersHandler(repo *subscribers.Repo) *SubscribersHandler {
	return &SubscribersHandler{Repo: repo}
}

type subscribeRequest struct {
	FullName string `json:"full_name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
}

func (h *SubscribersHandler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("BAD_REQUEST", "Check the highlighted fields.",
			validation.FromBindError(err, &req)))
		return
	}

	sub, err := h.Repo.Subscribe(c.Request.Context(), req.FullName, req.Email)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": sub.ID, "email": sub.Email})
}

type unsubscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *SubscribersHandler) Unsubscribe(c *gin.Context) {
	var req unsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("BAD_REQUEST", "Check the highlighted fields.",
			validation.FromBindError(err, &req)))
		return
	}

	if err := h.Repo.Unsubscribe(c.Request.Context(), req.Email); err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	// Always succeeds from the caller's perspective; do not leak membership.
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
