package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kittisap.shop/app/internal/http/middleware"
	"kittisap.shop/app/internal/http/validation"
	"kittisap.shop/app/internal/modules/broadcast"
	"kittisap.shop/app/internal/shared/apperr"
)

type BroadcastHandler struct {
	Svc  *broadcast.Service
	Repo *broadcast.Repo
}

func NewBroadcastHandler(svc *broadcast.Service, repo *broadcast.Repo) *BroadcastHandler {
	return &BroadcastHandler{Svc: svc, Repo: repo}
}

type sendBroadcastRequest struct {
	Mode     string `json:"mode" binding:"required,oneof=all single"`
	TargetID string `json:"target_id" binding:"omitempty,max=64"`
	Subject  string `json:"subject" binding:"required,max=255"`
	Headline string `json:"headline" binding:"omitempty,max=255"`
	Body     string `json:"body" binding:"required"`
}

// Send blocks until the fan-out completes and returns the final counts.
func (h *BroadcastHandler) Send(c *gin.Context) {
	var req sendBroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("BAD_REQUEST", "Check the highlighted fields.",
			validation.FromBindError(err, &req)))
		return
	}

	res, err := h.Svc.Send(c.Request.Context(), broadcast.SendInput{
		Mode:     req.Mode,
		TargetID: req.TargetID,
		Subject:  req.Subject,
		Headline: req.Headline,
		Body:     req.Body,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"broadcast_id": res.BroadcastID,
		"sent_count":   res.SentCount,
		"failed_count": res.FailedCount,
	})
}

func (h *BroadcastHandler) List(c *gin.Context) {
	msgs, err := h.Repo.List(c.Request.Context(), 50)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	items := make([]gin.H, 0, len(msgs))
	for _, m := range msgs {
		v := gin.H{
			"id":           m.ID,
			"mode":         m.Mode,
			"subject":      m.Subject,
			"sent_count":   m.SentCount,
			"failed_count": m.FailedCount,
			"created_at":   m.CreatedAt.Format(time.RFC3339),
		}
		if m.CompletedAt != nil {
			v["completed_at"] = m.CompletedAt.Format(time.RFC3339)
		}
		items = append(items, v)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *BroadcastHandler) Recipients(c *gin.Context) {
	recs, err := h.Repo.Recipients(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	items := make([]gin.H, 0, len(recs))
	for _, r := range recs {
		v := gin.H{
			"email":  r.EmailSnapshot,
			"status": r.Status,
			"at":     r.CreatedAt.Format(time.RFC3339),
		}
		if r.ErrorMessage != nil {
			v["error"] = *r.ErrorMessage
		}
		items = append(items, v)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
