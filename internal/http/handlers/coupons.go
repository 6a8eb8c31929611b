package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kittisap.shop/app/internal/http/middleware"
	"kittisap.shop/app/internal/http/validation"
	"kittisap.shop/app/internal/modules/coupons"
	"kittisap.shop/app/internal/shared/apperr"
)

type CouponsHandler struct {
	Svc *coupons.Service
}

func NewCouponsHandler(svc *coupons.Service) *CouponsHandler {
	return &CouponsHandler{Svc: svc}
}

type validateCouponRequest struct {
	Code           string `json:"code" binding:"required,max=64"`
	SubtotalSatang int    `json:"subtotal_satang" binding:"required,gte=1"`
}

// Validate prices a coupon against a cart subtotal without creating anything.
// Rejections come back 200 with valid=false; the reason stays generic.
func (h *CouponsHandler) Validate(c *gin.Context) {
	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("BAD_REQUEST", "Check the highlighted fields.",
			validation.FromBindError(err, &req)))
		return
	}

	res, err := h.Svc.Validate(c.Request.Context(), req.Code, req.SubtotalSatang)
	if err != nil {
		if errors.Is(err, coupons.ErrConfigInvalid) {
			middleware.Fail(c, apperr.ConfigErr("COUPON_CONFIG_INVALID", err))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	if !res.Valid {
		c.JSON(http.StatusOK, gin.H{"valid": false, "message": res.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":              true,
		"code":               res.Code,
		"discount_satang":    res.DiscountSatang,
		"total_after_satang": res.TotalAfterSatang,
	})
}
