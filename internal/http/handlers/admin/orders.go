package admin

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"kittisap.shop/app/internal/http/middleware"
	"kittisap.shop/app/internal/http/validation"
	"kittisap.shop/app/internal/modules/orders"
	"kittisap.shop/app/internal/shared/apperr"
	"kittisap.shop/app/internal/storage"
)

const slipURLTTL = 15 * time.Minute

type OrdersHandler struct {
	Svc   *orders.Service
	Repo  *orders.Repo
	Files storage.Storage
}

func NewOrdersHandler(svc *orders.Service, repo *orders.Repo, files storage.Storage) *OrdersHandler {
	return &OrdersHandler{Svc: svc, Repo: repo, Files: files}
}

func (h *OrdersHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))

	res, err := h.Repo.AdminList(c.Request.Context(), orders.AdminListParams{
		Q:        strings.TrimSpace(c.Query("q")),
		Status:   strings.TrimSpace(c.Query("status")),
		Page:     page,
		PageSize: 30,
	})
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	items := make([]gin.H, 0, len(res.Items))
	for _, o := range res.Items {
		items = append(items, gin.H{
			"order_number":       o.OrderNumber,
			"customer_email":     o.CustomerEmail,
			"status":             o.Status,
			"payment_status":     o.PaymentStatus,
			"grand_total_satang": o.GrandTotalSatang,
			"created_at":         o.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": res.Total})
}

func (h *OrdersHandler) Detail(c *gin.Context) {
	number := c.Param("number")

	o, items, slips, events, err := h.Repo.AdminDetail(c.Request.Context(), number)
	if err != nil {
		middleware.Fail(c, apperr.NotFoundErr("ORDER_NOT_FOUND", "Order not found."))
		return
	}

	lines := make([]gin.H, 0, len(items))
	for _, it := range items {
		lines = append(lines, gin.H{
			"sku":               it.SKU,
			"title":             it.Title,
			"qty":               it.Qty,
			"unit_price_satang": it.UnitPriceSatang,
			"line_total_satang": it.LineTotalSatang,
		})
	}

	slipViews := make([]gin.H, 0, len(slips))
	for _, sl := range slips {
		v := gin.H{
			"id":          sl.ID,
			"status":      sl.Status,
			"uploaded_at": sl.UploadedAt.Format(time.RFC3339),
		}
		if url, err := h.Files.SignedURL(c.Request.Context(), sl.FileKey, slipURLTTL); err == nil {
			v["file_url"] = url
		}
		if sl.Note != nil {
			v["note"] = *sl.Note
		}
		if sl.ReviewedAt != nil {
			v["reviewed_at"] = sl.ReviewedAt.Format(time.RFC3339)
		}
		slipViews = append(slipViews, v)
	}

	eventViews := make([]gin.H, 0, len(events))
	for _, ev := range events {
		e := gin.H{
			"action": ev.Action,
			"from":   ev.FromStatus,
			"to":     ev.ToStatus,
			"actor":  ev.ActorID,
			"at":     ev.CreatedAt.Format(time.RFC3339),
		}
		if ev.Note != nil {
			e["note"] = *ev.Note
		}
		eventViews = append(eventViews, e)
	}

	out := gin.H{
		"order_number":        o.OrderNumber,
		"customer_name":       o.CustomerName,
		"customer_phone":      o.CustomerPhone,
		"customer_email":      o.CustomerEmail,
		"status":              o.Status,
		"payment_status":      o.PaymentStatus,
		"payment_uri":         o.PaymentURI,
		"payment_merchant_id": o.PaymentMerchantID,
		"subtotal_satang":     o.SubtotalSatang,
		"discount_satang":     o.DiscountSatang,
		"shipping_satang":     o.ShippingSatang,
		"grand_total_satang":  o.GrandTotalSatang,
		"created_at":          o.CreatedAt.Format(time.RFC3339),
		"items":               lines,
		"slips":               slipViews,
		"events":              eventViews,
	}
	if o.CouponCode != nil {
		out["coupon_code"] = *o.CouponCode
	}
	if o.PaidAt != nil {
		out["paid_at"] = o.PaidAt.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, out)
}

type reviewSlipRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
	Note   string `json:"note" binding:"omitempty,max=500"`
}

func (h *OrdersHandler) ReviewSlip(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	var req reviewSlipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("BAD_REQUEST", "Check the highlighted fields.",
			validation.FromBindError(err, &req)))
		return
	}

	res, err := h.Svc.ReviewSlip(c.Request.Context(), orders.ReviewSlipInput{
		OrderNumber: c.Param("number"),
		SlipID:      c.Param("slipID"),
		ReviewerID:  id.ID,
		Action:      req.Action,
		Note:        req.Note,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_number":   res.OrderNumber,
		"status":         res.Status,
		"payment_status": res.PaymentStatus,
	})
}

type transitionRequest struct {
	Action string `json:"action" binding:"required,oneof=process ship complete"`
	Note   string `json:"note" binding:"omitempty,max=500"`
}

func (h *OrdersHandler) Transition(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("BAD_REQUEST", "Check the highlighted fields.",
			validation.FromBindError(err, &req)))
		return
	}

	res, err := h.Svc.Transition(c.Request.Context(), orders.TransitionInput{
		OrderNumber: c.Param("number"),
		ActorID:     id.ID,
		Action:      req.Action,
		Note:        req.Note,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_number": res.OrderNumber,
		"status":       res.Status,
	})
}
