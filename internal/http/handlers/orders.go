package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"kittisap.shop/app/internal/http/middleware"
	"kittisap.shop/app/internal/http/validation"
	"kittisap.shop/app/internal/modules/orders"
	"kittisap.shop/app/internal/shared/apperr"
)

type OrdersHandler struct {
	Svc  *orders.Service
	Repo *orders.Repo
}

func NewOrdersHandler(svc *orders.Service, repo *orders.Repo) *OrdersHandler {
	return &OrdersHandler{Svc: svc, Repo: repo}
}

type createOrderItem struct {
	ProductID string `json:"product_id" binding:"required"`
	Qty       int    `json:"qty" binding:"required,gte=1,lte=999"`
}

type createOrderRequest struct {
	Name       string            `json:"name" binding:"required,max=255"`
	Phone      string            `json:"phone" binding:"required,max=32"`
	Email      string            `json:"email" binding:"required,email"`
	Items      []createOrderItem `json:"items" binding:"required,min=1,dive"`
	CouponCode string            `json:"coupon_code" binding:"omitempty,max=64"`
}

func (h *OrdersHandler) Create(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("BAD_REQUEST", "Check the highlighted fields.",
			validation.FromBindError(err, &req)))
		return
	}

	items := make([]orders.CreateItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, orders.CreateItem{ProductID: it.ProductID, Qty: it.Qty})
	}

	res, err := h.Svc.Create(c.Request.Context(), orders.CreateInput{
		CustomerID: id.ID,
		Customer: orders.CustomerInfo{
			Name:  req.Name,
			Phone: req.Phone,
			Email: req.Email,
		},
		Items:      items,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_number":       res.OrderNumber,
		"payment_uri":        res.PaymentURI,
		"payable_amount":     res.PayableAmount,
		"subtotal_satang":    res.SubtotalSatang,
		"discount_satang":    res.DiscountSatang,
		"shipping_satang":    res.ShippingSatang,
		"grand_total_satang": res.GrandTotalSatang,
	})
}

func (h *OrdersHandler) List(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	page, _ := strconv.Atoi(c.Query("page"))

	res, err := h.Repo.ListByCustomer(c.Request.Context(), orders.ListByCustomerParams{
		CustomerID: id.ID,
		Page:       page,
		PageSize:   20,
		Status:     c.Query("status"),
	})
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	items := make([]gin.H, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, gin.H{
			"order_number":       it.Order.OrderNumber,
			"status":             it.Order.Status,
			"payment_status":     it.Order.PaymentStatus,
			"grand_total_satang": it.Order.GrandTotalSatang,
			"item_count":         it.Count,
			"created_at":         it.Order.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": res.Total})
}

func (h *OrdersHandler) Detail(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	number := c.Param("number")

	o, items, err := h.Svc.GetForCustomer(c.Request.Context(), number, id.ID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, orderDetailView(o, items))
}

func (h *OrdersHandler) Cancel(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	number := c.Param("number")

	res, err := h.Svc.Cancel(c.Request.Context(), number, id.ID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_number": res.OrderNumber,
		"status":       res.Status,
	})
}

func (h *OrdersHandler) UploadSlip(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	number := c.Param("number")

	fh, err := c.FormFile("slip")
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("SLIP_MISSING", "Attach a payment slip file.", nil))
		return
	}
	f, err := fh.Open()
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	defer f.Close()

	res, err := h.Svc.UploadSlip(c.Request.Context(), orders.UploadSlipInput{
		OrderNumber: number,
		OwnerID:     id.ID,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Data:        f,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_number": res.OrderNumber,
		"slip_id":      res.SlipID,
		"status":       res.Status,
	})
}

func orderDetailView(o orders.Order, items []orders.OrderItem) gin.H {
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

	out := gin.H{
		"order_number":       o.OrderNumber,
		"status":             o.Status,
		"payment_status":     o.PaymentStatus,
		"payment_method":     o.PaymentMethod,
		"payment_uri":        o.PaymentURI,
		"subtotal_satang":    o.SubtotalSatang,
		"discount_satang":    o.DiscountSatang,
		"shipping_satang":    o.ShippingSatang,
		"grand_total_satang": o.GrandTotalSatang,
		"created_at":         o.CreatedAt.Format(time.RFC3339),
		"items":              lines,
	}
	if o.CouponCode != nil {
		out["coupon_code"] = *o.CouponCode
	}
	if o.PaidAt != nil {
		out["paid_at"] = o.PaidAt.Format(time.RFC3339)
	}
	return out
}
