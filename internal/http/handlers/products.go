package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kittisap.shop/app/internal/http/middleware"
	"kittisap.shop/app/internal/modules/catalog"
	"kittisap.shop/app/internal/shared/apperr"
)

type ProductsHandler struct {
	Repo *catalog.Repo
}

func NewProductsHandler(repo *catalog.Repo) *ProductsHandler {
	return &ProductsHandler{Repo: repo}
}

type productView struct {
	ID          string `json:"id"`
	SKU         string `json:"sku"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	PriceSatang int    `json:"price_satang"`
	InStock     bool   `json:"in_stock"`
}

func toProductView(p catalog.Product) productView {
	return productView{
		ID:          p.ID,
		SKU:         p.SKU,
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		PriceSatang: p.PriceSatang,
		InStock:     p.Stock > 0,
	}
}

func (h *ProductsHandler) List(c *gin.Context) {
	items, err := h.Repo.ListActive(c.Request.Context())
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	out := make([]productView, 0, len(items))
	for _, p := range items {
		out = append(out, toProductView(p))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h *ProductsHandler) Detail(c *gin.Context) {
	slug := c.Param("slug")

	p, ok, err := h.Repo.BySlug(c.Request.Context(), slug)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	if !ok {
		middleware.Fail(c, apperr.NotFoundErr("PRODUCT_NOT_FOUND", "Product not found."))
		return
	}
	c.JSON(http.StatusOK, toProductView(p))
}
