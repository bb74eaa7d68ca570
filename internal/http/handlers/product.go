package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/product"
	"github.com/gin-gonic/gin"
)

type ProductService interface {
	Create(ctx context.Context, in product.CreateInput) (*product.Entity, error)
	Get(ctx context.Context, id int64) (*product.Entity, error)
	List(ctx context.Context) ([]product.Entity, error)
	Update(ctx context.Context, id int64, in product.UpdateInput) (*product.Entity, error)
}

type ProductHandler struct {
	productService ProductService
}

func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) productError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, product.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
	case errors.Is(err, product.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_product"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req product.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	p, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.productError(c, err, "create_product_failed")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) List(c *gin.Context) {
	items, err := h.productService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_products_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_product_id"})
		return
	}
	p, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		h.productError(c, err, "get_product_failed")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_product_id"})
		return
	}
	var req product.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	p, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.productError(c, err, "update_product_failed")
		return
	}
	c.JSON(http.StatusOK, p)
}
