package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"huntboard/internal/api/dto"
	"huntboard/internal/domain"
	"huntboard/internal/service"
	"huntboard/internal/validation"
)

type ProductHandler struct {
	base
	products service.ProductService
}

func NewProductHandler(products service.ProductService, log *zap.Logger, production bool) *ProductHandler {
	return &ProductHandler{base: newBase(log, production), products: products}
}

func (h *ProductHandler) List(c *gin.Context) {
	q, err := dto.ParseListQuery(c.Request.URL.Query(), dto.ProductSortFields)
	if err != nil {
		h.handleError(c, err)
		return
	}
	items, total, err := h.products.ListProducts(c.Request.Context(), q.Filter())
	if err != nil {
		h.handleError(c, err)
		return
	}

	views := make([]domain.ProductView, len(items))
	for i := range items {
		views[i] = items[i].View()
	}
	h.okPage(c, views, q.Pagination(total))
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.requireID(c)
	if !ok {
		return
	}
	p, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusOK, p.View())
}

func (h *ProductHandler) Create(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	req, err := validation.ParseProductCreate(body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	p, err := h.products.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusCreated, p.View())
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.requireID(c)
	if !ok {
		return
	}
	body, err := readBody(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	req, err := validation.ParseProductUpdate(body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	p, err := h.products.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusOK, p.View())
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.requireID(c)
	if !ok {
		return
	}
	if err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	h.ok(c, http.StatusOK, gin.H{"id": id, "message": fmt.Sprintf("Product %d deleted", id)})
}
