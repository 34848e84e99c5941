package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/royale/pos/internal/application/catalog"
)

// ProductHandler serves the catalog
type ProductHandler struct {
	BaseHandler
	inventory *catalogapp.InventoryService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(inventory *catalogapp.InventoryService) *ProductHandler {
	return &ProductHandler{inventory: inventory}
}

// List handles GET /products?search=
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.inventory.ListProducts(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, products, len(products))
}

// LowStock handles GET /products/low-stock
func (h *ProductHandler) LowStock(c *gin.Context) {
	products, err := h.inventory.LowStockProducts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, products, len(products))
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	product, err := h.inventory.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var form catalogapp.ProductForm
	if !h.bindJSON(c, &form) {
		return
	}
	product, err := h.inventory.AddProduct(c.Request.Context(), form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update handles PUT /products/:id. The quantity field is ignored; stock
// changes go through Adjust.
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var form catalogapp.ProductForm
	if !h.bindJSON(c, &form) {
		return
	}
	product, err := h.inventory.UpdateProduct(c.Request.Context(), id, form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.inventory.RemoveProduct(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Adjust handles POST /products/:id/adjust
func (h *ProductHandler) Adjust(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req catalogapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.inventory.AdjustStock(c.Request.Context(), id, req.Delta, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
