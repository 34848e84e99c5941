package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	tradeapp "github.com/royale/pos/internal/application/trade"
	"github.com/royale/pos/internal/domain/trade"
	"github.com/royale/pos/internal/interfaces/http/dto"
	"github.com/royale/pos/internal/interfaces/http/middleware"
)

// SaleHandler serves checkout and the sales history
type SaleHandler struct {
	BaseHandler
	processor *tradeapp.SaleProcessor
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(processor *tradeapp.SaleProcessor) *SaleHandler {
	return &SaleHandler{processor: processor}
}

// List handles GET /sales
func (h *SaleHandler) List(c *gin.Context) {
	sales, err := h.processor.ListSales(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.BaseHandler.List(c, tradeapp.ToSaleResponses(sales), len(sales))
}

// Get handles GET /sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	sale, err := h.processor.GetSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tradeapp.ToSaleResponse(sale))
}

// Record handles POST /sales. A sale whose stock was only partly adjusted
// is answered with 500, the stored sale and RECONCILIATION_REQUIRED.
func (h *SaleHandler) Record(c *gin.Context) {
	var req tradeapp.RecordSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := req.Cart()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.processor.RecordSale(c.Request.Context(), cart, trade.PaymentMethod(req.PaymentMethod))
	var recErr *tradeapp.ReconciliationError
	if errors.As(err, &recErr) && result != nil {
		_ = c.Error(err)
		h.logServerError(c, err)
		c.Set(middleware.ErrorCodeKey, dto.ErrCodeReconciliationRequired)
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeReconciliationRequired, err.Error(), middleware.GetRequestID(c))
		resp.Data = tradeapp.ToSaleResultResponse(result)
		c.JSON(http.StatusInternalServerError, resp)
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tradeapp.ToSaleResultResponse(result))
}
