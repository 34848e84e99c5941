package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/royale/pos/internal/application/partner"
)

// DebtorHandler serves the credit book
type DebtorHandler struct {
	BaseHandler
	debtors *partnerapp.DebtorService
}

// NewDebtorHandler creates a new DebtorHandler
func NewDebtorHandler(debtors *partnerapp.DebtorService) *DebtorHandler {
	return &DebtorHandler{debtors: debtors}
}

// List handles GET /debtors
func (h *DebtorHandler) List(c *gin.Context) {
	list, err := h.debtors.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Get handles GET /debtors/:id
func (h *DebtorHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	debtor, err := h.debtors.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, debtor)
}

// Create handles POST /debtors
func (h *DebtorHandler) Create(c *gin.Context) {
	var req partnerapp.CreateDebtorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	debtor, err := h.debtors.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, debtor)
}

// Charge handles POST /debtors/:id/charge
func (h *DebtorHandler) Charge(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req partnerapp.BalanceChangeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	debtor, err := h.debtors.Charge(c.Request.Context(), id, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, debtor)
}

// Payment handles POST /debtors/:id/payment
func (h *DebtorHandler) Payment(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req partnerapp.BalanceChangeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	debtor, err := h.debtors.RecordPayment(c.Request.Context(), id, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, debtor)
}

// Delete handles DELETE /debtors/:id
func (h *DebtorHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.debtors.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
