package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/royale/pos/internal/application/inventory"
)

// ReconciliationHandler exposes the stock reconciliation check and repair
type ReconciliationHandler struct {
	BaseHandler
	reconciler *inventoryapp.ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(reconciler *inventoryapp.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciler: reconciler}
}

// Check handles GET /inventory/reconciliation
func (h *ReconciliationHandler) Check(c *gin.Context) {
	discrepancies, err := h.reconciler.Check(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.List(c, discrepancies, len(discrepancies))
}

// Repair handles POST /inventory/reconciliation
func (h *ReconciliationHandler) Repair(c *gin.Context) {
	report, err := h.reconciler.Repair(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Recount handles GET /inventory/reconciliation/:id
func (h *ReconciliationHandler) Recount(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	recount, err := h.reconciler.RecomputeStock(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, recount)
}
