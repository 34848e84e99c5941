package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/catalog"
	"github.com/royale/pos/internal/domain/shared"
	"go.uber.org/zap"
)

// Alert types
const (
	AlertTypeLowStock   = "low_stock"
	AlertTypeOutOfStock = "out_of_stock"
)

// StockAlert is a low stock notice for the shopkeeper
type StockAlert struct {
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	CurrentQuantity int64     `json:"current_quantity"`
	Threshold       int64     `json:"threshold"`
	AlertType       string    `json:"alert_type"`
}

// StockAlertNotifier delivers stock alerts
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlertHandler forwards StockBelowThreshold events to a notifier
type StockAlertHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewStockAlertHandler creates a handler that logs alerts until a notifier
// is set
func NewStockAlertHandler(logger *zap.Logger) *StockAlertHandler {
	return &StockAlertHandler{
		logger:   logger,
		notifier: NewLoggingStockAlertNotifier(logger),
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *StockAlertHandler) WithNotifier(notifier StockAlertNotifier) *StockAlertHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockAlertHandler) EventTypes() []string {
	return []string{catalog.EventTypeStockBelowThreshold}
}

// Handle processes a StockBelowThresholdEvent
func (h *StockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*catalog.StockBelowThresholdEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeStockBelowThreshold, event.EventType())
	}

	alertType := AlertTypeLowStock
	if e.CurrentQuantity <= 0 {
		alertType = AlertTypeOutOfStock
	}
	alert := StockAlert{
		ProductID:       e.ProductID,
		ProductName:     e.Name,
		CurrentQuantity: e.CurrentQuantity,
		Threshold:       e.Threshold,
		AlertType:       alertType,
	}

	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		// a lost alert must not fail the sale that raised it
		h.logger.Error("Failed to send stock alert",
			zap.String("product_id", alert.ProductID.String()),
			zap.Error(err),
		)
	}
	return nil
}

var _ shared.EventHandler = (*StockAlertHandler)(nil)

// LoggingStockAlertNotifier writes alerts to the log
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("product_id", alert.ProductID.String()),
		zap.String("product", alert.ProductName),
		zap.Int64("current_qty", alert.CurrentQuantity),
		zap.Int64("threshold", alert.Threshold),
	)
	return nil
}

var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
