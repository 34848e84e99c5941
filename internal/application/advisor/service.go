// Package advisor produces shop advice and chat replies from a text
// generation backend. It never fails: every error becomes a fixed reply.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/royale/pos/internal/domain/catalog"
	"github.com/royale/pos/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Fixed replies used when the generator is unavailable or says nothing
const (
	AdviceEmptyFallback   = "Unable to generate advice at this moment."
	AdviceFailureFallback = "Keep monitoring your low stock items and ensure high-margin products are always available."
	ChatEmptyFallback     = "I'm sorry, I couldn't process that."
	ChatFailureFallback   = "I am currently offline. Please try again later."
)

// ChatSystemInstruction sets the assistant persona for chat
const ChatSystemInstruction = "You are Royale Assistant, a helpful business partner for shop owners. " +
	"You specialize in retail management, inventory optimization, and growth strategies for small businesses in emerging markets."

const advicePromptPrefix = "You are a professional business consultant for a small retail shop in Uganda. " +
	"Based on this data, provide 3 short, actionable tips to improve sales or stock management. " +
	"Keep it practical. Data: "

// DefaultRecentSales is how many sales the advice context carries
const DefaultRecentSales = 10

// Role identifies the author of a chat turn
type Role string

// Chat roles
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage is one turn of a conversation
type ChatMessage struct {
	Role Role   `json:"role" binding:"required,oneof=user model"`
	Text string `json:"text" binding:"required"`
}

// Purpose selects the model a generator should use
type Purpose string

// Generation purposes
const (
	PurposeAdvice Purpose = "advice"
	PurposeChat   Purpose = "chat"
)

// Prompt is a single generation request
type Prompt struct {
	Purpose           Purpose
	SystemInstruction string
	Messages          []ChatMessage
}

// TextGenerator turns a prompt into text
type TextGenerator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// FailureRecorder counts absorbed failures
type FailureRecorder interface {
	RecordAdvisorFailure(ctx context.Context, operation, reason string)
}

// ProductReader lists products for the advice context
type ProductReader interface {
	FindAll(ctx context.Context) ([]catalog.Product, error)
}

// RecentSalesReader lists the newest sales for the advice context
type RecentSalesReader interface {
	FindRecent(ctx context.Context, limit int) ([]trade.Sale, error)
}

// Service answers advice and chat requests
type Service struct {
	generator   TextGenerator
	products    ProductReader
	sales       RecentSalesReader
	failures    FailureRecorder
	logger      *zap.Logger
	recentSales int
	loc         *time.Location
}

// Option configures a Service
type Option func(*Service)

// WithFailureRecorder counts fallbacks in a metric
func WithFailureRecorder(r FailureRecorder) Option {
	return func(s *Service) {
		s.failures = r
	}
}

// WithRecentSales overrides how many sales the advice context carries
func WithRecentSales(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentSales = n
		}
	}
}

// WithLocation sets the zone sale dates are rendered in
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewService creates an advisor
func NewService(generator TextGenerator, products ProductReader, sales RecentSalesReader, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		generator:   generator,
		products:    products,
		sales:       sales,
		logger:      logger,
		recentSales: DefaultRecentSales,
		loc:         time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type inventoryLine struct {
	Name      string `json:"name"`
	Qty       int64  `json:"qty"`
	Threshold int64  `json:"threshold"`
}

type saleLine struct {
	Total decimal.Decimal `json:"total"`
	Date  string          `json:"date"`
}

// BusinessAdvice asks for three short tips based on stock levels and the
// most recent sales
func (s *Service) BusinessAdvice(ctx context.Context) string {
	data, err := s.adviceContext(ctx)
	if err != nil {
		s.fail(ctx, "advice", "context", err)
		return AdviceFailureFallback
	}

	text, err := s.generator.Generate(ctx, Prompt{
		Purpose:  PurposeAdvice,
		Messages: []ChatMessage{{Role: RoleUser, Text: advicePromptPrefix + data}},
	})
	if err != nil {
		s.fail(ctx, "advice", reasonOf(err), err)
		return AdviceFailureFallback
	}
	if strings.TrimSpace(text) == "" {
		s.fail(ctx, "advice", "empty", nil)
		return AdviceEmptyFallback
	}
	return text
}

// Chat continues a conversation. history holds earlier turns, oldest first.
func (s *Service) Chat(ctx context.Context, history []ChatMessage, message string) string {
	messages := make([]ChatMessage, 0, len(history)+1)
	for _, m := range history {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		messages = append(messages, m)
	}
	messages = append(messages, ChatMessage{Role: RoleUser, Text: message})

	text, err := s.generator.Generate(ctx, Prompt{
		Purpose:           PurposeChat,
		SystemInstruction: ChatSystemInstruction,
		Messages:          messages,
	})
	if err != nil {
		s.fail(ctx, "chat", reasonOf(err), err)
		return ChatFailureFallback
	}
	if strings.TrimSpace(text) == "" {
		s.fail(ctx, "chat", "empty", nil)
		return ChatEmptyFallback
	}
	return text
}

func (s *Service) adviceContext(ctx context.Context) (string, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return "", fmt.Errorf("load products: %w", err)
	}
	sales, err := s.sales.FindRecent(ctx, s.recentSales)
	if err != nil {
		return "", fmt.Errorf("load recent sales: %w", err)
	}

	inventory := make([]inventoryLine, len(products))
	for i, p := range products {
		inventory[i] = inventoryLine{Name: p.Name, Qty: p.Quantity, Threshold: p.LowStockThreshold}
	}

	// FindRecent is newest first; the context reads oldest first
	recent := make([]saleLine, len(sales))
	for i, sale := range sales {
		recent[len(sales)-1-i] = saleLine{
			Total: sale.TotalAmount,
			Date:  sale.Timestamp.In(s.loc).Format("2006-01-02"),
		}
	}

	inventoryJSON, err := json.Marshal(inventory)
	if err != nil {
		return "", err
	}
	salesJSON, err := json.Marshal(recent)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("\nCurrent Inventory: %s\nRecent Sales: %s\n", inventoryJSON, salesJSON), nil
}

func (s *Service) fail(ctx context.Context, operation, reason string, err error) {
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	s.logger.Warn("Advisor fell back to fixed reply", fields...)
	if s.failures != nil {
		s.failures.RecordAdvisorFailure(ctx, operation, reason)
	}
}

// Disabler is implemented by errors that mean no backend is configured
type Disabler interface {
	Disabled() bool
}

func reasonOf(err error) string {
	var d Disabler
	switch {
	case errors.As(err, &d) && d.Disabled():
		return "disabled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
