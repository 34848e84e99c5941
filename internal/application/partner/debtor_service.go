package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/partner"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DebtorService keeps the credit book
type DebtorService struct {
	debtorRepo partner.DebtorRepository
	logger     *zap.Logger
}

// NewDebtorService creates a new DebtorService
func NewDebtorService(debtorRepo partner.DebtorRepository, logger *zap.Logger) *DebtorService {
	return &DebtorService{
		debtorRepo: debtorRepo,
		logger:     logger,
	}
}

// Create records a debtor with an optional opening balance
func (s *DebtorService) Create(ctx context.Context, req CreateDebtorRequest) (*DebtorResponse, error) {
	amount := decimal.Zero
	if req.Amount != nil {
		amount = *req.Amount
	}
	debtor, err := partner.NewDebtor(req.Name, req.Phone, amount)
	if err != nil {
		return nil, err
	}
	if err := s.debtorRepo.Save(ctx, debtor); err != nil {
		return nil, err
	}

	s.logger.Info("Debtor recorded",
		zap.String("debtor_id", debtor.ID.String()),
		zap.String("amount", debtor.Amount.String()),
	)
	resp := ToDebtorResponse(debtor)
	return &resp, nil
}

// List returns every debtor and the total outstanding
func (s *DebtorService) List(ctx context.Context) (*DebtorListResponse, error) {
	debtors, err := s.debtorRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := &DebtorListResponse{
		Debtors:     make([]DebtorResponse, len(debtors)),
		Outstanding: decimal.Zero,
	}
	for i := range debtors {
		out.Debtors[i] = ToDebtorResponse(&debtors[i])
		out.Outstanding = out.Outstanding.Add(debtors[i].Amount)
	}
	return out, nil
}

// GetByID retrieves a debtor by ID
func (s *DebtorService) GetByID(ctx context.Context, id uuid.UUID) (*DebtorResponse, error) {
	debtor, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToDebtorResponse(debtor)
	return &resp, nil
}

// Charge adds goods taken on credit to the balance
func (s *DebtorService) Charge(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*DebtorResponse, error) {
	return s.change(ctx, id, "charge", amount, (*partner.Debtor).AddCharge)
}

// RecordPayment reduces the balance; overpayment fails with
// INSUFFICIENT_BALANCE
func (s *DebtorService) RecordPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*DebtorResponse, error) {
	return s.change(ctx, id, "payment", amount, (*partner.Debtor).RecordPayment)
}

func (s *DebtorService) change(
	ctx context.Context,
	id uuid.UUID,
	kind string,
	amount decimal.Decimal,
	apply func(*partner.Debtor, decimal.Decimal) error,
) (*DebtorResponse, error) {
	debtor, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(debtor, amount); err != nil {
		return nil, err
	}
	if err := s.debtorRepo.Save(ctx, debtor); err != nil {
		return nil, err
	}

	s.logger.Info("Debtor balance changed",
		zap.String("debtor_id", debtor.ID.String()),
		zap.String("kind", kind),
		zap.String("amount", amount.String()),
		zap.String("balance", debtor.Amount.String()),
	)
	resp := ToDebtorResponse(debtor)
	return &resp, nil
}

// Delete removes a debtor
func (s *DebtorService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.mustFind(ctx, id); err != nil {
		return err
	}
	return s.debtorRepo.Delete(ctx, id)
}

func (s *DebtorService) mustFind(ctx context.Context, id uuid.UUID) (*partner.Debtor, error) {
	debtor, found, err := s.debtorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, shared.NewDomainError("NOT_FOUND", "Debtor not found")
	}
	return debtor, nil
}
