package aggregation

import (
	"context"
	"errors"

	"invoice-payment-ledger/internal/models"
	"invoice-payment-ledger/internal/repository"
	"invoice-payment-ledger/internal/services/ledger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service answers read-side questions about payments. It recomputes from the
// payments table rather than trusting invoice.amount_paid, which makes it
// usable as a drift check against the cached column.
type Service struct {
	invoiceRepo *repository.InvoiceRepository
	paymentRepo *repository.PaymentRepository
	db          *gorm.DB
	log         zerolog.Logger
}

func NewService(
	invoiceRepo *repository.InvoiceRepository,
	paymentRepo *repository.PaymentRepository,
	log zerolog.Logger,
) *Service {
	return &Service{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		db:          invoiceRepo.DB(),
		log:         log.With().Str("component", "aggregation").Logger(),
	}
}

// GetTotalPaid sums completed payments for one invoice.
func (s *Service) GetTotalPaid(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	return s.paymentRepo.SumCompleted(invoiceID)
}

// GetBulkPaymentTotals answers per-invoice totals for a list of invoices in
// one grouped query, so list screens never issue one query per row. Ids
// without completed payments map to zero.
func (s *Service) GetBulkPaymentTotals(ctx context.Context, invoiceIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	return s.paymentRepo.SumByInvoices(invoiceIDs)
}

type Summary struct {
	InvoiceID       uuid.UUID            `json:"invoice_id"`
	Status          models.InvoiceStatus `json:"status"`
	Currency        string               `json:"currency"`
	Total           decimal.Decimal      `json:"total"`
	TotalPaid       decimal.Decimal      `json:"total_paid"`
	Remaining       decimal.Decimal      `json:"remaining"`
	IsFullyPaid     bool                 `json:"is_fully_paid"`
	IsPartiallyPaid bool                 `json:"is_partially_paid"`
	Payments        []models.Payment     `json:"payments"`
}

// GetSummary builds the per-invoice payment view, recomputed from the
// payments table.
func (s *Service) GetSummary(ctx context.Context, invoiceID, userID uuid.UUID) (*Summary, error) {
	invoice, err := s.invoiceRepo.GetByIDForUser(invoiceID, userID)
	if errors.Is(err, repository.ErrInvoiceNotFound) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	totalPaid, err := s.paymentRepo.SumCompleted(invoiceID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListByInvoice(invoiceID)
	if err != nil {
		return nil, err
	}

	remaining := invoice.Total.Sub(totalPaid)
	if remaining.Sign() < 0 {
		remaining = decimal.Zero
	}

	return &Summary{
		InvoiceID:       invoice.ID,
		Status:          invoice.Status,
		Currency:        invoice.Currency,
		Total:           invoice.Total,
		TotalPaid:       totalPaid,
		Remaining:       remaining,
		IsFullyPaid:     totalPaid.GreaterThanOrEqual(invoice.Total),
		IsPartiallyPaid: totalPaid.Sign() > 0 && remaining.Sign() > 0,
		Payments:        payments,
	}, nil
}

type Stats struct {
	TotalAmount decimal.Decimal          `json:"total_amount"`
	TotalCount  int64                    `json:"total_count"`
	ByMethod    []repository.MethodTotal `json:"by_method"`
}

// GetPaymentStats aggregates a user's completed payments grouped by method.
// Pure read, no locking; an in-flight payment may or may not show up.
func (s *Service) GetPaymentStats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	rows, err := s.paymentRepo.SumByUserByMethod(userID)
	if err != nil {
		return nil, err
	}

	stats := Stats{TotalAmount: decimal.Zero, ByMethod: rows}
	for _, r := range rows {
		stats.TotalAmount = stats.TotalAmount.Add(r.Total)
		stats.TotalCount += r.Count
	}
	return &stats, nil
}

// CheckDrift compares the cached invoice.amount_paid against the recomputed
// sum of completed payments. Zero drift is the invariant; anything else is
// logged and returned for repair tooling.
func (s *Service) CheckDrift(ctx context.Context, invoiceID, userID uuid.UUID) (decimal.Decimal, error) {
	invoice, err := s.invoiceRepo.GetByIDForUser(invoiceID, userID)
	if errors.Is(err, repository.ErrInvoiceNotFound) {
		return decimal.Zero, ledger.ErrNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}

	actual, err := s.paymentRepo.SumCompleted(invoiceID)
	if err != nil {
		return decimal.Zero, err
	}

	drift := invoice.AmountPaid.Sub(actual)
	if !drift.IsZero() {
		s.log.Warn().
			Str("invoice_id", invoiceID.String()).
			Str("cached", invoice.AmountPaid.String()).
			Str("actual", actual.String()).
			Msg("amount_paid drift detected")
	}
	return drift, nil
}
