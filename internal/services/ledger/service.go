package ledger

import (
	"context"
	"encoding/json"
	"time"

	"invoice-payment-ledger/internal/models"
	"invoice-payment-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

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
		log:         log.With().Str("component", "ledger").Logger(),
	}
}

type RecordPaymentInput struct {
	InvoiceID   uuid.UUID
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Currency    string
	Method      models.PaymentMethod
	PaymentDate time.Time
	ExternalRef *string
	Metadata    map[string]interface{}
}

type RecordPaymentResult struct {
	Payment       *models.Payment      `json:"payment"`
	InvoiceStatus models.InvoiceStatus `json:"invoice_status"`
	AmountPaid    decimal.Decimal      `json:"amount_paid"`
	AmountDue     decimal.Decimal      `json:"amount_due"`
	Overpayment   decimal.Decimal      `json:"overpayment"`
}

// RecordPayment appends one completed payment and recomputes the invoice's
// paid amount and status, in a single transaction. The invoice row is read
// with an exclusive lock so two simultaneous payments never both compute
// from the same stale amount_paid.
//
// A payment that pushes amount_paid past the total is recorded in full; the
// excess comes back in Overpayment and is never clamped or rejected.
func (s *Service) RecordPayment(ctx context.Context, in RecordPaymentInput) (*RecordPaymentResult, error) {
	if in.Amount.Sign() <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if !in.Method.Valid() {
		return nil, &ValidationError{Field: "method", Reason: "unknown payment method"}
	}

	var metadata []byte
	if len(in.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(in.Metadata)
		if err != nil {
			return nil, &ValidationError{Field: "metadata", Reason: "not serializable"}
		}
	}

	if in.PaymentDate.IsZero() {
		in.PaymentDate = time.Now().UTC()
	}

	var result RecordPaymentResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.invoiceRepo.GetForUpdate(tx, in.InvoiceID, in.UserID)
		if err != nil {
			return err
		}

		newAmountPaid := invoice.AmountPaid.Add(in.Amount)
		fullyPaid := newAmountPaid.GreaterThanOrEqual(invoice.Total)

		overpayment := decimal.Zero
		if newAmountPaid.GreaterThan(invoice.Total) {
			overpayment = newAmountPaid.Sub(invoice.Total)
		}

		newStatus := models.NextStatus(invoice.Status, fullyPaid)

		payment := &models.Payment{
			ID:          uuid.New(),
			InvoiceID:   invoice.ID,
			UserID:      in.UserID,
			Amount:      in.Amount,
			Currency:    in.Currency,
			Method:      in.Method,
			Status:      models.PaymentCompleted,
			ExternalRef: in.ExternalRef,
			Metadata:    metadata,
			PaymentDate: in.PaymentDate,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.paymentRepo.Insert(tx, payment); err != nil {
			return err
		}

		fields := map[string]interface{}{
			"amount_paid": newAmountPaid,
			"status":      newStatus,
		}
		// Stamp paid_at only on the transition into paid. A later
		// overpayment against an already-paid invoice leaves it alone.
		if newStatus == models.StatusPaid && invoice.PaidAt == nil {
			fields["paid_at"] = time.Now().UTC()
		}
		if err := s.invoiceRepo.UpdatePaymentState(tx, invoice.ID, fields); err != nil {
			return err
		}

		amountDue := invoice.Total.Sub(newAmountPaid)
		if amountDue.Sign() < 0 {
			amountDue = decimal.Zero
		}

		result = RecordPaymentResult{
			Payment:       payment,
			InvoiceStatus: newStatus,
			AmountPaid:    newAmountPaid,
			AmountDue:     amountDue,
			Overpayment:   overpayment,
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.log.Info().
		Str("invoice_id", in.InvoiceID.String()).
		Str("payment_id", result.Payment.ID.String()).
		Str("method", string(in.Method)).
		Str("amount", in.Amount.String()).
		Str("status", string(result.InvoiceStatus)).
		Msg("payment recorded")

	return &result, nil
}

func (s *Service) InvoiceRepo() *repository.InvoiceRepository {
	return s.invoiceRepo
}

func (s *Service) PaymentRepo() *repository.PaymentRepository {
	return s.paymentRepo
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
