package partial

import (
	"context"
	"errors"
	"time"

	"invoice-payment-ledger/internal/models"
	"invoice-payment-ledger/internal/repository"
	"invoice-payment-ledger/internal/services/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is the manual/partial payment entry point used by recording UIs.
// It layers a friendlier pre-check on top of the ledger: amounts above the
// currently-known remaining balance are rejected before any transaction
// opens. The check reads a snapshot and can go stale under a race; the
// ledger stays the source of truth and will happily record an overpayment
// that slips past it.
type Service struct {
	ledger *ledger.Service
}

func NewService(ledgerSvc *ledger.Service) *Service {
	return &Service{ledger: ledgerSvc}
}

type Input struct {
	InvoiceID     uuid.UUID
	UserID        uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	Method        models.PaymentMethod
	PaymentDate   time.Time
	Note          string
	ExternalRef   *string
	CryptoNetwork string
	CryptoTxHash  string
}

type Result struct {
	Payment   *models.Payment      `json:"payment"`
	NewStatus models.InvoiceStatus `json:"new_status"`
	Remaining decimal.Decimal      `json:"remaining"`
}

// Record validates against the known remaining balance, then delegates to
// the ledger.
func (s *Service) Record(ctx context.Context, in Input) (*Result, error) {
	if in.Amount.Sign() <= 0 {
		return nil, &ledger.ValidationError{Field: "amount", Reason: "must be positive"}
	}

	invoice, err := s.ledger.InvoiceRepo().GetByIDForUser(in.InvoiceID, in.UserID)
	if errors.Is(err, repository.ErrInvoiceNotFound) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	known := invoice.Total.Sub(invoice.AmountPaid)
	if known.Sign() < 0 {
		known = decimal.Zero
	}
	if in.Amount.GreaterThan(known) {
		return nil, &ledger.ValidationError{
			Field:  "amount",
			Reason: "exceeds remaining balance of " + known.String(),
		}
	}

	metadata := map[string]interface{}{}
	if in.Note != "" {
		metadata["note"] = in.Note
	}
	if in.Method == models.MethodCrypto {
		if in.CryptoNetwork != "" {
			metadata["crypto_network"] = in.CryptoNetwork
		}
		if in.CryptoTxHash != "" {
			metadata["crypto_tx_hash"] = in.CryptoTxHash
		}
	}

	res, err := s.ledger.RecordPayment(ctx, ledger.RecordPaymentInput{
		InvoiceID:   in.InvoiceID,
		UserID:      in.UserID,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Method:      in.Method,
		PaymentDate: in.PaymentDate,
		ExternalRef: in.ExternalRef,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Payment:   res.Payment,
		NewStatus: res.InvoiceStatus,
		Remaining: res.AmountDue,
	}, nil
}
