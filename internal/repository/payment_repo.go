package repository

import (
	"invoice-payment-ledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) DB() *gorm.DB {
	return r.db
}

// Insert writes the payment row within tx, as part of the same transaction
// that updates the invoice.
func (r *PaymentRepository) Insert(tx *gorm.DB, payment *models.Payment) error {
	return tx.Create(payment).Error
}

func (r *PaymentRepository) ListByInvoice(invoiceID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.
		Where("invoice_id = ?", invoiceID).
		Order("payment_date ASC, created_at ASC").
		Find(&payments).Error
	return payments, err
}

// SumCompleted totals the completed payments for one invoice.
func (r *PaymentRepository) SumCompleted(invoiceID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Sum decimal.Decimal
	}
	err := r.db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) as sum").
		Where("invoice_id = ? AND status = ?", invoiceID, models.PaymentCompleted).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Sum, nil
}

type invoiceSumRow struct {
	InvoiceID uuid.UUID
	Sum       decimal.Decimal
}

// SumByInvoices returns completed-payment totals for many invoices in one
// grouped query. Every requested id is present in the result, zero when the
// invoice has no completed payments.
func (r *PaymentRepository) SumByInvoices(invoiceIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	totals := make(map[uuid.UUID]decimal.Decimal, len(invoiceIDs))
	for _, id := range invoiceIDs {
		totals[id] = decimal.Zero
	}
	if len(invoiceIDs) == 0 {
		return totals, nil
	}

	var rows []invoiceSumRow
	err := r.db.Model(&models.Payment{}).
		Select("invoice_id, COALESCE(SUM(amount), 0) as sum").
		Where("invoice_id IN ? AND status = ?", invoiceIDs, models.PaymentCompleted).
		Group("invoice_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		totals[row.InvoiceID] = row.Sum
	}
	return totals, nil
}

type MethodTotal struct {
	Method models.PaymentMethod `json:"method"`
	Total  decimal.Decimal      `json:"total"`
	Count  int64                `json:"count"`
}

// SumByUserByMethod aggregates a user's completed payments grouped by method.
func (r *PaymentRepository) SumByUserByMethod(userID uuid.UUID) ([]MethodTotal, error) {
	var rows []MethodTotal
	err := r.db.Model(&models.Payment{}).
		Select("method, COALESCE(SUM(amount), 0) as total, COUNT(*) as count").
		Where("user_id = ? AND status = ?", userID, models.PaymentCompleted).
		Group("method").
		Scan(&rows).Error
	return rows, err
}
