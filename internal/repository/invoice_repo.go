package repository

import (
	"errors"
	"strings"

	"invoice-payment-ledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Expose DB if needed
func (r *InvoiceRepository) DB() *gorm.DB {
	return r.db
}

func (r *InvoiceRepository) Create(invoice *models.Invoice) error {
	return r.db.Create(invoice).Error
}

// GetByIDForUser fetches a single invoice scoped to its owner. A missing row
// and a row owned by someone else both come back as ErrInvoiceNotFound.
func (r *InvoiceRepository) GetByIDForUser(id, userID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.First(&invoice, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetForUpdate reads the invoice row with an exclusive lock inside tx. This
// is the serialization point for concurrent payment recordings: every writer
// on the same invoice queues behind the lock and recomputes from the latest
// committed amount_paid. SQLite has no FOR UPDATE; its single-writer model
// covers the test databases.
func (r *InvoiceRepository) GetForUpdate(tx *gorm.DB, id, userID uuid.UUID) (*models.Invoice, error) {
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var invoice models.Invoice
	err := q.First(&invoice, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdatePaymentState writes the ledger-owned invoice fields within tx.
func (r *InvoiceRepository) UpdatePaymentState(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	return tx.Model(&models.Invoice{}).
		Where("id = ?", id).
		Updates(fields).
		Error
}

// SearchInvoices used for admin manual search with optional filters
func (r *InvoiceRepository) SearchInvoices(userID uuid.UUID, query string, statuses []models.InvoiceStatus) ([]models.Invoice, error) {
	var invoices []models.Invoice

	dbQuery := r.db.Model(&models.Invoice{}).Where("user_id = ?", userID)

	if query != "" {
		dbQuery = dbQuery.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(query)+"%")
	}
	if len(statuses) > 0 {
		dbQuery = dbQuery.Where("status IN ?", statuses)
	}

	err := dbQuery.Find(&invoices).Error
	return invoices, err
}
