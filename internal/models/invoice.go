package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	StatusDraft    InvoiceStatus = "draft"
	StatusSent     InvoiceStatus = "sent"
	StatusViewed   InvoiceStatus = "viewed"
	StatusPaid     InvoiceStatus = "paid"
	StatusOverdue  InvoiceStatus = "overdue"
	StatusCanceled InvoiceStatus = "canceled"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusViewed, StatusPaid, StatusOverdue, StatusCanceled:
		return true
	}
	return false
}

type Invoice struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;index"`
	InvoiceNumber string    `gorm:"uniqueIndex"`
	CustomerName  string    `gorm:"index"`
	CustomerEmail string
	Total         decimal.Decimal `gorm:"type:decimal(18,6)"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(18,6)"`
	Currency      string          `gorm:"size:3"`
	Status        InvoiceStatus   `gorm:"index"`
	DueDate       time.Time
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
