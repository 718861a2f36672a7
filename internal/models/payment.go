package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentMethod string

const (
	MethodStripe       PaymentMethod = "stripe"
	MethodManual       PaymentMethod = "manual"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheck        PaymentMethod = "check"
	MethodCash         PaymentMethod = "cash"
	MethodCrypto       PaymentMethod = "crypto"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodStripe, MethodManual, MethodBankTransfer, MethodCheck, MethodCash, MethodCrypto:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;index"`
	UserID      uuid.UUID       `gorm:"type:uuid;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,6)"`
	Currency    string          `gorm:"size:3"`
	Method      PaymentMethod   `gorm:"index"`
	Status      PaymentStatus   `gorm:"index"`
	ExternalRef *string
	// Gateway intent ids, crypto network and tx hash. Provenance only,
	// never read back for arithmetic.
	Metadata    datatypes.JSON
	PaymentDate time.Time `gorm:"column:payment_date"`
	CreatedAt   time.Time
}
