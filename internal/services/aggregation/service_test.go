package aggregation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"invoice-payment-ledger/internal/models"
	"invoice-payment-ledger/internal/repository"
	"invoice-payment-ledger/internal/services/ledger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open db")
	require.NoError(t, db.AutoMigrate(&models.Invoice{}, &models.Payment{}), "migrate")
	return db
}

func newTestServices(db *gorm.DB) (*Service, *ledger.Service) {
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	return NewService(invoiceRepo, paymentRepo, zerolog.Nop()),
		ledger.NewService(invoiceRepo, paymentRepo, zerolog.Nop())
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func seedInvoice(t *testing.T, db *gorm.DB, userID uuid.UUID, total string) *models.Invoice {
	t.Helper()
	invoice := &models.Invoice{
		ID:            uuid.New(),
		UserID:        userID,
		InvoiceNumber: uuid.New().String(),
		CustomerName:  "ClientCo",
		Total:         mustDecimal(t, total),
		AmountPaid:    decimal.Zero,
		Currency:      "USD",
		Status:        models.StatusSent,
		DueDate:       time.Now().AddDate(0, 0, 30),
		CreatedAt:     time.Now(),
	}
	require.NoError(t, db.Create(invoice).Error, "seed invoice")
	return invoice
}

func pay(t *testing.T, svc *ledger.Service, invoiceID, userID uuid.UUID, amount string, method models.PaymentMethod) {
	t.Helper()
	_, err := svc.RecordPayment(context.Background(), ledger.RecordPaymentInput{
		InvoiceID:   invoiceID,
		UserID:      userID,
		Amount:      mustDecimal(t, amount),
		Currency:    "USD",
		Method:      method,
		PaymentDate: time.Now(),
	})
	require.NoError(t, err)
}

func TestGetTotalPaid(t *testing.T) {
	db := setupTestDB(t)
	agg, led := newTestServices(db)
	userID := uuid.New()
	invoice := seedInvoice(t, db, userID, "100.00")

	pay(t, led, invoice.ID, userID, "30.00", models.MethodManual)
	pay(t, led, invoice.ID, userID, "20.00", models.MethodCash)

	total, err := agg.GetTotalPaid(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(mustDecimal(t, "50.00")), "total %s", total)
}

func TestGetTotalPaidIgnoresNonCompleted(t *testing.T) {
	db := setupTestDB(t)
	agg, led := newTestServices(db)
	userID := uuid.New()
	invoice := seedInvoice(t, db, userID, "100.00")

	pay(t, led, invoice.ID, userID, "30.00", models.MethodManual)

	// a refunded row must not count
	refunded := &models.Payment{
		ID:          uuid.New(),
		InvoiceID:   invoice.ID,
		UserID:      userID,
		Amount:      mustDecimal(t, "99.00"),
		Currency:    "USD",
		Method:      models.MethodStripe,
		Status:      models.PaymentRefunded,
		PaymentDate: time.Now(),
		CreatedAt:   time.Now(),
	}
	require.NoError(t, db.Create(refunded).Error)

	total, err := agg.GetTotalPaid(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(mustDecimal(t, "30.00")), "total %s", total)
}

func TestGetBulkPaymentTotals(t *testing.T) {
	db := setupTestDB(t)
	agg, led := newTestServices(db)
	userID := uuid.New()

	a := seedInvoice(t, db, userID, "100.00")
	b := seedInvoice(t, db, userID, "200.00")
	c := seedInvoice(t, db, userID, "300.00")

	pay(t, led, a.ID, userID, "10.00", models.MethodManual)
	pay(t, led, a.ID, userID, "20.00", models.MethodManual)
	pay(t, led, c.ID, userID, "300.00", models.MethodBankTransfer)

	totals, err := agg.GetBulkPaymentTotals(context.Background(), []uuid.UUID{a.ID, b.ID, c.ID})
	require.NoError(t, err)
	require.Len(t, totals, 3)

	assert.True(t, totals[a.ID].Equal(mustDecimal(t, "30.00")))
	assert.True(t, totals[b.ID].IsZero(), "invoice with no payments must be present as zero")
	assert.True(t, totals[c.ID].Equal(mustDecimal(t, "300.00")))

	// bulk must agree with the per-invoice query
	for _, id := range []uuid.UUID{a.ID, b.ID, c.ID} {
		single, err := agg.GetTotalPaid(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, totals[id].Equal(single), "bulk/single mismatch for %s", id)
	}
}

func TestGetBulkPaymentTotalsEmpty(t *testing.T) {
	db := setupTestDB(t)
	agg, _ := newTestServices(db)

	totals, err := agg.GetBulkPaymentTotals(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestGetSummary(t *testing.T) {
	db := setupTestDB(t)
	agg, led := newTestServices(db)
	userID := uuid.New()
	invoice := seedInvoice(t, db, userID, "100.00")

	pay(t, led, invoice.ID, userID, "40.00", models.MethodManual)

	summary, err := agg.GetSummary(context.Background(), invoice.ID, userID)
	require.NoError(t, err)

	assert.True(t, summary.Total.Equal(mustDecimal(t, "100.00")))
	assert.True(t, summary.TotalPaid.Equal(mustDecimal(t, "40.00")))
	assert.True(t, summary.Remaining.Equal(mustDecimal(t, "60.00")))
	assert.False(t, summary.IsFullyPaid)
	assert.True(t, summary.IsPartiallyPaid)
	assert.Len(t, summary.Payments, 1)

	pay(t, led, invoice.ID, userID, "70.00", models.MethodStripe)

	summary, err = agg.GetSummary(context.Background(), invoice.ID, userID)
	require.NoError(t, err)
	assert.True(t, summary.IsFullyPaid)
	assert.False(t, summary.IsPartiallyPaid)
	assert.True(t, summary.Remaining.IsZero(), "remaining clamps at zero on overpayment")
	assert.Len(t, summary.Payments, 2)
}

func TestGetSummaryNotFound(t *testing.T) {
	db := setupTestDB(t)
	agg, _ := newTestServices(db)
	userID := uuid.New()
	invoice := seedInvoice(t, db, userID, "100.00")

	_, err := agg.GetSummary(context.Background(), invoice.ID, uuid.New())
	require.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = agg.GetSummary(context.Background(), uuid.New(), userID)
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestGetPaymentStats(t *testing.T) {
	db := setupTestDB(t)
	agg, led := newTestServices(db)
	userID := uuid.New()
	other := uuid.New()

	a := seedInvoice(t, db, userID, "500.00")
	b := seedInvoice(t, db, other, "500.00")

	pay(t, led, a.ID, userID, "100.00", models.MethodStripe)
	pay(t, led, a.ID, userID, "50.00", models.MethodStripe)
	pay(t, led, a.ID, userID, "25.00", models.MethodCash)
	pay(t, led, b.ID, other, "999.00", models.MethodCrypto)

	stats, err := agg.GetPaymentStats(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, stats.TotalAmount.Equal(mustDecimal(t, "175.00")), "other users' payments must not leak in, got %s", stats.TotalAmount)
	assert.Equal(t, int64(3), stats.TotalCount)
	require.Len(t, stats.ByMethod, 2)

	byMethod := map[models.PaymentMethod]repository.MethodTotal{}
	for _, row := range stats.ByMethod {
		byMethod[row.Method] = row
	}
	assert.True(t, byMethod[models.MethodStripe].Total.Equal(mustDecimal(t, "150.00")))
	assert.Equal(t, int64(2), byMethod[models.MethodStripe].Count)
	assert.True(t, byMethod[models.MethodCash].Total.Equal(mustDecimal(t, "25.00")))
}

func TestCheckDrift(t *testing.T) {
	db := setupTestDB(t)
	agg, led := newTestServices(db)
	userID := uuid.New()
	invoice := seedInvoice(t, db, userID, "100.00")

	pay(t, led, invoice.ID, userID, "60.00", models.MethodManual)

	drift, err := agg.CheckDrift(context.Background(), invoice.ID, userID)
	require.NoError(t, err)
	assert.True(t, drift.IsZero(), "ledger writes must leave zero drift, got %s", drift)

	// corrupt the cached column behind the ledger's back
	require.NoError(t, db.Model(&models.Invoice{}).
		Where("id = ?", invoice.ID).
		Update("amount_paid", mustDecimal(t, "75.00")).Error)

	drift, err = agg.CheckDrift(context.Background(), invoice.ID, userID)
	require.NoError(t, err)
	assert.True(t, drift.Equal(mustDecimal(t, "15.00")), "drift %s", drift)
}
