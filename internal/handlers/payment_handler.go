package handlers

import (
	"errors"
	"net/http"
	"time"

	"invoice-payment-ledger/internal/models"
	"invoice-payment-ledger/internal/services/aggregation"
	"invoice-payment-ledger/internal/services/ledger"
	"invoice-payment-ledger/internal/services/partial"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	ledger      *ledger.Service
	aggregation *aggregation.Service
	partial     *partial.Service
}

func NewPaymentHandler(
	ledgerSvc *ledger.Service,
	aggregationSvc *aggregation.Service,
	partialSvc *partial.Service,
) *PaymentHandler {
	return &PaymentHandler{
		ledger:      ledgerSvc,
		aggregation: aggregationSvc,
		partial:     partialSvc,
	}
}

// userID reads the tenant scope from the X-User-ID header. Authentication
// itself lives in front of this service.
func userID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetHeader("X-User-ID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid X-User-ID header"})
		return uuid.Nil, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	var ve *ledger.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ve.Error()})
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
	case errors.Is(err, ledger.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflicting payment in progress, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *PaymentHandler) CreateInvoice(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var payload struct {
		InvoiceNumber string          `json:"invoice_number"` // optional
		CustomerName  string          `json:"customer_name"`
		CustomerEmail string          `json:"customer_email"`
		Total         decimal.Decimal `json:"total"`
		Currency      string          `json:"currency"`
		Status        string          `json:"status"`
		DueDate       string          `json:"due_date"` // "dd-mm-yyyy"
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if payload.CustomerName == "" || payload.Total.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer name or total"})
		return
	}

	status := models.InvoiceStatus(payload.Status)
	if payload.Status == "" {
		status = models.StatusDraft
	}
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	dueDate, err := time.Parse("02-01-2006", payload.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due date format, expected dd-mm-yyyy"})
		return
	}

	invoiceNumber := payload.InvoiceNumber
	if invoiceNumber == "" {
		invoiceNumber = uuid.New().String()
	}
	currency := payload.Currency
	if currency == "" {
		currency = "USD"
	}

	invoice := &models.Invoice{
		ID:            uuid.New(),
		UserID:        uid,
		InvoiceNumber: invoiceNumber,
		CustomerName:  payload.CustomerName,
		CustomerEmail: payload.CustomerEmail,
		Total:         payload.Total,
		AmountPaid:    decimal.Zero,
		Currency:      currency,
		Status:        status,
		DueDate:       dueDate,
		CreatedAt:     time.Now(),
	}
	if err := h.ledger.InvoiceRepo().Create(invoice); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "invoice created", "invoice": invoice})
}

// ListInvoices used for admin manual search with optional filters
func (h *PaymentHandler) ListInvoices(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var statuses []models.InvoiceStatus
	if raw := c.Query("status"); raw != "" && raw != "all" {
		status := models.InvoiceStatus(raw)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
		statuses = append(statuses, status)
	}

	invoices, err := h.ledger.InvoiceRepo().SearchInvoices(uid, c.Query("q"), statuses)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID"})
		return
	}

	var payload struct {
		Amount      decimal.Decimal        `json:"amount"`
		Currency    string                 `json:"currency"`
		Method      string                 `json:"method"`
		PaymentDate string                 `json:"payment_date"` // RFC3339, optional
		ExternalRef *string                `json:"external_ref"`
		Metadata    map[string]interface{} `json:"metadata"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var paymentDate time.Time
	if payload.PaymentDate != "" {
		paymentDate, err = time.Parse(time.RFC3339, payload.PaymentDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment_date, expected RFC3339"})
			return
		}
	}

	result, err := h.ledger.RecordPayment(c.Request.Context(), ledger.RecordPaymentInput{
		InvoiceID:   invoiceID,
		UserID:      uid,
		Amount:      payload.Amount,
		Currency:    payload.Currency,
		Method:      models.PaymentMethod(payload.Method),
		PaymentDate: paymentDate,
		ExternalRef: payload.ExternalRef,
		Metadata:    payload.Metadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *PaymentHandler) RecordPartialPayment(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID"})
		return
	}

	var payload struct {
		Amount        decimal.Decimal `json:"amount"`
		Currency      string          `json:"currency"`
		Method        string          `json:"method"`
		PaymentDate   string          `json:"payment_date"` // RFC3339, optional
		Note          string          `json:"note"`
		ExternalRef   *string         `json:"external_ref"`
		CryptoNetwork string          `json:"crypto_network"`
		CryptoTxHash  string          `json:"crypto_tx_hash"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var paymentDate time.Time
	if payload.PaymentDate != "" {
		paymentDate, err = time.Parse(time.RFC3339, payload.PaymentDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment_date, expected RFC3339"})
			return
		}
	}

	result, err := h.partial.Record(c.Request.Context(), partial.Input{
		InvoiceID:     invoiceID,
		UserID:        uid,
		Amount:        payload.Amount,
		Currency:      payload.Currency,
		Method:        models.PaymentMethod(payload.Method),
		PaymentDate:   paymentDate,
		Note:          payload.Note,
		ExternalRef:   payload.ExternalRef,
		CryptoNetwork: payload.CryptoNetwork,
		CryptoTxHash:  payload.CryptoTxHash,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *PaymentHandler) GetSummary(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID"})
		return
	}

	summary, err := h.aggregation.GetSummary(c.Request.Context(), invoiceID, uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *PaymentHandler) BulkPaymentTotals(c *gin.Context) {
	if _, ok := userID(c); !ok {
		return
	}

	var payload struct {
		InvoiceIDs []string `json:"invoice_ids"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ids := make([]uuid.UUID, 0, len(payload.InvoiceIDs))
	for _, raw := range payload.InvoiceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID: " + raw})
			return
		}
		ids = append(ids, id)
	}

	totals, err := h.aggregation.GetBulkPaymentTotals(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make(map[string]decimal.Decimal, len(totals))
	for id, total := range totals {
		out[id.String()] = total
	}
	c.JSON(http.StatusOK, gin.H{"totals": out})
}

func (h *PaymentHandler) GetPaymentStats(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	stats, err := h.aggregation.GetPaymentStats(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
