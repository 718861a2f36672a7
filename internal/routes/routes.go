package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	handler "invoice-payment-ledger/internal/handlers"
	"invoice-payment-ledger/internal/repository"
	"invoice-payment-ledger/internal/services/aggregation"
	"invoice-payment-ledger/internal/services/ledger"
	"invoice-payment-ledger/internal/services/partial"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, log zerolog.Logger) {
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	ledgerSvc := ledger.NewService(invoiceRepo, paymentRepo, log)
	aggregationSvc := aggregation.NewService(invoiceRepo, paymentRepo, log)
	partialSvc := partial.NewService(ledgerSvc)

	paymentHandler := handler.NewPaymentHandler(ledgerSvc, aggregationSvc, partialSvc)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Invoice routes
	invoices := api.Group("/invoices")
	{
		invoices.POST("", paymentHandler.CreateInvoice)
		invoices.GET("", paymentHandler.ListInvoices)
		invoices.GET("/:id/summary", paymentHandler.GetSummary)
		invoices.POST("/:id/payments", paymentHandler.RecordPayment)
		invoices.POST("/:id/payments/partial", paymentHandler.RecordPartialPayment)
	}

	// Payment aggregate routes
	payments := api.Group("/payments")
	{
		payments.POST("/totals", paymentHandler.BulkPaymentTotals)
		payments.GET("/stats", paymentHandler.GetPaymentStats)
	}
}
