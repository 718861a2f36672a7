package ledger

import (
	"errors"
	"strings"

	"invoice-payment-ledger/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound covers both a missing invoice and an invoice owned by a
	// different user. Callers cannot tell the two apart.
	ErrNotFound = errors.New("invoice not found")

	// ErrConcurrencyConflict means a lock wait timed out or the transaction
	// lost a serialization race. The write never happened; the caller may
	// retry.
	ErrConcurrencyConflict = errors.New("concurrent payment conflict, retry")
)

// ValidationError rejects a request before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// classify maps store-level failures onto the ledger error taxonomy.
// Anything unrecognized propagates as-is.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrInvoiceNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03", "40001", "40P01": // lock_not_available, serialization_failure, deadlock_detected
			return ErrConcurrencyConflict
		}
	}

	// sqlite busy/locked, seen from the test databases
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked") {
		return ErrConcurrencyConflict
	}

	return err
}
