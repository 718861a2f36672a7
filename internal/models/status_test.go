package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatusMatrix(t *testing.T) {
	cases := []struct {
		current   InvoiceStatus
		fullyPaid bool
		want      InvoiceStatus
	}{
		{StatusDraft, false, StatusDraft},
		{StatusDraft, true, StatusPaid},
		{StatusSent, false, StatusSent},
		{StatusSent, true, StatusPaid},
		{StatusViewed, false, StatusViewed},
		{StatusViewed, true, StatusPaid},
		{StatusOverdue, false, StatusOverdue},
		{StatusOverdue, true, StatusPaid},
		{StatusPaid, false, StatusPaid},
		{StatusPaid, true, StatusPaid},
		{StatusCanceled, false, StatusCanceled},
		{StatusCanceled, true, StatusCanceled},
	}

	for _, c := range cases {
		got := NextStatus(c.current, c.fullyPaid)
		assert.Equal(t, c.want, got, "NextStatus(%s, %v)", c.current, c.fullyPaid)
	}
}

func TestInvoiceStatusValid(t *testing.T) {
	for _, s := range []InvoiceStatus{StatusDraft, StatusSent, StatusViewed, StatusPaid, StatusOverdue, StatusCanceled} {
		assert.True(t, s.Valid(), "%s should be valid", s)
	}
	assert.False(t, InvoiceStatus("archived").Valid())
	assert.False(t, InvoiceStatus("").Valid())
}

func TestPaymentMethodValid(t *testing.T) {
	for _, m := range []PaymentMethod{MethodStripe, MethodManual, MethodBankTransfer, MethodCheck, MethodCash, MethodCrypto} {
		assert.True(t, m.Valid(), "%s should be valid", m)
	}
	assert.False(t, PaymentMethod("paypal").Valid())
	assert.False(t, PaymentMethod("").Valid())
}
