package models

// NextStatus decides the invoice status after a payment lands.
//
// A payment short of the total never moves the status: overdue-ness is a
// time-based concern owned elsewhere, and a partially paid draft stays a
// draft. A full payment moves any payable status to paid; paid and canceled
// never transition again, so a duplicate webhook replay is a no-op here.
func NextStatus(current InvoiceStatus, fullyPaid bool) InvoiceStatus {
	if !fullyPaid {
		return current
	}
	switch current {
	case StatusDraft, StatusSent, StatusViewed, StatusOverdue:
		return StatusPaid
	case StatusPaid, StatusCanceled:
		return current
	default:
		return current
	}
}
