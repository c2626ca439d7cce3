package redisx

import "time"

const (
	// Whole booking list as one JSON array: sparkleCleanBookings -> [{...}, ...]
	KeyBookings = "sparkleCleanBookings"

	// Booking id counter: sparkleclean:booking:seq -> INCR
	KeyBookingSeq = "sparkleclean:booking:seq"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Ledger of received invoices: hash ledger:invoices {invoice_id -> invoice json}
	KeyLedgerInvoices = "ledger:invoices"
)

var (
	TTLDedup = 48 * time.Hour
)
