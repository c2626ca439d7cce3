package bookings

import "strconv"

const (
	TopicPaymentAuthorized = "booking.payment.authorized"
	TopicPaymentFailed     = "booking.payment.failed"
	TopicInvoiceSent       = "invoice.sent"
)

// PartitionKey keeps every event of one booking on the same partition.
func PartitionKey(bookingID int64) []byte {
	return []byte(strconv.FormatInt(bookingID, 10))
}
