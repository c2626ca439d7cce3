package invoices

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/sparkleclean-booking/internal/bookings"
	"github.com/ariefcatur/sparkleclean-booking/internal/logging"
)

// LogPublisher only writes the invoice to the log. It is the default transport
// when no broker is configured.
type LogPublisher struct {
	Logger *logging.Logger
}

func (p LogPublisher) PublishInvoice(_ context.Context, inv Invoice) error {
	logger := p.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger.Info("invoice sent to accounting",
		"invoice_id", inv.InvoiceID,
		"booking_id", inv.BookingID,
		"customer_email", inv.Customer.Email,
		"service", inv.Service,
		"date", inv.Date,
		"time", inv.Time,
		"amount", inv.Amount,
		"status", inv.Status,
	)
	return nil
}

// Producer is satisfied by *kafka.Producer.
type Producer interface {
	Publish(key, value []byte, headers ...kafkago.Header) error
}

// KafkaPublisher wraps each invoice in an event envelope on the invoice.sent topic.
type KafkaPublisher struct {
	Producer    Producer
	ServiceName string
}

func (p KafkaPublisher) PublishInvoice(_ context.Context, inv Invoice) error {
	payload, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("encode invoice: %w", err)
	}
	env := bookings.Envelope{
		EventID:       uuid.NewString(),
		EventType:     bookings.EventInvoiceSent,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.ServiceName,
		CorrelationID: inv.InvoiceID,
		Payload:       payload,
	}
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return p.Producer.Publish(bookings.PartitionKey(inv.BookingID), b,
		kafkago.Header{Key: "x-event-type", Value: []byte(bookings.EventInvoiceSent)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// JSONPublisher is satisfied by *mq.Publisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// AMQPPublisher sends the bare invoice to a topic exchange with the invoice.sent routing key.
type AMQPPublisher struct {
	Publisher JSONPublisher
}

func (p AMQPPublisher) PublishInvoice(ctx context.Context, inv Invoice) error {
	return p.Publisher.PublishJSON(ctx, bookings.TopicInvoiceSent, inv)
}
