// Package ledger is the receiving end of invoice sync: the stand-in accounting system.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/sparkleclean-booking/internal/bookings"
	"github.com/ariefcatur/sparkleclean-booking/internal/invoices"
	kafkax "github.com/ariefcatur/sparkleclean-booking/internal/kafka"
	"github.com/ariefcatur/sparkleclean-booking/internal/logging"
	"github.com/ariefcatur/sparkleclean-booking/internal/redisx"
)

type Service struct {
	rdb    redis.Cmdable
	logger *logging.Logger
	name   string
}

func NewService(rdb redis.Cmdable, name string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if name == "" {
		name = "ledger"
	}
	return &Service{rdb: rdb, logger: logger, name: name}
}

// HandleInvoiceSent is the Kafka handler for the invoice.sent topic.
// Messages whose x-event-type header names another event are skipped without decoding.
func (s *Service) HandleInvoiceSent(ctx context.Context, m kafkago.Message) error {
	if et, ok := kafkax.HeaderValue(m.Headers, "x-event-type"); ok && et != bookings.EventInvoiceSent {
		return nil
	}
	env, err := kafkax.DecodeEnvelope(m.Value)
	if err != nil {
		return err
	}
	if env.EventType != bookings.EventInvoiceSent {
		return nil
	}
	inv, err := kafkax.UnwrapPayload[invoices.Invoice](env.Payload)
	if err != nil {
		return err
	}
	return s.receive(ctx, env.EventID, inv)
}

// HandleDelivery is the AMQP handler; the body is the bare invoice.
func (s *Service) HandleDelivery(ctx context.Context, d amqp.Delivery) error {
	var inv invoices.Invoice
	if err := json.Unmarshal(d.Body, &inv); err != nil {
		return fmt.Errorf("decode invoice: %w", err)
	}
	return s.receive(ctx, inv.InvoiceID, inv)
}

func (s *Service) receive(ctx context.Context, dedupID string, inv invoices.Invoice) error {
	if inv.InvoiceID == "" {
		return fmt.Errorf("ledger: invoice without id (booking %d)", inv.BookingID)
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.name, dedupID)
	first, err := s.rdb.SetNX(ctx, dkey, "1", redisx.TTLDedup).Result()
	if err != nil {
		return fmt.Errorf("ledger: dedup: %w", err)
	}
	if !first {
		s.logger.Debug("duplicate invoice event ignored", "dedup_id", dedupID)
		return nil
	}

	b, err := json.Marshal(inv)
	if err != nil {
		_ = s.rdb.Del(ctx, dkey).Err()
		return err
	}
	if err := s.rdb.HSet(ctx, redisx.KeyLedgerInvoices, inv.InvoiceID, b).Err(); err != nil {
		// let a redelivery try again
		_ = s.rdb.Del(ctx, dkey).Err()
		return fmt.Errorf("ledger: record %s: %w", inv.InvoiceID, err)
	}

	s.logger.Info("invoice recorded",
		"invoice_id", inv.InvoiceID,
		"booking_id", inv.BookingID,
		"customer", inv.Customer.Name,
		"service", inv.Service,
		"amount", inv.Amount,
	)
	return nil
}

// Entries lists recorded invoices, oldest first.
func (s *Service) Entries(ctx context.Context) ([]invoices.Invoice, error) {
	all, err := s.rdb.HGetAll(ctx, redisx.KeyLedgerInvoices).Result()
	if err != nil {
		return nil, fmt.Errorf("ledger: list: %w", err)
	}
	out := make([]invoices.Invoice, 0, len(all))
	for id, raw := range all {
		var inv invoices.Invoice
		if err := json.Unmarshal([]byte(raw), &inv); err != nil {
			return nil, fmt.Errorf("ledger: decode %s: %w", id, err)
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateSent.Equal(out[j].DateSent) {
			return out[i].DateSent.Before(out[j].DateSent)
		}
		return out[i].InvoiceID < out[j].InvoiceID
	})
	return out, nil
}
