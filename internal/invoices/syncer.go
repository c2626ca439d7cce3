package invoices

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ariefcatur/sparkleclean-booking/internal/bookings"
	"github.com/ariefcatur/sparkleclean-booking/internal/logging"
	"github.com/ariefcatur/sparkleclean-booking/internal/metrics"
	"github.com/ariefcatur/sparkleclean-booking/internal/task"
)

var invoicesTracer = otel.Tracer("sparkleclean.internal.invoices")

// ErrNothingToSync is informational: there were no paid bookings to send.
var ErrNothingToSync = errors.New("invoices: no new invoices to sync")

// Publisher delivers one invoice to the accounting side.
type Publisher interface {
	PublishInvoice(ctx context.Context, inv Invoice) error
}

// Source is the part of the booking store the syncer reads.
type Source interface {
	Filter(pred func(bookings.Booking) bool) []bookings.Booking
}

// Syncer sends invoices one at a time after checkout, or in a batch on demand.
// Bookings carry no per-booking sync marker, so every batch resends all paid
// bookings; only the process-wide Synced flag changes.
type Syncer struct {
	pub     Publisher
	delay   time.Duration
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
	now     func() time.Time

	synced atomic.Bool
}

func NewSyncer(pub Publisher, delay time.Duration, logger *logging.Logger, m *metrics.BookingMetrics) *Syncer {
	if pub == nil {
		panic("invoices: publisher required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Syncer{pub: pub, delay: delay, logger: logger, metrics: m, now: time.Now}
}

// SetClock replaces the time source used for DateSent.
func (s *Syncer) SetClock(now func() time.Time) { s.now = now }

// Synced reports whether any invoice has been sent by this process.
func (s *Syncer) Synced() bool { return s.synced.Load() }

// SendSingle publishes the invoice for one booking.
func (s *Syncer) SendSingle(ctx context.Context, b bookings.Booking) (Invoice, error) {
	ctx, span := invoicesTracer.Start(ctx, "invoices.send_single")
	defer span.End()
	span.SetAttributes(attribute.Int64("sparkleclean.booking_id", b.ID))

	inv := NewInvoice(b, s.now())
	if err := s.pub.PublishInvoice(ctx, inv); err != nil {
		span.RecordError(err)
		s.metrics.ObserveInvoices("single", "error", 1)
		return Invoice{}, fmt.Errorf("invoices: send %s: %w", inv.InvoiceID, err)
	}
	s.synced.Store(true)
	s.metrics.ObserveInvoices("single", "ok", 1)
	s.logger.Info("invoice sent",
		"invoice_id", inv.InvoiceID,
		"booking_id", inv.BookingID,
		"customer", inv.Customer.Name,
		"service", inv.Service,
		"amount", inv.Amount,
	)
	return inv, nil
}

// SyncAll sends every paid booking after the configured delay and returns how many
// went out. With nothing to send it returns ErrNothingToSync and does nothing else.
func (s *Syncer) SyncAll(ctx context.Context, src Source) (int, error) {
	ctx, span := invoicesTracer.Start(ctx, "invoices.sync_all")
	defer span.End()

	paid := src.Filter(bookings.Booking.IsPaid)
	if len(paid) == 0 {
		s.logger.Info("no new invoices to sync")
		return 0, ErrNothingToSync
	}
	span.SetAttributes(attribute.Int("sparkleclean.invoice_count", len(paid)))

	if err := task.Sleep(ctx, s.delay); err != nil {
		return 0, err
	}

	sent := 0
	for _, b := range paid {
		inv := NewInvoice(b, s.now())
		if err := s.pub.PublishInvoice(ctx, inv); err != nil {
			span.RecordError(err)
			s.metrics.ObserveInvoices("batch", "ok", sent)
			s.metrics.ObserveInvoices("batch", "error", 1)
			return sent, fmt.Errorf("invoices: sync booking %d: %w", b.ID, err)
		}
		s.logger.Debug("invoice synced", "booking_id", b.ID, "customer", b.CustomerName, "amount", b.Price)
		sent++
	}

	s.synced.Store(true)
	s.metrics.ObserveInvoices("batch", "ok", sent)
	s.logger.Info("invoices synced", "count", sent)
	return sent, nil
}

// SyncAllAsync runs SyncAll as a task.
func (s *Syncer) SyncAllAsync(ctx context.Context, src Source) *task.Task[int] {
	return task.Go(ctx, func(ctx context.Context) (int, error) {
		return s.SyncAll(ctx, src)
	})
}
