// Package checkout drives a booking from draft to paid: it keeps the current draft,
// runs the simulated payment, and on success stores the booking and sends its invoice.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ariefcatur/sparkleclean-booking/internal/bookings"
	"github.com/ariefcatur/sparkleclean-booking/internal/catalog"
	"github.com/ariefcatur/sparkleclean-booking/internal/invoices"
	"github.com/ariefcatur/sparkleclean-booking/internal/logging"
	"github.com/ariefcatur/sparkleclean-booking/internal/metrics"
	"github.com/ariefcatur/sparkleclean-booking/internal/payments"
)

var checkoutTracer = otel.Tracer("sparkleclean.internal.checkout")

// ErrNoDraft means Pay was called before a draft was submitted, or after it was consumed.
var ErrNoDraft = errors.New("checkout: no booking draft in progress")

// ErrPaymentInProgress means another Pay call is still working on the current draft.
var ErrPaymentInProgress = errors.New("checkout: payment already in progress")

// Quote is what the customer sees before paying.
type Quote struct {
	ServiceID   string `json:"serviceId"`
	ServiceName string `json:"serviceName"`
	Price       int    `json:"price"`
}

// Producer is satisfied by *kafka.Producer.
type Producer interface {
	Publish(key, value []byte, headers ...kafkago.Header) error
}

// Deps wires a Service. Authorized, Failed, Metrics and Logger are optional.
type Deps struct {
	Store       *bookings.Store
	IDs         bookings.IDGenerator
	Payments    *payments.Simulator
	Invoices    *invoices.Syncer
	Authorized  Producer
	Failed      Producer
	Metrics     *metrics.BookingMetrics
	Logger      *logging.Logger
	ServiceName string
	Now         func() time.Time
}

// Service is a single checkout session: at most one draft at a time.
type Service struct {
	store       *bookings.Store
	ids         bookings.IDGenerator
	payments    *payments.Simulator
	invoices    *invoices.Syncer
	authorized  Producer
	failed      Producer
	metrics     *metrics.BookingMetrics
	logger      *logging.Logger
	serviceName string
	now         func() time.Time

	mu     sync.Mutex
	draft  *bookings.Draft
	gen    uint64
	paying bool
}

func NewService(d Deps) *Service {
	if d.Store == nil || d.IDs == nil || d.Payments == nil || d.Invoices == nil {
		panic("checkout: store, id generator, payments and invoices are required")
	}
	if d.Logger == nil {
		d.Logger = logging.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.ServiceName == "" {
		d.ServiceName = "booking-api"
	}
	return &Service{
		store:       d.Store,
		ids:         d.IDs,
		payments:    d.Payments,
		invoices:    d.Invoices,
		authorized:  d.Authorized,
		failed:      d.Failed,
		metrics:     d.Metrics,
		logger:      d.Logger,
		serviceName: d.ServiceName,
		now:         d.Now,
	}
}

// SubmitDraft validates the form and makes it the current draft, replacing any earlier one.
// On validation failure the previous draft is left as it was.
func (s *Service) SubmitDraft(ctx context.Context, d bookings.Draft) (Quote, error) {
	_, span := checkoutTracer.Start(ctx, "checkout.submit_draft")
	defer span.End()

	d = d.Normalize()
	if err := bookings.Validate(d, s.now()); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return Quote{}, err
	}

	s.mu.Lock()
	s.draft = &d
	s.gen++
	s.mu.Unlock()

	q := Quote{ServiceID: d.ServiceID, ServiceName: catalog.NameOf(d.ServiceID), Price: catalog.PriceOf(d.ServiceID)}
	s.logger.Info("booking draft submitted", "service", q.ServiceName, "date", d.Date, "time_slot", d.TimeSlot)
	return q, nil
}

// CurrentDraft returns a copy of the draft, if any.
func (s *Service) CurrentDraft() (bookings.Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return bookings.Draft{}, false
	}
	return *s.draft, true
}

// DiscardDraft drops the current draft; the customer went back to the form.
func (s *Service) DiscardDraft() {
	s.mu.Lock()
	s.draft = nil
	s.gen++
	s.mu.Unlock()
}

// Pay charges the card for the current draft. Only one Pay runs at a time; a second
// call gets ErrPaymentInProgress. A declined payment keeps the draft so the customer
// can retry; any other failure before the booking is stored keeps it too.
func (s *Service) Pay(ctx context.Context, card payments.CardInput) (bookings.Booking, error) {
	ctx, span := checkoutTracer.Start(ctx, "checkout.pay")
	defer span.End()

	s.mu.Lock()
	switch {
	case s.draft == nil:
		s.mu.Unlock()
		return bookings.Booking{}, ErrNoDraft
	case s.paying:
		s.mu.Unlock()
		return bookings.Booking{}, ErrPaymentInProgress
	}
	draft, gen := *s.draft, s.gen
	s.paying = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.paying = false
		s.mu.Unlock()
	}()

	if err := payments.ValidateCard(card); err != nil {
		s.metrics.ObservePayment("invalid", 0)
		span.SetStatus(codes.Error, "card validation failed")
		return bookings.Booking{}, err
	}

	start := s.now()
	auth, err := s.payments.Authorize(ctx, card).Wait(ctx)
	elapsed := s.now().Sub(start).Seconds()
	switch {
	case errors.Is(err, payments.ErrDeclined):
		s.metrics.ObservePayment("declined", elapsed)
		span.SetStatus(codes.Error, "declined")
		s.publishFailed(draft)
		return bookings.Booking{}, err
	case err != nil:
		s.metrics.ObservePayment("error", elapsed)
		span.RecordError(err)
		return bookings.Booking{}, fmt.Errorf("checkout: authorize: %w", err)
	}
	s.metrics.ObservePayment("authorized", elapsed)

	id, err := s.ids.NextID(ctx)
	if err != nil {
		span.RecordError(err)
		return bookings.Booking{}, fmt.Errorf("checkout: next id: %w", err)
	}
	b := bookings.Promote(draft, id, catalog.PriceOf(draft.ServiceID), s.now())
	if err := b.MarkPaid(); err != nil {
		return bookings.Booking{}, fmt.Errorf("checkout: %w", err)
	}
	if err := s.store.Append(ctx, b); err != nil {
		span.RecordError(err)
		return bookings.Booking{}, fmt.Errorf("checkout: save booking: %w", err)
	}
	span.SetAttributes(attribute.Int64("sparkleclean.booking_id", b.ID))

	s.mu.Lock()
	if s.gen == gen {
		s.draft = nil
		s.gen++
	}
	s.mu.Unlock()

	s.metrics.ObserveBookingCreated()
	s.logger.Info("booking confirmed",
		"booking_id", b.ID,
		"customer", b.CustomerName,
		"service", catalog.NameOf(b.ServiceID),
		"price", b.Price,
		"payment_ref", auth.Reference,
	)

	if _, err := s.invoices.SendSingle(ctx, b); err != nil {
		s.logger.Warn("invoice not sent", "booking_id", b.ID, "error", err)
	}
	s.publishAuthorized(b, auth)
	return b, nil
}

func (s *Service) publishAuthorized(b bookings.Booking, auth payments.Authorization) {
	if s.authorized == nil {
		return
	}
	s.publish(s.authorized, bookings.PartitionKey(b.ID), bookings.EventPaymentAuthorized, auth.Reference,
		bookings.PaymentAuthorizedPayload{BookingID: b.ID, PaymentRef: auth.Reference, Amount: b.Price})
}

func (s *Service) publishFailed(d bookings.Draft) {
	if s.failed == nil {
		return
	}
	s.publish(s.failed, []byte(d.CustomerEmail), bookings.EventPaymentFailed, "",
		bookings.PaymentFailedPayload{ServiceID: d.ServiceID, Reason: "DECLINED"})
}

func (s *Service) publish(p Producer, key []byte, eventType, correlation string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("encode event payload", "event_type", eventType, "error", err)
		return
	}
	env := bookings.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.now().UTC(),
		Producer:      s.serviceName,
		CorrelationID: correlation,
		Payload:       raw,
	}
	b, err := json.Marshal(env)
	if err != nil {
		s.logger.Error("encode event", "event_type", eventType, "error", err)
		return
	}
	err = p.Publish(key, b,
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	if err != nil {
		s.logger.Warn("event not published", "event_type", eventType, "error", err)
	}
}
