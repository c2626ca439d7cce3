package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ariefcatur/sparkleclean-booking/internal/bookings"
	"github.com/ariefcatur/sparkleclean-booking/internal/checkout"
	"github.com/ariefcatur/sparkleclean-booking/internal/config"
	"github.com/ariefcatur/sparkleclean-booking/internal/httpx"
	"github.com/ariefcatur/sparkleclean-booking/internal/invoices"
	kafkax "github.com/ariefcatur/sparkleclean-booking/internal/kafka"
	"github.com/ariefcatur/sparkleclean-booking/internal/logging"
	"github.com/ariefcatur/sparkleclean-booking/internal/metrics"
	"github.com/ariefcatur/sparkleclean-booking/internal/mq"
	"github.com/ariefcatur/sparkleclean-booking/internal/payments"
	"github.com/ariefcatur/sparkleclean-booking/internal/postgres"
	"github.com/ariefcatur/sparkleclean-booking/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)
	fatal := func(msg string, err error) {
		logger.Error(msg, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage + ids
	var (
		storage  bookings.Storage
		ids      bookings.IDGenerator
		redisSeq *redisx.Sequence
	)
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			fatal("db connect", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			fatal("db schema", err)
		}
		storage = postgres.NewStorage(db, cfg.BookingsKey)
	default:
		rdb := redisx.New(cfg.RedisAddr, cfg.RedisPassword)
		defer rdb.Close()
		storage = redisx.NewStorage(rdb, cfg.BookingsKey)
		redisSeq = redisx.NewSequence(rdb, "")
	}

	store := bookings.NewStore(storage, logger)
	if _, err := store.Load(ctx); err != nil {
		fatal("load bookings", err)
	}
	if redisSeq != nil {
		if err := redisSeq.Ensure(ctx, store.MaxID()); err != nil {
			fatal("booking sequence", err)
		}
		ids = redisSeq
	} else {
		ids = bookings.NewSequence(store.MaxID())
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewBookingMetrics(reg)

	// Invoice transport + payment events
	var (
		pub       invoices.Publisher = invoices.LogPublisher{Logger: logger}
		producers []*kafkax.Producer
		deps      = checkout.Deps{ServiceName: cfg.ServiceName}
	)
	switch cfg.InvoiceTransport {
	case config.TransportKafka:
		newProducer := func(topic string) *kafkax.Producer {
			p := kafkax.NewProducer(cfg.KafkaBrokers, topic, 1024, logger)
			p.Start(ctx)
			producers = append(producers, p)
			return p
		}
		pub = invoices.KafkaPublisher{Producer: newProducer(bookings.TopicInvoiceSent), ServiceName: cfg.ServiceName}
		deps.Authorized = newProducer(bookings.TopicPaymentAuthorized)
		deps.Failed = newProducer(bookings.TopicPaymentFailed)
	case config.TransportAMQP:
		amqpPub, err := mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.ServiceName)
		if err != nil {
			fatal("amqp connect", err)
		}
		defer amqpPub.Close()
		pub = invoices.AMQPPublisher{Publisher: amqpPub}
	}
	syncer := invoices.NewSyncer(pub, cfg.SyncDelay, logger, m)

	sim := payments.NewSimulator(payments.SimulatorConfig{
		Delay:       cfg.PaymentDelay,
		SuccessRate: cfg.PaymentSuccessRate,
	}, logger)

	deps.Store = store
	deps.IDs = ids
	deps.Payments = sim
	deps.Invoices = syncer
	deps.Metrics = m
	deps.Logger = logger
	svc := checkout.NewService(deps)

	router := httpx.NewRouter(logger, reg)
	bh := &httpx.BookingsHandler{
		Checkout: svc,
		Store:    store,
		Invoices: syncer,
		Logger:   logger,
	}
	bh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr, "store", cfg.StoreBackend, "invoice_transport", cfg.InvoiceTransport)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("listen", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range producers {
		p.Close()
	}
	for _, p := range producers {
		p.WaitClosed()
	}
	cancel()
}
