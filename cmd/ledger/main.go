package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/sparkleclean-booking/internal/bookings"
	"github.com/ariefcatur/sparkleclean-booking/internal/config"
	kafkax "github.com/ariefcatur/sparkleclean-booking/internal/kafka"
	"github.com/ariefcatur/sparkleclean-booking/internal/ledger"
	"github.com/ariefcatur/sparkleclean-booking/internal/logging"
	"github.com/ariefcatur/sparkleclean-booking/internal/mq"
	"github.com/ariefcatur/sparkleclean-booking/internal/redisx"
)

func main() {
	list := flag.Bool("list", false, "print recorded invoices as JSON and exit")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr, cfg.RedisPassword)
	defer rdb.Close()

	svc := ledger.NewService(rdb, cfg.LedgerGroup, logger)

	if *list {
		entries, err := svc.Entries(ctx)
		if err != nil {
			logger.Error("list ledger", "error", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(entries)
		return
	}

	done := make(chan error, 1)
	if cfg.InvoiceTransport == config.TransportAMQP {
		cons, err := mq.NewConsumer(cfg.AMQPURL, cfg.AMQPExchange, cfg.LedgerGroup+".invoices",
			[]string{bookings.TopicInvoiceSent}, logger)
		if err != nil {
			logger.Error("amqp connect", "error", err)
			os.Exit(1)
		}
		defer cons.Close()
		logger.Info("ledger consumer started", "transport", "amqp", "exchange", cfg.AMQPExchange)
		go func() { done <- cons.Run(ctx, svc.HandleDelivery) }()
	} else {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.LedgerGroup, bookings.TopicInvoiceSent, cfg.LedgerWorkers, logger)
		logger.Info("ledger consumer started",
			"transport", "kafka", "group", cfg.LedgerGroup, "topic", bookings.TopicInvoiceSent, "workers", cfg.LedgerWorkers)
		go func() { done <- cons.Start(ctx, svc.HandleInvoiceSent) }()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		logger.Info("shutting down consumer")
		cancel()
		<-done
	case err := <-done:
		if err != nil {
			logger.Error("consumer exit", "error", err)
			os.Exit(1)
		}
	}
}
