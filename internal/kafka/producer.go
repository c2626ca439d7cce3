package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ariefcatur/sparkleclean-booking/internal/logging"
)

var ErrProducerClosed = errors.New("kafka: producer closed")

// Writer is the part of *kafka.Writer the producer uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer buffers messages for one topic and writes them from a single goroutine.
type Producer struct {
	w      Writer
	topic  string
	logger *logging.Logger
	inbox  chan kafka.Message

	closeCh chan struct{}
	mu      sync.RWMutex
	closed  bool
}

func NewProducer(brokers []string, topic string, buf int, logger *logging.Logger) *Producer {
	if logger == nil {
		logger = logging.Default()
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				logger.Error("kafka write failed", "topic", topic, "count", len(msgs), "error", err)
			}
		},
	}
	return NewProducerWithWriter(w, topic, buf, logger)
}

func NewProducerWithWriter(w Writer, topic string, buf int, logger *logging.Logger) *Producer {
	if logger == nil {
		logger = logging.Default()
	}
	if buf <= 0 {
		buf = 1
	}
	return &Producer{
		w:       w,
		topic:   topic,
		logger:  logger,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start runs the write loop until Close is called or ctx ends. Either way buffered
// messages are flushed before the writer is closed.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				go p.Close()
				for m := range p.inbox {
					p.write(m)
				}
				p.finish()
				return
			case m, ok := <-p.inbox:
				if !ok {
					p.finish()
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.logger.Error("kafka publish failed", "topic", p.topic, "key", string(m.Key), "error", err)
	}
}

func (p *Producer) finish() {
	if err := p.w.Close(); err != nil {
		p.logger.Warn("kafka writer close", "topic", p.topic, "error", err)
	}
}

// Publish queues a message. It blocks while the buffer is full.
func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}
	p.inbox <- kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	return nil
}

// Close stops accepting messages; the loop flushes what is queued and exits.
// Safe to call more than once.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
}

// WaitClosed blocks until the loop has flushed and closed the writer.
func (p *Producer) WaitClosed() { <-p.closeCh }
