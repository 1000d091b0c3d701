// Package events publishes ledger events to Kafka for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"rentpay-backend/internal/models"
)

const (
	queueSize    = 1000
	writeTimeout = 5 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes payment events through a bounded queue drained by a
// fixed pool of workers.
type Publisher struct {
	writer       messageWriter
	events       chan models.PaymentEvent
	workerCount  int
	shutdownChan chan struct{}
	wg           sync.WaitGroup
	closeOnce    sync.Once
	log          *logrus.Entry
}

// NewPublisher connects to brokers and starts workers goroutines.
func NewPublisher(brokers []string, topic string, workers int) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		RequiredAcks: kafka.RequireOne,
	}
	return newPublisher(writer, workers)
}

func newPublisher(writer messageWriter, workers int) *Publisher {
	if workers < 1 {
		workers = 1
	}
	p := &Publisher{
		writer:       writer,
		events:       make(chan models.PaymentEvent, queueSize),
		workerCount:  workers,
		shutdownChan: make(chan struct{}),
		log:          logrus.WithField("component", "events"),
	}
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.log.WithField("workers", p.workerCount).Info("kafka publisher started")
	return p
}

// PaymentRecorded queues event without blocking. Events are dropped when the queue is full.
func (p *Publisher) PaymentRecorded(_ context.Context, event models.PaymentEvent) {
	select {
	case p.events <- event:
	default:
		p.log.WithField("payment_id", event.PaymentID).Warn("event queue full, dropping event")
	}
}

func (p *Publisher) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.events:
			p.send(id, event)
		case <-p.shutdownChan:
			// Flush what is already queued before exiting.
			for {
				select {
				case event := <-p.events:
					p.send(id, event)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) send(workerID int, event models.PaymentEvent) {
	msg, err := encode(event)
	if err != nil {
		p.log.WithError(err).Error("failed to encode event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.WithError(err).WithFields(logrus.Fields{
			"worker":     workerID,
			"payment_id": event.PaymentID,
		}).Error("failed to publish event")
	}
}

// encode keys messages by property so one property's events stay ordered.
func encode(event models.PaymentEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal payment event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.PropertyID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "tenant_id", Value: []byte(event.TenantID)},
			{Key: "status", Value: []byte(event.Status)},
		},
	}, nil
}

// Close stops the workers after the queue drains and closes the writer.
func (p *Publisher) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.shutdownChan)
		p.wg.Wait()
		if cerr := p.writer.Close(); cerr != nil {
			err = fmt.Errorf("close kafka writer: %w", cerr)
		}
		p.log.Info("kafka publisher stopped")
	})
	return err
}
