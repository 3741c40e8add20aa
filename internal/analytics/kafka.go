// Package analytics publishes hand-history and tournament events to the
// event bus and a columnar analytics sink, in the same shape as the
// prior internal/fraud/kafka_producer.go (sarama sync/async producer,
// ProducerStats, buildMessage-then-marshal-then-send) and
// internal/storage/clickhouse.go (ClickHouse schema bootstrap + batch
// insert), retargeted from fraud alerts onto hand/action/tournament
// events.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
)

// HandEvent is the wire format published for every settled hand and
// tournament milestone — the event-bus analog of a table.PendingSideEffect.
type HandEvent struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"` // "hand_complete", "tournament_complete"
	TableID      string          `json:"table_id,omitempty"`
	TournamentID string          `json:"tournament_id,omitempty"`
	HandNumber   int64           `json:"hand_number,omitempty"`
	PlayerIDs    []string        `json:"player_ids,omitempty"`
	PotSize      int64           `json:"pot_size,omitempty"`
	RakeAmount   int64           `json:"rake_amount,omitempty"`
	Currency     string          `json:"currency,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

// ProducerConfig mirrors the prior KafkaAlertProducerConfig.
type ProducerConfig struct {
	Brokers        []string
	Topic          string
	MaxRetries     int
	RetryBackoff   time.Duration
	FlushFrequency time.Duration
	FlushMessages  int
	RequiredAcks   sarama.RequiredAcks
	Compression    sarama.CompressionCodec
	AsyncMode      bool
}

// ProducerStats tracks publish counts the way the prior ProducerStats
// did, minus the rolling error log (no fraud alerting consumer reads it
// back here).
type ProducerStats struct {
	EventsSent   int64
	EventsFailed int64
	BytesSent    int64
	LastEventAt  time.Time
}

// EventPublisher publishes HandEvents to the table/tournament event bus.
type EventPublisher struct {
	producer sarama.SyncProducer
	async    sarama.AsyncProducer
	topic    string
	mu       sync.Mutex
	stats    ProducerStats
}

// NewEventPublisher dials brokers and configures a sync or async sarama
// producer per cfg.AsyncMode, the same idempotent-producer wiring under
// WaitForAll acks used before.
func NewEventPublisher(cfg ProducerConfig) (*EventPublisher, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.Return.Errors = true
	saramaCfg.Producer.Retry.Max = cfg.MaxRetries
	saramaCfg.Producer.Retry.Backoff = cfg.RetryBackoff
	saramaCfg.Producer.Flush.Frequency = cfg.FlushFrequency
	saramaCfg.Producer.Flush.Messages = cfg.FlushMessages
	saramaCfg.Producer.RequiredAcks = cfg.RequiredAcks
	saramaCfg.Producer.Compression = cfg.Compression
	if cfg.RequiredAcks == sarama.WaitForAll {
		saramaCfg.Producer.Idempotent = true
		saramaCfg.Net.MaxOpenRequests = 1
	}

	p := &EventPublisher{topic: cfg.Topic}
	var err error
	if cfg.AsyncMode {
		p.async, err = sarama.NewAsyncProducer(cfg.Brokers, saramaCfg)
		if err != nil {
			return nil, fmt.Errorf("analytics: new async producer: %w", err)
		}
		go p.drainAsyncErrors()
	} else {
		p.producer, err = sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
		if err != nil {
			return nil, fmt.Errorf("analytics: new sync producer: %w", err)
		}
	}
	return p, nil
}

func (p *EventPublisher) drainAsyncErrors() {
	for err := range p.async.Errors() {
		p.mu.Lock()
		p.stats.EventsFailed++
		p.mu.Unlock()
		_ = err // surfaced via EventsFailed; no consumer reads the raw error here
	}
}

// Publish sends ev to the topic, synchronously or asynchronously per how
// the producer was configured.
func (p *EventPublisher) Publish(ctx context.Context, ev HandEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("analytics: marshal event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.TableID + ev.TournamentID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(ev.EventType)},
		},
		Timestamp: ev.Timestamp,
	}

	if p.async != nil {
		select {
		case p.async.Input() <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	} else {
		if _, _, err := p.producer.SendMessage(msg); err != nil {
			p.mu.Lock()
			p.stats.EventsFailed++
			p.mu.Unlock()
			return fmt.Errorf("analytics: send event: %w", err)
		}
	}

	p.mu.Lock()
	p.stats.EventsSent++
	p.stats.BytesSent += int64(len(data))
	p.stats.LastEventAt = ev.Timestamp
	p.mu.Unlock()
	return nil
}

// Stats returns a snapshot of publish counters.
func (p *EventPublisher) Stats() ProducerStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Close releases the underlying producer.
func (p *EventPublisher) Close() error {
	if p.async != nil {
		return p.async.Close()
	}
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
