package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/burgos-civicos/internal/config"
	"github.com/couchcryptid/burgos-civicos/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Header names set on every snapshot message.
const (
	HeaderMonth       = "mes"
	HeaderCivico      = "civico"
	HeaderPublishedAt = "published_at"
)

// producer is the part of *kafkago.Writer the snapshot writer needs.
type producer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes activity snapshots, one message per activity. Messages are
// keyed by center id and hashed to partitions, so a consumer sees each
// center's activities in published order.
type Writer struct {
	producer producer
	topic    string
	logger   *slog.Logger
}

// NewWriter connects to cfg.KafkaBrokers and writes to cfg.KafkaTopic.
// Writes are synchronous and wait for all in-sync replicas.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	return newWriter(&kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		Compression:  kafkago.Snappy,
	}, cfg.KafkaTopic, logger)
}

func newWriter(p producer, topic string, logger *slog.Logger) *Writer {
	return &Writer{producer: p, topic: topic, logger: logger}
}

// LoadBatch encodes the snapshot and writes it in one call. Nothing is sent
// if any activity fails to encode.
func (w *Writer) LoadBatch(ctx context.Context, snapshot []domain.PublishedActivity) error {
	if len(snapshot) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, 0, len(snapshot))
	for i := range snapshot {
		msg, err := snapshotMessage(snapshot[i])
		if err != nil {
			return fmt.Errorf("encode activity %d of %s: %w", snapshot[i].Posicion, snapshot[i].Mes, err)
		}
		msgs = append(msgs, msg)
	}

	start := time.Now()
	if err := w.producer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write snapshot to %s: %w", w.topic, err)
	}
	w.logger.Debug("snapshot written",
		"topic", w.topic,
		"month", snapshot[0].Mes,
		"messages", len(msgs),
		"duration", time.Since(start),
	)
	return nil
}

// Close flushes pending writes and releases broker connections.
func (w *Writer) Close() error {
	return w.producer.Close()
}

func snapshotMessage(a domain.PublishedActivity) (kafkago.Message, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, err
	}
	return kafkago.Message{
		Key:   []byte(a.Civico),
		Value: body,
		Headers: []kafkago.Header{
			{Key: HeaderMonth, Value: []byte(a.Mes)},
			{Key: HeaderCivico, Value: []byte(a.Civico)},
			{Key: HeaderPublishedAt, Value: []byte(a.PublishedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
