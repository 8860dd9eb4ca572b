package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"nilgate/internal/checkin/models"
	"nilgate/pkg/platform/sentinel"
)

const DefaultTopic = "nilgate.settlement.authorized"

// KafkaPublisher produces settlement events keyed by session id, so every
// event of a session lands on the same partition.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type KafkaOption func(*KafkaPublisher)

func WithLogger(logger *slog.Logger) KafkaOption {
	return func(p *KafkaPublisher) {
		p.logger = logger
	}
}

func WithTopic(topic string) KafkaOption {
	return func(p *KafkaPublisher) {
		if topic != "" {
			p.topic = topic
		}
	}
}

// NewKafkaPublisher connects lazily; the first produce or EnsureTopic call
// surfaces broker errors.
func NewKafkaPublisher(brokers []string, opts ...KafkaOption) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka settlement publisher requires at least one broker")
	}
	p := &KafkaPublisher{topic: DefaultTopic, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(p.topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	p.client = client
	return p, nil
}

// EnsureTopic creates the settlement topic if it does not exist yet.
func (p *KafkaPublisher) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(p.client)
	responses, err := adm.CreateTopics(ctx, partitions, replicationFactor, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create settlement topic: %w", err)
	}
	for _, resp := range responses.Sorted() {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create settlement topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

// PublishSettlement blocks until the broker acknowledges the record.
func (p *KafkaPublisher) PublishSettlement(ctx context.Context, event models.SettlementEvent) error {
	payload, err := encode(event)
	if err != nil {
		return err
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.SessionID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "mode", Value: []byte(event.Mode)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		p.logger.ErrorContext(ctx, "settlement publish failed",
			"session_id", event.SessionID,
			"topic", p.topic,
			"error", err,
		)
		return fmt.Errorf("publish settlement: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}
