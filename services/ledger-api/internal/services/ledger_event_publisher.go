package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	kafkautils "github.com/nimeshabuddhika/gojenga-ledger/pkg/kafka"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/views"
	"github.com/nimeshabuddhika/gojenga-ledger/services/ledger-api/internal/observability"
	"go.uber.org/zap"
)

// LedgerEventPublisher hands transfer outcomes to a broker. Publish must not block on delivery.
type LedgerEventPublisher interface {
	Publish(ctx context.Context, event views.LedgerEvent) error
	Close()
}

type KafkaLedgerPublisherImpl struct {
	logger   *zap.Logger
	producer *kafka.Producer
	topic    string
}

// NewKafkaLedgerPublisher creates the ledger topic (retried while brokers come up) and an idempotent producer.
func NewKafkaLedgerPublisher(ctx context.Context, logger *zap.Logger, brokers string, topic kafkautils.TopicConfig) (LedgerEventPublisher, error) {
	err := kafkautils.InitKafkaTopics(ctx, logger, kafkautils.KafkaConfig{
		BootstrapServers: brokers,
		Topics:           []kafkautils.TopicConfig{topic},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize kafka topics: %w", err)
	}

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"acks":               "all",
		"enable.idempotence": "true",
		"retries":            "3",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	logger.Info("kafka producer created successfully", zap.String("brokers", brokers), zap.String("topic", topic.Topic))
	go handleDeliveryReports(logger, p)

	return &KafkaLedgerPublisherImpl{logger: logger, producer: p, topic: topic.Topic}, nil
}

func (k *KafkaLedgerPublisherImpl) Publish(_ context.Context, event views.LedgerEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	// Keyed by sender so one account's events stay ordered within a partition.
	return k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.Sender),
		Value:          msgBytes,
		Headers: []kafka.Header{
			{Key: pkg.HeaderTraceId, Value: []byte(event.TraceID)},
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}, nil)
}

// Close flushes pending messages for up to 5s before closing the producer.
func (k *KafkaLedgerPublisherImpl) Close() {
	if remaining := k.producer.Flush(5000); remaining > 0 {
		k.logger.Warn("kafka_unflushed_messages", zap.Int("remaining", remaining))
	}
	k.producer.Close()
}

func handleDeliveryReports(logger *zap.Logger, p *kafka.Producer) {
	for e := range p.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				eventType := ""
				for _, h := range ev.Headers {
					if h.Key == "event-type" {
						eventType = string(h.Value)
					}
				}
				observability.EventsPublishFailed.WithLabelValues(eventType).Inc()
				logger.Error("failed to publish message", zap.Error(ev.TopicPartition.Error))
			}
		case kafka.Error:
			logger.Warn("kafka_producer_error", zap.Error(ev))
		}
	}
}

// NoopLedgerPublisher is used when no brokers are configured.
type NoopLedgerPublisher struct {
	logger *zap.Logger
}

func NewNoopLedgerPublisher(logger *zap.Logger) LedgerEventPublisher {
	return &NoopLedgerPublisher{logger: logger}
}

func (n *NoopLedgerPublisher) Publish(_ context.Context, event views.LedgerEvent) error {
	n.logger.Debug("ledger_event_dropped", zap.String(pkg.TraceId, event.TraceID), zap.String("type", string(event.Type)))
	return nil
}

func (n *NoopLedgerPublisher) Close() {}
