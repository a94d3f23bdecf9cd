package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/matthieukhl/orderdesk/internal/config"
	"github.com/sirupsen/logrus"
)

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *logrus.Logger
}

// NewPublisher returns a Kafka publisher when events are enabled and Noop otherwise.
func NewPublisher(cfg *config.EventsConfig, logger *logrus.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	return NewKafkaPublisher(cfg, logger)
}

func NewKafkaPublisher(cfg *config.EventsConfig, logger *logrus.Logger) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.ClientID
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, cfg.Topic, logger), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *logrus.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, logger: logger}
}

// Publish sends e keyed by entity/id, so changes to one record stay in order
// on a single partition.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.Entity + "/" + strconv.FormatInt(e.ID, 10)),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(e.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithField("event_type", e.Type).Error("Failed to send event to Kafka")
		return fmt.Errorf("send event %s: %w", e.Type, err)
	}

	p.logger.WithFields(logrus.Fields{
		"topic":      p.topic,
		"partition":  partition,
		"offset":     offset,
		"event_type": e.Type,
		"entity":     e.Entity,
		"id":         e.ID,
	}).Debug("Event published to Kafka")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
