package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const DefaultOutcomeTopic = "gomoku-outcomes"

type OutcomeEvent struct {
	Event           string     `json:"event"`
	GameID          string     `json:"gameId"`
	Result          GameResult `json:"result"`
	Turns           int        `json:"turns"`
	DurationSeconds float64    `json:"duration_seconds"`
}

// OutcomePublisher receives one event per settled game.
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, event OutcomeEvent) error
	Close() error
}

type noopPublisher struct{}

func (noopPublisher) PublishOutcome(context.Context, OutcomeEvent) error { return nil }
func (noopPublisher) Close() error                                      { return nil }

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, ErrPublisherDisabled
	}
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return newKafkaPublisherWithProducer(producer, topic, logger), nil
}

func newKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if topic == "" {
		topic = DefaultOutcomeTopic
	}
	return &KafkaPublisher{producer: producer, topic: topic, logger: logger}
}

func (p *KafkaPublisher) PublishOutcome(ctx context.Context, event OutcomeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.GameID),
		Value: sarama.ByteEncoder(value),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error("outcome not published", zap.String("game_id", event.GameID), zap.Error(err))
		return fmt.Errorf("send outcome: %w", err)
	}
	p.logger.Info("outcome published",
		zap.String("game_id", event.GameID),
		zap.Stringer("result", event.Result),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
