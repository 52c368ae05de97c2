package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	return config
}

func TestKafkaPublisherSendsOutcome(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mockProducerConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var decoded map[string]any
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if decoded["event"] != "GAME_OVER" || decoded["gameId"] != "g-42" || decoded["result"] != "ai_win" {
			return errors.New("unexpected payload: " + string(value))
		}
		return nil
	})
	publisher := newKafkaPublisherWithProducer(producer, "", nil)
	assert.Equal(t, DefaultOutcomeTopic, publisher.topic)

	err := publisher.PublishOutcome(context.Background(), OutcomeEvent{
		Event:           "GAME_OVER",
		GameID:          "g-42",
		Result:          ResultAIWin,
		Turns:           31,
		DurationSeconds: 12.5,
	})
	require.NoError(t, err)
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisherReportsSendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mockProducerConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	publisher := newKafkaPublisherWithProducer(producer, "outcomes", nil)

	err := publisher.PublishOutcome(context.Background(), OutcomeEvent{Event: "GAME_OVER", GameID: "g-1"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisherHonoursCancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mockProducerConfig())
	publisher := newKafkaPublisherWithProducer(producer, "outcomes", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, publisher.PublishOutcome(ctx, OutcomeEvent{GameID: "g-1"}), context.Canceled)
	require.NoError(t, publisher.Close())
}

func TestNewKafkaPublisherWithoutBrokers(t *testing.T) {
	publisher, err := NewKafkaPublisher(nil, "", nil)
	assert.Nil(t, publisher)
	assert.ErrorIs(t, err, ErrPublisherDisabled)
}
