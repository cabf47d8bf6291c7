//go:build integration

package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"commentpulse/internal/domain"
)

type RabbitMQIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
	logger    *slog.Logger
}

func (s *RabbitMQIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := rabbitmq.RunContainer(s.ctx,
		testcontainers.WithImage("rabbitmq:3.13-management-alpine"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = amqpURL
}

func (s *RabbitMQIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestRabbitMQIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RabbitMQIntegrationSuite))
}

func (s *RabbitMQIntegrationSuite) TestForwarder_Connection() {
	fwd, err := NewRabbitMQ(Config{URL: s.amqpURL, Exchange: "test-exchange"}, s.logger)
	s.NoError(err)
	s.NotNil(fwd)

	s.NoError(fwd.Close())
}

func (s *RabbitMQIntegrationSuite) TestForwarder_RoutesByChannel() {
	exchange := "test-exchange-routing"

	fwd, err := NewRabbitMQ(Config{URL: s.amqpURL, Exchange: exchange}, s.logger)
	s.Require().NoError(err)
	defer fwd.Close()

	ch1Msgs := s.bindQueue(exchange, "UC1")
	ch2Msgs := s.bindQueue(exchange, "UC2")

	now := time.Now().Truncate(time.Millisecond)
	err = fwd.Forward(s.ctx, &domain.LogEvent{
		ChannelID: "UC1",
		UserID:    "u1",
		Message:   "sync started",
		Level:     domain.LevelInfo,
		CreatedAt: now,
	})
	s.NoError(err)

	msg := s.receive(ch1Msgs)
	s.Require().NotNil(msg)
	s.Equal("application/json", msg.ContentType)
	s.Equal(uint8(amqp.Persistent), msg.DeliveryMode)

	var received EventMessage
	s.NoError(json.Unmarshal(msg.Body, &received))
	s.Equal("UC1", received.ChannelID)
	s.Equal("sync started", received.Message)
	s.Equal("info", received.Level)
	s.Equal(now.UTC(), received.CreatedAt.UTC())

	// the other channel's queue stays empty
	select {
	case <-ch2Msgs:
		s.Fail("event leaked to another channel's queue")
	case <-time.After(500 * time.Millisecond):
	}
}

func (s *RabbitMQIntegrationSuite) TestForwarder_LevelSerialization() {
	exchange := "test-exchange-levels"

	fwd, err := NewRabbitMQ(Config{URL: s.amqpURL, Exchange: exchange}, s.logger)
	s.Require().NoError(err)
	defer fwd.Close()

	msgs := s.bindQueue(exchange, "UC1")

	for _, level := range []domain.LogLevel{
		domain.LevelInfo, domain.LevelWarning, domain.LevelError, domain.LevelSuccess,
	} {
		err := fwd.Forward(s.ctx, &domain.LogEvent{
			ChannelID: "UC1",
			Message:   "event",
			Level:     level,
			CreatedAt: time.Now(),
		})
		s.NoError(err)

		msg := s.receive(msgs)
		s.Require().NotNil(msg)

		var received EventMessage
		s.NoError(json.Unmarshal(msg.Body, &received))
		s.Equal(string(level), received.Level)
	}
}

// bindQueue declares an exclusive queue bound to one routing key, the
// way an external progress consumer would.
func (s *RabbitMQIntegrationSuite) bindQueue(exchange, routingKey string) <-chan amqp.Delivery {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	s.T().Cleanup(func() { conn.Close() })

	ch, err := conn.Channel()
	s.Require().NoError(err)

	err = ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil)
	s.Require().NoError(err)

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	s.Require().NoError(err)

	err = ch.QueueBind(q.Name, routingKey, exchange, false, nil)
	s.Require().NoError(err)

	msgs, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	s.Require().NoError(err)
	return msgs
}

func (s *RabbitMQIntegrationSuite) receive(msgs <-chan amqp.Delivery) *amqp.Delivery {
	select {
	case msg := <-msgs:
		return &msg
	case <-time.After(5 * time.Second):
		s.Fail("timeout waiting for message")
		return nil
	}
}
