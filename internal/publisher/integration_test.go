//go:build integration

package publisher

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"media_catalog/internal/domain"
	"media_catalog/internal/testutil"
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

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.13-management-alpine",
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

func (s *RabbitMQIntegrationSuite) config(name string) Config {
	return Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-" + name,
		RoutingKey: "test-routing-key-" + name,
		QueueName:  "test-queue-" + name,
	}
}

func (s *RabbitMQIntegrationSuite) TestPublisher_Connection() {
	pub, err := NewRabbitMQ(s.config("connect"), s.logger)
	s.NoError(err)
	s.NotNil(pub)

	err = pub.Close()
	s.NoError(err)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_ItemCreated() {
	cfg := s.config("created")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	event := domain.CatalogEvent{
		Action:   domain.ActionItemCreated,
		Category: "Popular Movies",
		Item: &domain.CatalogItem{
			ID:          1,
			MediaType:   domain.MediaTypeMovie,
			ExternalID:  27205,
			Title:       "Inception",
			PosterURL:   "https://image.tmdb.org/t/p/w500/i.jpg",
			VideoURL:    testutil.Ptr("https://www.youtube.com/watch?v=abc"),
			ReleaseYear: testutil.Ptr(2010),
			GenreIDs:    []int64{28, 878},
			Categories:  []string{"Popular Movies"},
		},
		At: time.Now().UTC().Truncate(time.Millisecond),
	}

	s.NoError(pub.Publish(s.ctx, event))

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)

	s.Equal("application/json", msg.ContentType)
	s.Equal("item.created", msg.Type)
	s.NotEmpty(msg.MessageId)
	s.Equal(uint8(amqp.Persistent), msg.DeliveryMode)

	var received domain.CatalogEvent
	s.Require().NoError(json.Unmarshal(msg.Body, &received))
	s.Equal(domain.ActionItemCreated, received.Action)
	s.Require().NotNil(received.Item)
	s.Equal(int64(27205), received.Item.ExternalID)
	s.Equal("https://www.youtube.com/watch?v=abc", *received.Item.VideoURL)
	s.Equal([]int64{28, 878}, received.Item.GenreIDs)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_CategoryRefreshed() {
	cfg := s.config("refreshed")
	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	s.NoError(pub.Publish(s.ctx, domain.CatalogEvent{
		Action:   domain.ActionCategoryRefreshed,
		Category: "Top Rated TV",
		Removed:  98,
		Added:    100,
	}))

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)

	var received domain.CatalogEvent
	s.Require().NoError(json.Unmarshal(msg.Body, &received))
	s.Equal("Top Rated TV", received.Category)
	s.Equal(int64(98), received.Removed)
	s.Equal(100, received.Added)
	s.Nil(received.Item)
	s.False(received.At.IsZero())
}

func (s *RabbitMQIntegrationSuite) consumeMessage(cfg Config) *amqp.Delivery {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	msgs, err := ch.Consume(cfg.QueueName, "", true, false, false, false, nil)
	s.Require().NoError(err)

	select {
	case msg := <-msgs:
		return &msg
	case <-time.After(5 * time.Second):
		s.Fail("Timeout waiting for message")
		return nil
	}
}
