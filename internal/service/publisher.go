// Package service provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned so callers can ignore failures without
// interrupting the main request flow.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	q "github.com/iliyamo/theater-service/internal/queue"
)

// Publisher delivers theater change events.
type Publisher interface {
	PublishTheaterChanged(ctx context.Context, event q.TheaterChangedEvent) error
}

// NopPublisher drops every event.  It is used when AMQP is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishTheaterChanged(context.Context, q.TheaterChangedEvent) error { return nil }

// dialTimeout bounds how long a request waits on an unreachable broker.
const dialTimeout = 2 * time.Second

// AMQPPublisher publishes to a durable queue through the default exchange.
// Each publish opens its own connection so a broker restart never leaves
// the publisher holding a dead channel.
type AMQPPublisher struct {
	URL   string
	Queue string
	Log   zerolog.Logger
}

// PublishTheaterChanged sends event as a persistent JSON message.
func (p *AMQPPublisher) PublishTheaterChanged(ctx context.Context, event q.TheaterChangedEvent) error {
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		p.Log.Warn().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Warn().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.Queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		p.Log.Warn().Err(err).Msg("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.Log.Warn().Err(err).Msg("rabbitmq: marshal event failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Type:         "theater." + event.Action,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		p.Log.Warn().Err(err).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}
