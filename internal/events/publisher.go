package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher defines the interface for event publishing
type Publisher interface {
	PublishProfileCreated(ctx context.Context, uid string) error
	PublishProfileUpdated(ctx context.Context, uid, username string) error
	PublishAvatarUpdated(ctx context.Context, uid, imageURL string) error
	PublishGroupCreated(ctx context.Context, groupID, creatorUID string, membersUID []string) error
	PublishPhotoShared(ctx context.Context, groupID, posterUID, imageURL string) error

	// Close closes the publisher connection
	Close() error
}

// EventPublisher implements the Publisher interface using RabbitMQ
type EventPublisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	enabled      bool
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(rabbitURI string) (*EventPublisher, error) {
	if rabbitURI == "" {
		log.Println("Warning: RabbitMQ URI is empty, event publishing is disabled")
		return &EventPublisher{
			enabled: false,
		}, nil
	}

	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	exchangeName := "treehouse.events"
	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &EventPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		enabled:      true,
	}, nil
}

// publishEvent publishes an event to RabbitMQ
func (p *EventPublisher) publishEvent(ctx context.Context, routingKey string, event any) error {
	if !p.enabled {
		log.Printf("Event publishing is disabled, skipping event: %s", routingKey)
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		pubCtx,
		p.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Printf("Published event: %s", routingKey)
	return nil
}

func (p *EventPublisher) PublishProfileCreated(ctx context.Context, uid string) error {
	event := NewProfileCreatedEvent(uid)
	return p.publishEvent(ctx, string(EventTypeProfileCreated), event)
}

func (p *EventPublisher) PublishProfileUpdated(ctx context.Context, uid, username string) error {
	event := NewProfileUpdatedEvent(uid, username)
	return p.publishEvent(ctx, string(EventTypeProfileUpdated), event)
}

func (p *EventPublisher) PublishAvatarUpdated(ctx context.Context, uid, imageURL string) error {
	event := NewAvatarUpdatedEvent(uid, imageURL)
	return p.publishEvent(ctx, string(EventTypeAvatarUpdated), event)
}

func (p *EventPublisher) PublishGroupCreated(ctx context.Context, groupID, creatorUID string, membersUID []string) error {
	event := NewGroupCreatedEvent(groupID, creatorUID, membersUID)
	return p.publishEvent(ctx, string(EventTypeGroupCreated), event)
}

func (p *EventPublisher) PublishPhotoShared(ctx context.Context, groupID, posterUID, imageURL string) error {
	event := NewPhotoSharedEvent(groupID, posterUID, imageURL)
	return p.publishEvent(ctx, string(EventTypePhotoShared), event)
}

// Close closes the connection to RabbitMQ
func (p *EventPublisher) Close() error {
	if !p.enabled {
		return nil
	}

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.Printf("Error closing RabbitMQ channel: %v", err)
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}

	return nil
}
