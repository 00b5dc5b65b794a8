package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"questlog/pkg/logger"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

type Channel string

func (c Channel) String() string {
	return string(c)
}

const (
	// COLLECTION_CHANNEL carries game collection change notifications,
	// including cross-instance cache invalidation.
	COLLECTION_CHANNEL Channel = "collection"
)

type MessageType string

const (
	GAME_CREATED       MessageType = "game_created"
	GAME_UPDATED       MessageType = "game_updated"
	GAME_DELETED       MessageType = "game_deleted"
	SHARE_CREATED      MessageType = "share_created"
	SHARE_REVOKED      MessageType = "share_revoked"
	CACHE_INVALIDATION MessageType = "cache_invalidation"
)

type Event struct {
	ID        string         `json:"id"`
	Type      MessageType    `json:"type"`
	Channel   Channel        `json:"channel"`
	UserID    *uuid.UUID     `json:"userId,omitempty"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

type EventHandler func(event Event) error

// EventBus distributes events across instances via valkey pub/sub and to
// in-process subscribers.
type EventBus struct {
	client   valkey.Client
	log      logger.Logger
	handlers map[Channel][]EventHandler
	mutex    sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(client valkey.Client) *EventBus {
	ctx, cancel := context.WithCancel(context.Background())

	return &EventBus{
		client:   client,
		log:      logger.New("EventBus"),
		handlers: make(map[Channel][]EventHandler),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (eb *EventBus) Publish(channel Channel, event Event) error {
	log := eb.log.Function("Publish")

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if event.Channel == "" {
		event.Channel = channel
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		return log.Err("failed to marshal event", err, "eventID", event.ID)
	}

	ctx, cancel := context.WithTimeout(eb.ctx, 5*time.Second)
	defer cancel()

	err = eb.client.Do(ctx, eb.client.B().Publish().Channel(channel.String()).Message(string(eventData)).Build()).
		Error()
	if err != nil {
		return log.Err("failed to publish event to valkey", err, "channel", channel, "eventID", event.ID)
	}

	log.Debug("Event published", "channel", channel, "eventID", event.ID, "eventType", event.Type)

	eb.notifyLocalHandlers(channel, event)

	return nil
}

// PublishGameChange announces a collection mutation for one owner.
func (eb *EventBus) PublishGameChange(eventType MessageType, userID uuid.UUID, gameID string) error {
	return eb.Publish(COLLECTION_CHANNEL, Event{
		Type:   eventType,
		UserID: &userID,
		Data: map[string]any{
			"gameId": gameID,
		},
	})
}

func (eb *EventBus) Subscribe(channel Channel, handler EventHandler) {
	log := eb.log.Function("Subscribe")

	eb.mutex.Lock()
	first := len(eb.handlers[channel]) == 0
	eb.handlers[channel] = append(eb.handlers[channel], handler)
	eb.mutex.Unlock()

	log.Info("Handler subscribed to channel", "channel", channel)

	if first {
		go eb.listenToChannel(channel)
	}
}

func (eb *EventBus) notifyLocalHandlers(channel Channel, event Event) {
	log := eb.log.Function("notifyLocalHandlers")

	eb.mutex.RLock()
	handlers := eb.handlers[channel]
	eb.mutex.RUnlock()

	for i, handler := range handlers {
		go func(h EventHandler, handlerIndex int) {
			if err := h(event); err != nil {
				log.Er("handler failed", err, "channel", channel, "eventID", event.ID, "handlerIndex", handlerIndex)
			}
		}(handler, i)
	}
}

func (eb *EventBus) listenToChannel(channel Channel) {
	log := eb.log.Function("listenToChannel")

	ctx, cancel := context.WithCancel(eb.ctx)
	defer cancel()

	log.Info("Starting to listen to channel", "channel", channel)

	err := eb.client.Receive(
		ctx,
		eb.client.B().Subscribe().Channel(channel.String()).Build(),
		func(msg valkey.PubSubMessage) {
			var event Event
			if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
				log.Er("failed to unmarshal event", err, "channel", channel)
				return
			}

			eb.notifyLocalHandlers(channel, event)
		},
	)
	if err != nil {
		log.Er("failed to listen to channel", err, "channel", channel)
	}
}

func (eb *EventBus) Close() error {
	eb.cancel()
	eb.log.Info("EventBus closed")
	return nil
}
