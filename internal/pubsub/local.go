package pubsub

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Handler consumes the encoded payload of one event.
type Handler func(data []byte) error

// LocalClient delivers events in-process, synchronously, to the handlers subscribed to a topic.
// It is used when no Cloud project is configured; payloads go through the same msgpack
// encoding as the Cloud client so consumers cannot tell the difference.
type LocalClient struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

var _ PubSubClient = (*LocalClient)(nil)

// NewLocal creates an in-process client with no subscribers.
func NewLocal() *LocalClient {
	return &LocalClient{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe registers h for topic.
func (c *LocalClient) Subscribe(topic EventType, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = append(c.handlers[topic], h)
}

func (c *LocalClient) SendMessage(topic EventType, data any) error {
	payload, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}

	c.mu.RLock()
	handlers := append([]Handler(nil), c.handlers[topic]...)
	c.mu.RUnlock()

	if len(handlers) == 0 {
		log.Debug("No local subscribers for event", "topic", topic)
		return nil
	}
	for _, h := range handlers {
		if err := h(payload); err != nil {
			log.Error("Local subscriber failed", "error", err, "topic", topic)
			return err
		}
	}
	return nil
}

func (c *LocalClient) ProcessMessage(data []byte, returnValue any) error {
	return decode(data, returnValue)
}
