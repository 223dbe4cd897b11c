package pubsub

import (
	"sync"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client *pubsub.Client

	mu     sync.Mutex
	topics map[EventType]*pubsub.Topic
}

// EventType represents the type of event/message sent via pubsub. It doubles as the topic id.
type EventType string

const (
	EventMatchStarted   EventType = "match-started"
	EventMatchCompleted EventType = "match-completed"
	EventMatchReopened  EventType = "match-reopened"
)
