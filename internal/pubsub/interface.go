package pubsub

// PubSubClient publishes lifecycle events and decodes received payloads.
type PubSubClient interface {
	SendMessage(topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
}
