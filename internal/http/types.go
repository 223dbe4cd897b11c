package http

import (
	"context"
	"net/http"

	"github.com/mauv0809/shuttle-score/internal/awards"
	"github.com/mauv0809/shuttle-score/internal/metrics"
	"github.com/mauv0809/shuttle-score/internal/pubsub"
	"github.com/mauv0809/shuttle-score/internal/scorer"
)

// EventHandler applies a lifecycle event received from a push subscription.
type EventHandler interface {
	Handle(ctx context.Context, topic pubsub.EventType, data []byte) error
}

type Server struct {
	Scorer         scorer.Service
	Events         EventHandler
	Awards         awards.Store
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Router         *http.ServeMux
}

// pushMessage is the JSON envelope of a Pub/Sub push delivery.
type pushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		ID   string `json:"messageId"`
		Data string `json:"data"`
	} `json:"message"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}
