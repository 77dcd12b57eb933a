package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/jobwire/boardcrawler/internal/scraper"
)

// PubSub publishes posting events to a Google Cloud Pub/Sub topic.
type PubSub struct {
	publisher *pubsub.Publisher
}

// NewPubSub wraps an existing topic publisher.
func NewPubSub(publisher *pubsub.Publisher) (*PubSub, error) {
	if publisher == nil {
		return nil, fmt.Errorf("pubsub publisher is required")
	}
	return &PubSub{publisher: publisher}, nil
}

// Publish marshals the event to JSON and publishes it.
func (p *PubSub) Publish(ctx context.Context, event scraper.PostingEvent) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"site":     event.Site,
			"category": event.Category,
		},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish event: %w", err)
	}
	return id, nil
}
