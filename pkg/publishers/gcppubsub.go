package publishers

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// pubsubSender publishes notification events to a Pub/Sub topic. The topic
// batches in the background, so Close must run to flush it.
type pubsubSender struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

func newPubSubSender(ctx context.Context, cfg *GCPQueueConfig) (queueSender, error) {
	if cfg == nil {
		return nil, errors.New("gcp queue configuration is missing")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return &pubsubSender{client: client, topic: client.Topic(cfg.Topic)}, nil
}

func (s *pubsubSender) Send(ctx context.Context, msg queueMessage) (string, error) {
	return s.topic.Publish(ctx, &pubsub.Message{Data: msg.Body, Attributes: msg.Attributes}).Get(ctx)
}

func (s *pubsubSender) Close() error {
	s.topic.Stop()
	return s.client.Close()
}
