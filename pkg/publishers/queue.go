package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// queueMessage is an encoded event ready for a cloud queue.
type queueMessage struct {
	Body       []byte
	Attributes map[string]string
}

func newQueueMessage(evt Event) (queueMessage, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return queueMessage{}, fmt.Errorf("marshal event: %w", err)
	}
	attrs := map[string]string{
		"event_type": evt.Type,
		"event_id":   evt.ID,
	}
	if evt.ProviderID != "" {
		attrs["provider_id"] = evt.ProviderID
	}
	return queueMessage{Body: body, Attributes: attrs}, nil
}

// queueSender delivers one message and returns the provider's message id.
type queueSender interface {
	Send(ctx context.Context, msg queueMessage) (string, error)
}

// queuePublisher dispatches events to a cloud queue provider.
type queuePublisher struct {
	id       string
	typ      string
	provider string
	sender   queueSender
	log      Logger
}

func newQueuePublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("publisher %q missing queue configuration", cfg.ID)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		sender queueSender
		err    error
	)
	switch cfg.Queue.Provider {
	case QueueProviderAWSSQS:
		sender, err = newSQSSender(ctx, cfg.Queue.AWS)
	case QueueProviderAWSSNS:
		sender, err = newSNSSender(ctx, cfg.Queue.SNS)
	case QueueProviderGCP:
		sender, err = newPubSubSender(ctx, cfg.Queue.GCP)
	case QueueProviderAzure:
		err = fmt.Errorf("queue provider %q not implemented", cfg.Queue.Provider)
	default:
		err = fmt.Errorf("queue provider %q is not supported", cfg.Queue.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &queuePublisher{
		id:       cfg.ID,
		typ:      cfg.Type,
		provider: cfg.Queue.Provider,
		sender:   sender,
		log:      ensureLogger(log),
	}, nil
}

func (p *queuePublisher) ID() string   { return p.id }
func (p *queuePublisher) Type() string { return p.typ }

// Publish encodes the event once and hands it to the provider's sender.
func (p *queuePublisher) Publish(ctx context.Context, evt Event) error {
	msg, err := newQueueMessage(evt)
	if err != nil {
		return err
	}
	msgID, err := p.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("queue provider %s send failed: %w", p.provider, err)
	}
	p.log.DebugObj("queue publisher delivered event", "publisher_queue_delivery", map[string]any{
		"publisher_id": p.id,
		"provider":     p.provider,
		"event_id":     evt.ID,
		"message_id":   msgID,
	})
	return nil
}

// Close releases the sender's client when it holds one.
func (p *queuePublisher) Close() error {
	if c, ok := p.sender.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
