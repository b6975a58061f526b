package publishers

import "context"

// logPublisher writes events to the structured log. Useful when no external
// sink is available.
type logPublisher struct {
	id  string
	typ string
	log Logger
}

func newLogPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	return &logPublisher{id: cfg.ID, typ: cfg.Type, log: ensureLogger(log)}, nil
}

func (p *logPublisher) ID() string   { return p.id }
func (p *logPublisher) Type() string { return p.typ }

func (p *logPublisher) Publish(_ context.Context, evt Event) error {
	p.log.InfoObj("desk event", "publisher_log_event", map[string]any{
		"publisher_id": p.id,
		"event_id":     evt.ID,
		"type":         evt.Type,
		"url":          evt.URL,
		"title":        evt.Title,
		"source":       evt.SourceName,
	})
	return nil
}
