package outbox

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	appoutbox "propertyhub/internal/app/outbox"
)

const defaultSource = "app://propertyhub"

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// CloudEventPublisher wraps outbox records in a CloudEvents envelope and
// sends them to "<prefix><aggregate kind>.events.v1", keyed by aggregate.
type CloudEventPublisher struct {
	Producer    Producer
	TopicPrefix string
	Source      string
	IDGenerator func() string
}

func (p *CloudEventPublisher) PublishRecord(ctx context.Context, record appoutbox.EventRecord) error {
	payload, headers, err := p.formatPayload(record)
	if err != nil {
		return err
	}
	return p.Producer.Publish(ctx, p.topicFor(record.Name), record.Aggregate, payload, headers)
}

func (p *CloudEventPublisher) formatPayload(record appoutbox.EventRecord) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(record.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              p.newID(),
		"type":            record.Name + ".v1",
		"source":          p.source(),
		"subject":         record.Aggregate,
		"time":            record.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := record.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{}
	for k, v := range record.Headers {
		headers[k] = v
	}
	headers["content-type"] = "application/cloudevents+json"
	headers["ce-id"] = record.ID
	return payload, headers, nil
}

func (p *CloudEventPublisher) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return p.TopicPrefix + base + ".events.v1"
}

func (p *CloudEventPublisher) newID() string {
	if p.IDGenerator != nil {
		return p.IDGenerator()
	}
	return uuid.NewString()
}

func (p *CloudEventPublisher) source() string {
	if p.Source != "" {
		return p.Source
	}
	return defaultSource
}
