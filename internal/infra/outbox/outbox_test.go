package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	appoutbox "propertyhub/internal/app/outbox"
)

type sentMessage struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	sent []sentMessage
	err  error
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, sentMessage{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func sampleRecord() appoutbox.EventRecord {
	return appoutbox.EventRecord{
		ID:         "evt-1",
		Name:       "booking.requested",
		Payload:    []byte(`{"booking_id":"bk-1","property_id":"villa-1"}`),
		OccurredAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Aggregate:  "bk-1",
		Headers:    map[string]string{"content-type": "application/json", "traceparent": "00-abc-def-01"},
	}
}

func TestCloudEventPublisherWrapsRecord(t *testing.T) {
	producer := &fakeProducer{}
	pub := &CloudEventPublisher{Producer: producer, TopicPrefix: "dev.", IDGenerator: func() string { return "ce-1" }}

	require.NoError(t, pub.PublishRecord(context.Background(), sampleRecord()))
	require.Len(t, producer.sent, 1)
	msg := producer.sent[0]
	assert.Equal(t, "dev.booking.events.v1", msg.topic)
	assert.Equal(t, "bk-1", msg.key)
	assert.Equal(t, "application/cloudevents+json", msg.headers["content-type"])
	assert.Equal(t, "evt-1", msg.headers["ce-id"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &evt))
	assert.Equal(t, "1.0", evt["specversion"])
	assert.Equal(t, "ce-1", evt["id"])
	assert.Equal(t, "booking.requested.v1", evt["type"])
	assert.Equal(t, "app://propertyhub", evt["source"])
	assert.Equal(t, "00-abc-def-01", evt["traceparent"])
	data, ok := evt["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "villa-1", data["property_id"])
}

func TestCloudEventPublisherRejectsNonObjectPayload(t *testing.T) {
	rec := sampleRecord()
	rec.Payload = []byte(`not json`)
	pub := &CloudEventPublisher{Producer: &fakeProducer{}}
	assert.Error(t, pub.PublishRecord(context.Background(), rec))
}

func TestTopicForUsesNamePrefix(t *testing.T) {
	pub := &CloudEventPublisher{}
	assert.Equal(t, "availability.events.v1", pub.topicFor("availability.conflict_detected"))
	assert.Equal(t, "standalone.events.v1", pub.topicFor("standalone"))
}

type fakeClaimer struct {
	queue  []*EventDocument
	sent   []string
	failed map[string]time.Time
}

func (c *fakeClaimer) Claim(context.Context, string) (*EventDocument, error) {
	if len(c.queue) == 0 {
		return nil, nil
	}
	doc := c.queue[0]
	c.queue = c.queue[1:]
	return doc, nil
}

func (c *fakeClaimer) MarkSent(_ context.Context, id string) error {
	c.sent = append(c.sent, id)
	return nil
}

func (c *fakeClaimer) MarkFailed(_ context.Context, id string, next time.Time, _ string) error {
	if c.failed == nil {
		c.failed = map[string]time.Time{}
	}
	c.failed[id] = next
	return nil
}

type flakyPublisher struct {
	failIDs map[string]bool
}

func (p *flakyPublisher) PublishRecord(_ context.Context, rec appoutbox.EventRecord) error {
	if p.failIDs[rec.ID] {
		return errors.New("broker down")
	}
	return nil
}

func TestWorkerDrainMarksSentAndFailed(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeClaimer{queue: []*EventDocument{
		{ID: "a", Name: "booking.requested", Payload: []byte(`{}`)},
		{ID: "b", Name: "booking.requested", Payload: []byte(`{}`), Attempts: 1},
	}}
	w := &Worker{
		Store:     store,
		Publisher: &flakyPublisher{failIDs: map[string]bool{"b": true}},
		ID:        "w-1",
		Backoff:   []time.Duration{time.Second, 10 * time.Second},
		Now:       func() time.Time { return now },
	}

	require.NoError(t, w.drain(context.Background()))
	assert.Equal(t, []string{"a"}, store.sent)
	assert.Equal(t, now.Add(10*time.Second), store.failed["b"])
}

func TestWorkerNextRetryClampsToLastBackoff(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	w := &Worker{Backoff: []time.Duration{time.Second, time.Minute}, Now: func() time.Time { return now }}
	assert.Equal(t, now.Add(time.Second), w.nextRetry(0))
	assert.Equal(t, now.Add(time.Minute), w.nextRetry(7))

	w.Backoff = nil
	assert.Equal(t, now.Add(5*time.Second), w.nextRetry(0))
}

func TestWorkerRunRequiresDependencies(t *testing.T) {
	assert.ErrorIs(t, (&Worker{}).Run(context.Background()), ErrWorkerNotConfigured)
}

func TestClaimFilterIncludesStaleClaims(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	filter := claimFilter(now, time.Minute)
	branches, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, branches, 2)
	stale := branches[1].(bson.M)
	assert.Equal(t, stateClaimed, stale["state"])
	assert.Equal(t, bson.M{"$lte": now.Add(-time.Minute)}, stale["claimed_at"])
}

type fixedBacklog struct {
	n   int64
	err error
}

func (f fixedBacklog) Backlog(context.Context) (int64, error) { return f.n, f.err }

func TestBacklogCheck(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, BacklogCheck(fixedBacklog{n: 10}, 10)(ctx))
	assert.ErrorIs(t, BacklogCheck(fixedBacklog{n: 11}, 10)(ctx), ErrBacklogExceeded)
	assert.NoError(t, BacklogCheck(fixedBacklog{n: 5000}, 0)(ctx))

	down := errors.New("no reachable servers")
	assert.ErrorIs(t, BacklogCheck(fixedBacklog{err: down}, 10)(ctx), down)
}
