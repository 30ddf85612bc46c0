package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertyhub/internal/domain/shared/events"
)

type sampleEvent struct {
	Property string    `json:"property"`
	At       time.Time `json:"at"`
}

func (e sampleEvent) EventName() string     { return "sample.happened" }
func (e sampleEvent) AggregateID() string   { return e.Property }
func (e sampleEvent) OccurredAt() time.Time { return e.At }

type recordingOutbox struct {
	records []EventRecord
	failAdd error
}

func (o *recordingOutbox) Add(_ context.Context, rec EventRecord) error {
	if o.failAdd != nil {
		return o.failAdd
	}
	o.records = append(o.records, rec)
	return nil
}

func (o *recordingOutbox) Flush(context.Context) error { return nil }

func TestJSONEventEncoder(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.FixedZone("IST", 19800))
	enc := JSONEventEncoder{IDGenerator: func() string { return "evt-1" }, Source: "propertyhub"}

	rec, err := enc.Encode(sampleEvent{Property: "villa-7", At: at})
	require.NoError(t, err)

	assert.Equal(t, "evt-1", rec.ID)
	assert.Equal(t, "sample.happened", rec.Name)
	assert.Equal(t, "villa-7", rec.Aggregate)
	assert.Equal(t, time.UTC, rec.OccurredAt.Location())
	assert.Equal(t, "propertyhub", rec.Headers["source"])
	assert.Equal(t, "application/json", rec.Headers["content-type"])

	var decoded sampleEvent
	require.NoError(t, json.Unmarshal(rec.Payload, &decoded))
	assert.Equal(t, "villa-7", decoded.Property)
}

func TestJSONEventEncoderDefaultsToUUID(t *testing.T) {
	rec, err := JSONEventEncoder{}.Encode(sampleEvent{Property: "p"})
	require.NoError(t, err)
	assert.Len(t, rec.ID, 36)
}

func TestRecordDomainEvents(t *testing.T) {
	box := &recordingOutbox{}
	evs := []events.DomainEvent{sampleEvent{Property: "a"}, sampleEvent{Property: "b"}}

	require.NoError(t, RecordDomainEvents(context.Background(), box, nil, evs))
	require.Len(t, box.records, 2)
	assert.Equal(t, "a", box.records[0].Aggregate)
	assert.Equal(t, "b", box.records[1].Aggregate)

	require.NoError(t, RecordDomainEvents(context.Background(), nil, nil, evs))

	box.failAdd = errors.New("disk full")
	assert.EqualError(t, RecordDomainEvents(context.Background(), box, nil, evs), "disk full")
}
