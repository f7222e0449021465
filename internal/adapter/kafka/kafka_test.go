package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/hospital-coverage/internal/domain"
	"github.com/couchcryptid/hospital-coverage/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testEvent() domain.AnalysisEvent {
	origin := domain.Point{Lat: 40.4168, Lon: -3.7038}
	return domain.AnalysisEvent{
		ID:         "3f0c9c1e-8d6a-4a55-9d0e-6f1f2b0d9a11",
		AnalyzedAt: time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC),
		Result: domain.Summarize(origin, []domain.Facility{
			domain.NewFacility(1, "Hospital A", domain.Point{Lat: 40.42, Lon: -3.70}),
		}),
	}
}

func testPublisher(w messageWriter) *Publisher {
	return &Publisher{
		writer:  w,
		metrics: observability.NewMetricsForTesting(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSerializeToMessage(t *testing.T) {
	ev := testEvent()

	msg, err := serializeToMessage(ev)
	require.NoError(t, err)

	assert.Equal(t, []byte(ev.ID), msg.Key)
	assert.Contains(t, string(msg.Value), `"level":"moderate"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "coverage_level", msg.Headers[0].Key)
	assert.Equal(t, []byte("moderate"), msg.Headers[0].Value)
	assert.Equal(t, "analyzed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-04-26T15:10:00Z"), msg.Headers[1].Value)

	var decoded domain.AnalysisEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, ev.Result.Counts, decoded.Result.Counts)
	require.NotNil(t, decoded.Result.Nearest)
	assert.Equal(t, "Hospital A", decoded.Result.Nearest.Name)
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := testPublisher(w)

	require.NoError(t, p.Publish(context.Background(), testEvent()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.EventsPublished.WithLabelValues("success")))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	p := testPublisher(&fakeWriter{err: errors.New("leader not available")})

	err := p.Publish(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.EventsPublished.WithLabelValues("error")))
}
