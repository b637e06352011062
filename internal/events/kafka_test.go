package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(w messageWriter) *Producer {
	return &Producer{
		l:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		w:     w,
		topic: "cutdesk.changes",
	}
}

func TestPublishKeysByEntity(t *testing.T) {
	w := &recordingWriter{}
	p := newTestProducer(w)
	at := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

	err := p.Publish(context.Background(), core.Event{
		Type:     core.EventRecordCreated,
		Entity:   "materials",
		RecordID: "abc",
		At:       at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "cutdesk.changes", msg.Topic)
	assert.Equal(t, "materials", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "record.created", string(msg.Headers[0].Value))

	var got core.Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "abc", got.RecordID)
	assert.True(t, at.Equal(got.At))
}

func TestPublishWithoutEntityKeysByType(t *testing.T) {
	w := &recordingWriter{}
	p := newTestProducer(w)

	require.NoError(t, p.Publish(context.Background(), core.Event{Type: core.EventPermissionsSaved}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "permissions.saved", string(w.msgs[0].Key))
}

func TestPublishReturnsWriteError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := newTestProducer(w)

	err := p.Publish(context.Background(), core.Event{Type: core.EventRecordDeleted, Entity: "users"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestCloseClosesWriter(t *testing.T) {
	w := &recordingWriter{}
	newTestProducer(w).Close()
	assert.True(t, w.closed)
}
