package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user-management-api/internal/logging"
	"github.com/user-management-api/internal/model"
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

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaPublisher(w, logging.Discard())

	user := &model.User{ID: 12, Username: "jdoe", PasswordHash: "secret-digest"}
	ev := NewUserEvent(UserCreated, 12, user, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "12", string(msg.Key))
	assert.Equal(t, []kafka.Header{{Key: "type", Value: []byte("user.created")}}, msg.Headers)
	assert.NotContains(t, string(msg.Value), "secret-digest")

	var decoded UserEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, UserCreated, decoded.Type)
	assert.Equal(t, int64(12), decoded.UserID)
	assert.NotEmpty(t, decoded.ID)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(msg.Value, &fields))
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"id", "type", "userId", "user", "occurredAt"}, keys)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := NewKafkaPublisher(&recordingWriter{err: errors.New("no brokers")}, logging.Discard())

	err := p.Publish(context.Background(), NewUserEvent(UserDeleted, 3, nil, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user.deleted")
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter([]string{"localhost:9092"}, "user-events", logging.Discard())
	assert.Equal(t, "user-events", w.Topic)
	assert.True(t, w.Async)
	assert.NotNil(t, w.Completion)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), UserEvent{}))
	assert.NoError(t, p.Close())
}
