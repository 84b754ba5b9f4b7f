package sse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyRecipient(t *testing.T) {
	hub := NewHub()
	a, cleanupA := hub.Subscribe("user-a")
	defer cleanupA()
	b, cleanupB := hub.Subscribe("user-b")
	defer cleanupB()

	delivered := hub.Publish(Event{UserID: "user-a", Name: "request_approved", Data: map[string]string{"id": "r1"}})
	assert.Equal(t, 1, delivered)

	select {
	case e := <-a:
		assert.Equal(t, "request_approved", e.Name)
	default:
		t.Fatal("expected event for user-a")
	}
	assert.Len(t, b, 0)
}

func TestHub_CleanupUnsubscribes(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("user-a")
	assert.Equal(t, 1, hub.SubscriberCount("user-a"))

	cleanup()
	cleanup()
	assert.Equal(t, 0, hub.SubscriberCount("user-a"))

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Publish(Event{UserID: "user-a", Name: "x"}))
}

func TestHub_CloseEndsStreams(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("user-a")
	hub.Close()
	cleanup()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := hub.Subscribe("user-b")
	_, ok = <-late
	assert.False(t, ok)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Event{Name: "request_rejected", Data: map[string]int{"count": 2}})
	require.NoError(t, err)
	assert.Equal(t, "event: request_rejected\ndata: {\"count\":2}\n\n", buf.String())
}
