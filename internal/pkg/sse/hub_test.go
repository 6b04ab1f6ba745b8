package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyTargetUser(t *testing.T) {
	hub := NewHub(2)

	alice, cancelAlice := hub.Subscribe("alice")
	defer cancelAlice()
	bob, cancelBob := hub.Subscribe("bob")
	defer cancelBob()

	n := hub.Publish("alice", Event{Event: "notification", Data: "hi"})
	assert.Equal(t, 1, n)

	got := <-alice
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, "hi", got.Data)
	assert.Len(t, bob, 0)
}

func TestHub_FullStreamIsSkipped(t *testing.T) {
	hub := NewHub(1)
	_, cancel := hub.Subscribe("alice")
	defer cancel()

	assert.Equal(t, 1, hub.Publish("alice", Event{Event: "a"}))
	assert.Equal(t, 0, hub.Publish("alice", Event{Event: "b"}))
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	hub := NewHub(1)
	ch, cancel := hub.Subscribe("alice")
	require.Equal(t, 1, hub.SubscriberCount("alice"))

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount("alice"))
}

func TestHub_CloseEndsStreams(t *testing.T) {
	hub := NewHub(1)
	ch, cancel := hub.Subscribe("alice")

	hub.Close()
	_, open := <-ch
	assert.False(t, open)
	cancel()

	late, _ := hub.Subscribe("bob")
	_, open = <-late
	assert.False(t, open)
}
