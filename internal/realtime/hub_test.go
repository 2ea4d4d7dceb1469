package realtime

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePubSub struct {
	published []WSMessage
	handlers  map[uuid.UUID]func(event string, payload []byte)
	cancelled int
}

func newFakePubSub() *fakePubSub {
	return &fakePubSub{handlers: make(map[uuid.UUID]func(string, []byte))}
}

func (f *fakePubSub) PublishEventMessage(eventID uuid.UUID, event string, payload []byte) error {
	f.published = append(f.published, WSMessage{Event: event, Data: payload})
	// Loop back like Redis would.
	if h, ok := f.handlers[eventID]; ok {
		h(event, payload)
	}
	return nil
}

func (f *fakePubSub) SubscribeEvent(eventID uuid.UUID, handler func(event string, payload []byte)) (func(), error) {
	f.handlers[eventID] = handler
	return func() {
		delete(f.handlers, eventID)
		f.cancelled++
	}, nil
}

func testClient(eventID uuid.UUID) *Client {
	return &Client{
		ID:      uuid.New().String(),
		EventID: eventID,
		send:    make(chan WSMessage, 8),
	}
}

func TestHubRoomLifecycle(t *testing.T) {
	ps := newFakePubSub()
	hub := NewHub(zap.NewNop(), ps, ps)
	eventID := uuid.New()

	c1 := testClient(eventID)
	c2 := testClient(eventID)

	hub.Register(c1)
	assert.Equal(t, 1, hub.WatcherCount(eventID))
	assert.Contains(t, ps.handlers, eventID, "first join starts the subscription")

	hub.Register(c2)
	assert.Equal(t, 2, hub.WatcherCount(eventID))

	hub.Unregister(c1)
	assert.Equal(t, 1, hub.WatcherCount(eventID))
	assert.Zero(t, ps.cancelled)

	hub.Unregister(c2)
	assert.Equal(t, 0, hub.WatcherCount(eventID))
	assert.Equal(t, 1, ps.cancelled, "last leave cancels the subscription")
}

func TestHubBroadcastToEvent(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	eventID := uuid.New()
	other := uuid.New()

	c := testClient(eventID)
	bystander := testClient(other)
	hub.Register(c)
	hub.Register(bystander)

	hub.BroadcastToEvent(eventID, "checkin", map[string]string{"full_name": "Ama Owusu"})

	msg := <-c.send
	assert.Equal(t, "checkin", msg.Event)
	var data map[string]string
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, "Ama Owusu", data["full_name"])

	select {
	case <-bystander.send:
		t.Fatal("message leaked to another event's room")
	default:
	}
}

func TestHubPublishToEventOnly(t *testing.T) {
	ps := newFakePubSub()
	hub := NewHub(zap.NewNop(), ps, ps)
	eventID := uuid.New()

	c := testClient(eventID)
	hub.Register(c)

	hub.PublishToEventOnly(eventID, "checkin", map[string]string{"full_name": "Kofi Mensah"})

	// Delivered exactly once: via the Redis loopback, not a second local send.
	require.Len(t, ps.published, 1)
	<-c.send
	select {
	case <-c.send:
		t.Fatal("duplicate delivery to local client")
	default:
	}
}

func TestHubPublishToEventOnly_NoRedis(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	eventID := uuid.New()
	c := testClient(eventID)
	hub.Register(c)

	// Without Redis the hub falls back to local broadcast.
	hub.PublishToEventOnly(eventID, "checkin", map[string]string{"full_name": "Ama Owusu"})
	msg := <-c.send
	assert.Equal(t, "checkin", msg.Event)
}
