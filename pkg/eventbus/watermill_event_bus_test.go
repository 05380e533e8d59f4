package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/piazza-crm/leadflow/pkg/channels/gochannel"
	"github.com/piazza-crm/leadflow/pkg/eventbus"
	"github.com/piazza-crm/leadflow/pkg/events"
	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillEventBus_PublishSubscribe(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	received := make(chan *events.LeadCreated, 1)

	err = bus.Handle(events.LeadCreatedEvent, func(_ context.Context, event any) error {
		created, ok := event.(*events.LeadCreated)
		require.True(t, ok)
		received <- created

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	lead := &models.Lead{ID: "lead-1", Name: "Ann", Email: "a@x.com", Status: models.LeadStatusNew}
	event := events.LeadCreated{BaseEvent: events.NewBaseEvent(events.LeadCreatedEvent), Lead: lead}

	require.NoError(t, bus.Publish(ctx, lead.ID, event))

	select {
	case got := <-received:
		assert.Equal(t, "lead-1", got.Lead.ID)
		assert.Equal(t, events.LeadCreatedEvent, got.GetType())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for lead.created event")
	}
}

func TestWatermillEventBus_UnhandledEventTypeIsAcked(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for task.created; publish must still succeed.
	task := models.FollowUpTask{ID: "task-1", LeadID: "lead-1"}
	event := events.TaskCreated{BaseEvent: events.NewBaseEvent(events.TaskCreatedEvent), Task: task}

	assert.NoError(t, bus.Publish(ctx, "lead-1", event))
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
