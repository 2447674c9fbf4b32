package events

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestEventBus_PublishOrder(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())
	var got []string

	bus.Subscribe(AppointmentsChanged, func(e Event) error {
		got = append(got, "first:"+e.Action)
		return nil
	})
	bus.Subscribe(AppointmentsChanged, func(e Event) error {
		got = append(got, "second:"+e.Action)
		return errors.New("ignored")
	})
	bus.Subscribe("other", func(Event) error {
		got = append(got, "other")
		return nil
	})

	bus.Publish(Event{Type: AppointmentsChanged, Action: "cancel"})
	assert.Equal(t, []string{"first:cancel", "second:cancel"}, got)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())
	calls := 0

	unsubA := bus.Subscribe(AppointmentsChanged, func(Event) error { calls++; return nil })
	unsubB := bus.Subscribe(AppointmentsChanged, func(Event) error { calls += 10; return nil })
	assert.Equal(t, 2, bus.Subscribers(AppointmentsChanged))

	unsubA()
	unsubA()
	assert.Equal(t, 1, bus.Subscribers(AppointmentsChanged))

	bus.Publish(Event{Type: AppointmentsChanged})
	assert.Equal(t, 10, calls)

	unsubB()
	assert.Equal(t, 0, bus.Subscribers(AppointmentsChanged))
	bus.Publish(Event{Type: AppointmentsChanged})
	assert.Equal(t, 10, calls)
}

func TestEventBus_StampsCreatedAt(t *testing.T) {
	bus := NewEventBus(zerolog.Nop())
	var seen Event
	bus.Subscribe(AppointmentsChanged, func(e Event) error { seen = e; return nil })
	bus.Publish(Event{Type: AppointmentsChanged, Date: "2025-01-15"})
	assert.False(t, seen.CreatedAt.IsZero())
	assert.Equal(t, "2025-01-15", seen.Date)
}
