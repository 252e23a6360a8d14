package realtime

import (
	"log/slog"
)

// Dispatcher fans an event out to the live members of a channel.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry: registry,
		logger:   logger.With("component", "dispatcher"),
	}
}

// Publish encodes the event once and hands it to every current member of
// the channel without blocking. Members whose sink refuses the frame are
// skipped. It returns how many sinks accepted the event.
func (d *Dispatcher) Publish(channel ChannelID, eventType string, payload any) int {
	targets := d.registry.snapshot(channel)
	if len(targets) == 0 {
		return 0
	}

	frame, err := Encode(eventType, channel, payload)
	if err != nil {
		d.logger.Error("encode event", "event", eventType, "channel", channel, "error", err)
		return 0
	}

	delivered := 0
	for _, m := range targets {
		if err := m.sink.Deliver(frame); err != nil {
			d.logger.Warn("drop event",
				"event", eventType, "channel", channel, "conn", m.id, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

// PublishToUser publishes on the personal channel of a user.
func (d *Dispatcher) PublishToUser(userID int64, eventType string, payload any) int {
	return d.Publish(PersonalChannel(userID), eventType, payload)
}

// PublishToRoom publishes on the channel of a chat room.
func (d *Dispatcher) PublishToRoom(roomID int64, eventType string, payload any) int {
	return d.Publish(RoomChannel(roomID), eventType, payload)
}
