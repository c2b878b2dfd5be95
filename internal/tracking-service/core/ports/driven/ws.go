package driven

import "bus-fleet/internal/tracking-service/core/domain/events"

// IRoomDispatcher fans realtime events into named dashboard rooms.
type IRoomDispatcher interface {
	WriteToRoom(room string, event events.Event)
	RoomCount(room string) int
}
