package event

import "time"

type Type string

const (
	TypeProjectCreated   Type = "project_created"
	TypeProjectUpdated   Type = "project_updated"
	TypeProjectDeleted   Type = "project_deleted"
	TypeContactSubmitted Type = "contact_submitted"
)

// Channel is a domain-scoped Postgres NOTIFY channel.
// All event types within a domain share one LISTEN connection.
type Channel string

const (
	ChannelProject Channel = "project"
	ChannelContact Channel = "contact"
)

// Channels lists every channel so subscribers can bridge all of them.
var Channels = []Channel{ChannelProject, ChannelContact}

var typeToChannel = map[Type]Channel{
	TypeProjectCreated:   ChannelProject,
	TypeProjectUpdated:   ChannelProject,
	TypeProjectDeleted:   ChannelProject,
	TypeContactSubmitted: ChannelContact,
}

// ChannelFor returns the domain channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries identifiers only, not full state.
// Subscribers fetch fresh state from the appropriate repository.
type Event struct {
	Type      Type      `json:"type"`
	EntityID  int64     `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, entityID int64) Event {
	return Event{
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}
