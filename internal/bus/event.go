package bus

import "time"

// Event kinds published by the console state layer. Subscribers filter by
// namespace prefix ("session.", "feed.", "config.", "messages.").
const (
	SessionAuthenticated = "session.authenticated"
	SessionLoggedOut     = "session.logged_out"

	FeedStateChanged = "feed.state_changed"
	FeedMessage      = "feed.message"
	FeedError        = "feed.error"

	MessagesReplaced = "messages.replaced"

	ConfigUpdated = "config.updated"
)

// Event is a state change published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// NewEvent stamps an event with the current time.
func NewEvent(kind string, payload any) Event {
	return Event{Kind: kind, Timestamp: time.Now(), Payload: payload}
}
