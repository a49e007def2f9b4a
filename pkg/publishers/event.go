package publishers

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/samvad-hq/postboard/internal/domain"
)

// Action names the board mutation an Event reports.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

var eventJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Event represents the payload published downstream.
type Event struct {
	Action     Action      `json:"action"`
	Post       domain.Post `json:"post"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// NewEvent constructs an Event for the given action + post.
func NewEvent(action Action, post domain.Post) Event {
	return Event{
		Action:     action,
		Post:       post,
		OccurredAt: time.Now().UTC(),
	}
}

// Marshal encodes the event as JSON.
func (e Event) Marshal() ([]byte, error) {
	return eventJSON.Marshal(e)
}

// attributes are the routing hints attached to queue and topic messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"action":  string(e.Action),
		"post_id": e.Post.ID,
	}
}
