package auth

import (
	"time"

	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/domain/shared/events"
)

// EventTypeAuthStateChanged is published after every login, logout,
// initialize and profile update.
const EventTypeAuthStateChanged = "authStateChanged"

type AuthStateChangedEvent struct {
	events.BaseEvent
	IsLoggedIn bool               `json:"isLoggedIn"`
	Employee   *employee.Employee `json:"employee"`
}

func NewAuthStateChangedEvent(loggedIn bool, e *employee.Employee, at time.Time) *AuthStateChangedEvent {
	aggregateID := ""
	if e != nil {
		aggregateID = e.ID
	}
	return &AuthStateChangedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: aggregateID,
			EventType:   EventTypeAuthStateChanged,
			OccurredAt:  at,
		},
		IsLoggedIn: loggedIn,
		Employee:   e,
	}
}
