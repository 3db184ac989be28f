package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRequest  EventType = "request"
	EventResponse EventType = "response"
	EventDispatch EventType = "dispatch"
	EventError    EventType = "error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Resolver  string    `json:"resolver"`
}

// RequestEvent describes a fetch issued or answered on behalf of a resolver.
type RequestEvent struct {
	EventBase
	Path     string        `json:"path"`
	Duration time.Duration `json:"duration,omitempty"`
	Status   int           `json:"status,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
}

// DispatchEvent describes an action handed to the dispatcher.
type DispatchEvent struct {
	EventBase
	Action ActionType `json:"action"`
}

// ErrorEvent describes a resolver run that ended with an error.
type ErrorEvent struct {
	EventBase
	Err error `json:"-"`
}

// LifecycleHooks defines callbacks for runner observability.
type LifecycleHooks struct {
	OnRequest  func(context.Context, *RequestEvent)
	OnResponse func(context.Context, *RequestEvent)
	OnDispatch func(context.Context, *DispatchEvent)
	OnError    func(context.Context, *ErrorEvent)
}
