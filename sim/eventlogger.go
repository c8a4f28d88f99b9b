package sim

import (
	"log"
	"reflect"
)

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// EventLogger is a hook that prints the event information
type EventLogger struct {
	LogHookBase
}

// NewEventLogger returns a new EventLogger which will write into the logger
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger
	return h
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	owner, ok := evt.Handler().(Named)
	if ok {
		h.Logger.Printf("%10.3f, %s -> %s",
			evt.Time(), reflect.TypeOf(evt), owner.Name())
	} else {
		h.Logger.Printf("%10.3f, %s", evt.Time(), reflect.TypeOf(evt))
	}
}
