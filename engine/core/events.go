package core

// EventCode identifies what happened. Codes are fired by the platform layer
// and by Input when its state changes.
type EventCode int

const (
	// Shuts the previewer down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = iota + 1
	// Context usage: Key.
	EVENT_CODE_KEY_PRESSED
	// Context usage: Key.
	EVENT_CODE_KEY_RELEASED
	// Context usage: Button.
	EVENT_CODE_BUTTON_PRESSED
	// Context usage: Button.
	EVENT_CODE_BUTTON_RELEASED
	// Context usage: X, Y.
	EVENT_CODE_MOUSE_MOVED
	// Context usage: Y holds the wheel delta.
	EVENT_CODE_MOUSE_WHEEL
	// Framebuffer size changed. Context usage: Width, Height.
	EVENT_CODE_RESIZED
	// Files dropped on the window. Context usage: Paths.
	EVENT_CODE_FILES_DROPPED
)

type EventContext struct {
	Key    KeyCode
	Button Button
	X, Y   float64
	Width  uint32
	Height uint32
	Paths  []string
}

// Should return true if handled.
type FnOnEvent func(code EventCode, sender interface{}, listener interface{}, data EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventBus dispatches events synchronously to listeners registered per
// code. Like the rest of the frame loop it is used from one goroutine.
type EventBus struct {
	registered map[EventCode][]registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{registered: make(map[EventCode][]registeredEvent)}
}

/**
 * Register to listen for when events are sent with the provided code. A
 * listener can only be registered once per code.
 * @returns true if the event is successfully registered; otherwise false.
 */
func (eb *EventBus) Register(code EventCode, listener interface{}, onEvent FnOnEvent) bool {
	if onEvent == nil {
		return false
	}
	for _, e := range eb.registered[code] {
		if e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	eb.registered[code] = append(eb.registered[code], registeredEvent{listener: listener, callback: onEvent})
	return true
}

// Unregister removes the listener for code. It returns false if the
// listener was not registered.
func (eb *EventBus) Unregister(code EventCode, listener interface{}) bool {
	events := eb.registered[code]
	for i, e := range events {
		if e.listener == listener {
			eb.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code in registration order. If a
 * handler returns true the event is considered handled and is not passed on.
 * @returns true if handled, otherwise false.
 */
func (eb *EventBus) Fire(code EventCode, sender interface{}, data EventContext) bool {
	for _, e := range eb.registered[code] {
		if e.callback(code, sender, e.listener, data) {
			return true
		}
	}
	return false
}
