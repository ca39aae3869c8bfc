package core

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// KeyCode values follow the virtual key table; the platform layer maps its
// own key codes onto them.
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_A         KeyCode = 0x41
	KEY_B         KeyCode = 0x42
	KEY_D         KeyCode = 0x44
	KEY_E         KeyCode = 0x45
	KEY_F         KeyCode = 0x46
	KEY_G         KeyCode = 0x47
	KEY_Q         KeyCode = 0x51
	KEY_R         KeyCode = 0x52
	KEY_S         KeyCode = 0x53
	KEY_W         KeyCode = 0x57
	KEY_LSHIFT    KeyCode = 0xA0

	KEYS_MAX_KEYS KeyCode = 0xFF
)

type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

type MouseState struct {
	X       float64
	Y       float64
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// InputState keeps this frame's and last frame's keyboard and mouse state.
// Changes are reported on the event bus as they are processed.
type InputState struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState

	events *EventBus
}

func NewInputState(events *EventBus) *InputState {
	return &InputState{events: events}
}

// Update copies the current states to the previous ones. Call it once at
// the end of every frame.
func (is *InputState) Update() {
	is.KeyboardPrevious = is.KeyboardCurrent
	is.MousePrevious = is.MouseCurrent
}

func (is *InputState) fire(code EventCode, data EventContext) {
	if is.events != nil {
		is.events.Fire(code, is, data)
	}
}

// keyboard input
func (is *InputState) IsKeyDown(key KeyCode) bool {
	return key < KEYS_MAX_KEYS && is.KeyboardCurrent.Keys[key]
}

func (is *InputState) WasKeyDown(key KeyCode) bool {
	return key < KEYS_MAX_KEYS && is.KeyboardPrevious.Keys[key]
}

// KeyPressed is true only on the frame the key went down.
func (is *InputState) KeyPressed(key KeyCode) bool {
	return is.IsKeyDown(key) && !is.WasKeyDown(key)
}

func (is *InputState) ProcessKey(key KeyCode, pressed bool) {
	if key >= KEYS_MAX_KEYS || is.KeyboardCurrent.Keys[key] == pressed {
		return
	}
	is.KeyboardCurrent.Keys[key] = pressed

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	is.fire(code, EventContext{Key: key})
}

// mouse input
func (is *InputState) IsButtonDown(button Button) bool {
	return button < BUTTON_MAX_BUTTONS && is.MouseCurrent.Buttons[button]
}

func (is *InputState) WasButtonDown(button Button) bool {
	return button < BUTTON_MAX_BUTTONS && is.MousePrevious.Buttons[button]
}

func (is *InputState) MousePosition() (float64, float64) {
	return is.MouseCurrent.X, is.MouseCurrent.Y
}

// MouseDelta is the cursor movement since the last Update.
func (is *InputState) MouseDelta() (float64, float64) {
	return is.MouseCurrent.X - is.MousePrevious.X, is.MouseCurrent.Y - is.MousePrevious.Y
}

func (is *InputState) ProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS || is.MouseCurrent.Buttons[button] == pressed {
		return
	}
	is.MouseCurrent.Buttons[button] = pressed

	code := EVENT_CODE_BUTTON_RELEASED
	if pressed {
		code = EVENT_CODE_BUTTON_PRESSED
	}
	is.fire(code, EventContext{Button: button})
}

func (is *InputState) ProcessMouseMove(x, y float64) {
	if is.MouseCurrent.X == x && is.MouseCurrent.Y == y {
		return
	}
	is.MouseCurrent.X = x
	is.MouseCurrent.Y = y
	is.fire(EVENT_CODE_MOUSE_MOVED, EventContext{X: x, Y: y})
}

func (is *InputState) ProcessMouseWheel(delta float64) {
	is.fire(EVENT_CODE_MOUSE_WHEEL, EventContext{Y: delta})
}
