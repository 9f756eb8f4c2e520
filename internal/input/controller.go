// Package input implements controller handling for the NES.
package input

// Button represents NES controller buttons.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Convenience aliases used by the app package's key mapping.
const (
	A      = ButtonA
	B      = ButtonB
	Select = ButtonSelect
	Start  = ButtonStart
	Up     = ButtonUp
	Down   = ButtonDown
	Left   = ButtonLeft
	Right  = ButtonRight
)

// Controller is a single NES controller: an 8-bit button latch exposed
// through a strobe-driven serial shift register.
type Controller struct {
	buttons uint8

	snapshot uint8
	index    uint8
	strobe   bool
}

// New creates a new Controller instance.
func New() *Controller {
	return &Controller{}
}

// SetButton sets the pressed state of a single button.
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons sets all eight button states at once, in A,B,Select,Start,
// Up,Down,Left,Right order.
func (c *Controller) SetButtons(buttons [8]bool) {
	c.buttons = 0
	if buttons[0] {
		c.buttons |= uint8(ButtonA)
	}
	if buttons[1] {
		c.buttons |= uint8(ButtonB)
	}
	if buttons[2] {
		c.buttons |= uint8(ButtonSelect)
	}
	if buttons[3] {
		c.buttons |= uint8(ButtonStart)
	}
	if buttons[4] {
		c.buttons |= uint8(ButtonUp)
	}
	if buttons[5] {
		c.buttons |= uint8(ButtonDown)
	}
	if buttons[6] {
		c.buttons |= uint8(ButtonLeft)
	}
	if buttons[7] {
		c.buttons |= uint8(ButtonRight)
	}
}

// IsPressed returns true if the button is currently held.
func (c *Controller) IsPressed(button Button) bool {
	return (c.buttons & uint8(button)) != 0
}

// Write handles a write to the controller's strobe register ($4016). Bit 0
// of the written value becomes the strobe flag; the shift index resets to
// 0 only when strobe transitions to 1.
func (c *Controller) Write(value uint8) {
	wasStrobe := c.strobe
	c.strobe = value&1 != 0
	if c.strobe && !wasStrobe {
		c.snapshot = c.buttons
		c.index = 0
	}
}

// Read returns the next bit of the latched button state, LSB-first.
// While strobe is held high, bit 0 (button A) is returned on every read.
// Once the index passes 7, reads return 1 (the documented terminal
// behavior of the real shift register).
func (c *Controller) Read() uint8 {
	if c.strobe {
		c.snapshot = c.buttons
		return c.snapshot & 1
	}

	if c.index > 7 {
		return 1
	}

	bit := (c.snapshot >> c.index) & 1
	c.index++
	return bit
}

// Reset clears all controller state.
func (c *Controller) Reset() {
	c.buttons = 0
	c.snapshot = 0
	c.index = 0
	c.strobe = false
}

// InputState holds both NES controller ports.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates a new input state with two controllers.
func NewInputState() *InputState {
	return &InputState{
		Controller1: New(),
		Controller2: New(),
	}
}

// Reset resets all input devices.
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// SetButtons1 sets all button states for controller 1.
func (is *InputState) SetButtons1(buttons [8]bool) {
	is.Controller1.SetButtons(buttons)
}

// SetButtons2 sets all button states for controller 2.
func (is *InputState) SetButtons2(buttons [8]bool) {
	is.Controller2.SetButtons(buttons)
}

// Read reads from a controller port ($4016/$4017). Both ports share the
// strobe signal but keep independent shift positions.
func (is *InputState) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.Read()
	case 0x4017:
		return is.Controller2.Read()
	default:
		return 0
	}
}

// Write writes to the controller strobe port ($4016). Both controllers
// latch on the same strobe write.
func (is *InputState) Write(address uint16, value uint8) {
	if address == 0x4016 {
		is.Controller1.Write(value)
		is.Controller2.Write(value)
	}
}
