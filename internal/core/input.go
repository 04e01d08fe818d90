package core

import "fmt"

// Action is a semantic input intent, abstracted from physical keys and buttons.
type Action int

const (
	ActionNone Action = iota
	ActionMoveLeft
	ActionMoveRight
	ActionRotateLeft
	ActionRotateRight
	ActionSoftDrop
	ActionHardDrop
	ActionStore
	ActionConfirm // Enter - confirm selection
	ActionBack    // Esc - leave the current screen
	ActionRestart // R - start a new match after game over
	ActionQuit    // Q, Ctrl+C - exit
	ActionPause   // P - pause an offline match
)

var actionNames = [...]string{
	ActionNone:        "None",
	ActionMoveLeft:    "MoveLeft",
	ActionMoveRight:   "MoveRight",
	ActionRotateLeft:  "RotateLeft",
	ActionRotateRight: "RotateRight",
	ActionSoftDrop:    "SoftDrop",
	ActionHardDrop:    "HardDrop",
	ActionStore:       "Store",
	ActionConfirm:     "Confirm",
	ActionBack:        "Back",
	ActionRestart:     "Restart",
	ActionQuit:        "Quit",
	ActionPause:       "Pause",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if a >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "Unknown"
}

// Gameplay reports whether the action drives a falling piece.
func (a Action) Gameplay() bool {
	return a >= ActionMoveLeft && a <= ActionStore
}

// Device is the kind of physical input source.
type Device uint8

const (
	DeviceKeyboard Device = iota
	DeviceController
)

// InputMethod identifies one logical input source: a keyboard binding slot or
// a controller index. Several local players can share a keyboard by using
// different slots.
type InputMethod struct {
	Device Device `json:"device"`
	Index  int    `json:"index"`
}

// Keyboard returns the keyboard input method for a binding slot.
func Keyboard(slot int) InputMethod {
	return InputMethod{Device: DeviceKeyboard, Index: slot}
}

// Controller returns the input method for a controller index.
func Controller(index int) InputMethod {
	return InputMethod{Device: DeviceController, Index: index}
}

func (m InputMethod) String() string {
	if m.Device == DeviceController {
		return fmt.Sprintf("controller %d", m.Index)
	}
	return fmt.Sprintf("keyboard %d", m.Index)
}

// InputEvent is an edge-triggered press or release from one input method.
type InputEvent struct {
	Source  InputMethod
	Action  Action
	Pressed bool
}

// Press builds a press edge.
func Press(src InputMethod, a Action) InputEvent {
	return InputEvent{Source: src, Action: a, Pressed: true}
}

// Release builds a release edge.
func Release(src InputMethod, a Action) InputEvent {
	return InputEvent{Source: src, Action: a, Pressed: false}
}
