package core

import "testing"

func TestActionGameplay(t *testing.T) {
	tests := []struct {
		action   Action
		expected bool
	}{
		{ActionNone, false},
		{ActionMoveLeft, true},
		{ActionRotateRight, true},
		{ActionStore, true},
		{ActionPause, false},
		{ActionQuit, false},
	}

	for _, tc := range tests {
		if got := tc.action.Gameplay(); got != tc.expected {
			t.Errorf("%v.Gameplay() = %v, expected %v", tc.action, got, tc.expected)
		}
	}
}

func TestActionString(t *testing.T) {
	if got := ActionHardDrop.String(); got != "HardDrop" {
		t.Errorf("String() = %q, expected %q", got, "HardDrop")
	}
	if got := Action(99).String(); got != "Unknown" {
		t.Errorf("String() = %q, expected %q", got, "Unknown")
	}
}

func TestInputMethodIdentity(t *testing.T) {
	if Keyboard(0) == Keyboard(1) {
		t.Error("keyboard slots 0 and 1 should be distinct input methods")
	}
	if Keyboard(0) == Controller(0) {
		t.Error("keyboard 0 and controller 0 should be distinct input methods")
	}
	if got := Controller(2).String(); got != "controller 2" {
		t.Errorf("String() = %q, expected %q", got, "controller 2")
	}

	ev := Press(Keyboard(1), ActionStore)
	if !ev.Pressed || ev.Source != Keyboard(1) || ev.Action != ActionStore {
		t.Errorf("Press() = %+v", ev)
	}
	if Release(Keyboard(1), ActionStore).Pressed {
		t.Error("Release() should not be pressed")
	}
}

func TestFrameDuration(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.FrameDuration(); got != 16666666 {
		t.Errorf("FrameDuration() = %v, expected 16.666666ms", got)
	}
	cfg.TickRate = 0
	if got := cfg.FrameDuration(); got != 16666666 {
		t.Errorf("FrameDuration() with zero rate = %v, expected 60 Hz fallback", got)
	}
}
