package classifier

import "time"

type Mode int

const (
	KeyboardPass Mode = iota
	PointerActive
)

func (m Mode) String() string {
	if m == PointerActive {
		return "GRAB"
	}
	return "PASS"
}

// Config holds the classifier tunables.
type Config struct {
	// Distance moved per scan tick or key repeat.
	Distance int32
	// LongPress is the hold time that turns a toggle tap into a mode switch.
	LongPress time.Duration
	// Scroll starts pointer mode with direction keys scrolling.
	Scroll bool
	// WheelScans enables the keymap's wheel scan table.
	WheelScans bool
	// Decimation emits one wheel step per this many wheel scans.
	Decimation uint
	// ScanButtons enables the keymap's button scan table.
	ScanButtons bool
}

func DefaultConfig() Config {
	return Config{
		Distance:   4,
		LongPress:  225 * time.Millisecond,
		Decimation: 5,
	}
}

// HoldGesture tracks an in-progress press of the toggle key.
type HoldGesture struct {
	Pressed bool
	Origin  time.Time

	// MutedReleasePending is set when pointer mode was entered while the
	// key was still held; the release then only completes the gesture.
	MutedReleasePending bool
}

// ScrollAccumulator collects wheel units until the direction key is released.
type ScrollAccumulator struct {
	Axis    uint16
	Pending int32
}

// State is everything the classifier remembers between events.
// It is owned by the event loop and passed to every Decide call.
type State struct {
	Mode   Mode
	Hold   HoldGesture
	Scroll ScrollAccumulator

	Scrolling bool
	Distance  int32

	LastKey    uint16
	LastScan   int32
	HasScan    bool
	Decimation uint

	LeftHeld  bool
	RightHeld bool
	Dragging  bool

	// ScanButton is a button pressed from the scan channel. It is let go by
	// the release of ScanButtonKey, bound on the key's press when the scan
	// came first.
	ScanButton    uint16
	ScanButtonKey uint16
}

func NewState(cfg Config) *State {
	d := cfg.Distance
	if d < 1 {
		d = 1
	}
	return &State{Distance: d, Scrolling: cfg.Scroll}
}

func (s *State) setButton(code uint16, down bool) {
	switch code {
	case BtnLeft:
		s.LeftHeld = down
		if !down {
			s.Dragging = false
		}
	case BtnRight:
		s.RightHeld = down
	}
	if !down && s.ScanButton == code {
		s.ScanButton = 0
		s.ScanButtonKey = 0
	}
}
