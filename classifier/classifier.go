// Package classifier decides, one input event at a time, whether a keypad
// event is muted, passed through to the keyboard sink, or translated into a
// pointer event.
//
// Decisions depend only on the event (including its own timestamp) and on
// the State passed in, so a recorded event trace always classifies the same.
package classifier

import (
	"github.com/rs/zerolog"

	"github.com/flipmouse/keymaps"
	"github.com/flipmouse/logging"
)

type Classifier struct {
	Config Config
	Keys   keymaps.KeyMapping
	Log    zerolog.Logger
	Debug  logging.Mask
}

func New(cfg Config, keys keymaps.KeyMapping, log zerolog.Logger, debug logging.Mask) *Classifier {
	if cfg.Decimation == 0 {
		cfg.Decimation = 1
	}
	return &Classifier{Config: cfg, Keys: keys, Log: log, Debug: debug}
}

// Decide classifies ev and updates st in place.
func (c *Classifier) Decide(st *State, ev Event) Decision {
	if ev.Type == EvKey && ev.Value == Press {
		st.LastKey = ev.Code
		// the keypad sends a key's scan ahead of its press, so what a
		// direction key accumulated so far belongs to it
		if _, ok := c.Keys.Direction(ev.Code); !ok {
			st.Scroll = ScrollAccumulator{}
		}
	}

	d := c.decide(st, ev)

	switch {
	case ev.Type == EvKey && ev.Value == Release:
		st.Scroll = ScrollAccumulator{}
		st.LastKey = 0
		st.HasScan = false
		st.Decimation = 0
	case ev.isScan():
		st.LastScan = ev.Value
		st.HasScan = true
	}
	return d
}

func (c *Classifier) decide(st *State, ev Event) Decision {
	km := &c.Keys
	switch {
	case ev.Type == EvSyn:
		return pass(ev)
	case km.ToggleMouseKey != 0 && ev.isKey(km.ToggleMouseKey):
		return c.toggle(st, ev)
	case ev.isScan() && km.IsToggleScan(ev.Value):
		return c.toggleScan(st, ev)
	case km.ExitKey != 0 && ev.isKey(km.ExitKey):
		d := pass(ev)
		if st.Mode == PointerActive {
			d.Before = c.leavePointer(st, ev)
		}
		return d
	case st.Mode == KeyboardPass:
		return pass(ev)
	case ev.Type == EvKey:
		return c.pointerKey(st, ev)
	case ev.isScan():
		return c.pointerScan(st, ev)
	}
	return pass(ev)
}

func (c *Classifier) toggle(st *State, ev Event) Decision {
	switch ev.Value {
	case Press:
		st.Hold = HoldGesture{Pressed: true, Origin: ev.Time}
		return mute()
	case Release:
	default:
		return mute()
	}

	hold := st.Hold
	st.Hold = HoldGesture{}

	if hold.MutedReleasePending {
		return mute()
	}
	if st.Mode == PointerActive {
		// long press not required to exit pointer mode
		return Decision{Verdict: Mute, Before: c.leavePointer(st, ev)}
	}
	if !hold.Pressed {
		// pressed before we grabbed the device, the press already went out
		return pass(ev)
	}
	if c.longPress(hold, ev) {
		return c.enterPointer(st, ev)
	}

	// add back the key-down that was muted on press
	d := pass(ev)
	d.Before = []Emit{{Sink: KeyboardSink, Event: ev.derive(EvKey, ev.Code, Press)}}
	return d
}

// toggleScan handles the repeating scan of a held toggle key. It is always
// muted, and it lets pointer mode engage before the key is let go.
func (c *Classifier) toggleScan(st *State, ev Event) Decision {
	hold := st.Hold
	if st.Mode == KeyboardPass && hold.Pressed && !hold.MutedReleasePending && c.longPress(hold, ev) {
		st.Hold.MutedReleasePending = true
		return c.enterPointer(st, ev)
	}
	return mute()
}

func (c *Classifier) longPress(hold HoldGesture, ev Event) bool {
	held := ev.Time.Sub(hold.Origin)
	if c.Debug.Has(logging.DebugTime) {
		c.Log.Debug().Dur("held", held).Msg("toggle held")
	}
	return held >= c.Config.LongPress
}

// enterPointer switches to pointer mode and wiggles the pointer so the user
// knows it is on and can stop holding the key.
func (c *Classifier) enterPointer(st *State, ev Event) Decision {
	c.setMode(st, PointerActive)
	st.Scroll = ScrollAccumulator{}
	st.Scrolling = c.Config.Scroll
	return Decision{Verdict: Mute, Before: []Emit{
		{Sink: PointerSink, Event: ev.derive(EvRel, RelX, 1)},
		{Sink: PointerSink, Event: ev.derive(EvRel, RelX, -1)},
	}}
}

// leavePointer switches to keyboard mode and releases any buttons still held.
func (c *Classifier) leavePointer(st *State, ev Event) []Emit {
	c.setMode(st, KeyboardPass)
	var out []Emit
	for _, b := range []struct {
		code uint16
		held bool
	}{{BtnLeft, st.LeftHeld}, {BtnRight, st.RightHeld}} {
		if b.held {
			out = append(out, Emit{Sink: PointerSink, Event: ev.derive(EvKey, b.code, Release)})
			st.setButton(b.code, false)
		}
	}
	st.Scroll = ScrollAccumulator{}
	return out
}

func (c *Classifier) setMode(st *State, m Mode) {
	if st.Mode == m {
		return
	}
	st.Mode = m
	if c.Debug.Has(logging.DebugMode) {
		if m == PointerActive {
			c.Log.Info().Msg("enter mouse mode")
		} else {
			c.Log.Info().Msg("exit mouse mode")
		}
	}
}

func (c *Classifier) pointerKey(st *State, ev Event) Decision {
	km := &c.Keys
	if dir, ok := km.Direction(ev.Code); ok {
		return c.directionKey(st, ev, dir)
	}
	if ev.Code == 0 {
		return mute()
	}
	if st.ScanButton != 0 {
		switch {
		case ev.Value == Press && st.ScanButtonKey == 0:
			st.ScanButtonKey = ev.Code
		case ev.Value == Release && ev.Code == st.ScanButtonKey:
			btn := st.ScanButton
			st.setButton(btn, false)
			return translate(ev.derive(EvKey, btn, Release))
		}
	}

	switch ev.Code {
	case km.ClickKey:
		return c.button(st, ev, BtnLeft)
	case km.RightClickKey:
		return c.button(st, ev, BtnRight)
	case km.DragKey:
		if ev.Value != Press {
			return mute()
		}
		st.Dragging = !st.Dragging
		if st.Dragging {
			st.setButton(BtnLeft, true)
			return translate(ev.derive(EvKey, BtnLeft, Press))
		}
		st.setButton(BtnLeft, false)
		return translate(ev.derive(EvKey, BtnLeft, Release))
	case km.FasterKey:
		if ev.Value == Press {
			c.setDistance(st, st.Distance+1)
		}
	case km.SlowerKey:
		if ev.Value == Press {
			c.setDistance(st, st.Distance-1)
		}
	case km.ToggleScrollKey:
		if ev.Value == Press {
			st.Scrolling = !st.Scrolling
			st.Scroll = ScrollAccumulator{}
		}
	}
	// the keyboard is fully grabbed while in pointer mode
	return mute()
}

func (c *Classifier) button(st *State, ev Event, btn uint16) Decision {
	switch ev.Value {
	case Press:
		st.setButton(btn, true)
	case Release:
		st.setButton(btn, false)
	default:
		return mute()
	}
	return translate(ev.derive(EvKey, btn, ev.Value))
}

func (c *Classifier) setDistance(st *State, d int32) {
	if d < 1 {
		d = 1
	}
	st.Distance = d
	if c.Debug.Has(logging.DebugMode) {
		c.Log.Info().Int32("distance", d).Msg("mouse speed changed")
	}
}

func (c *Classifier) directionKey(st *State, ev Event, dir keymaps.Direction) Decision {
	if ev.Value == Release {
		if st.Scrolling {
			return c.flush(st, ev)
		}
		return mute()
	}
	// motion comes from the scan channel when the keypad has one
	if c.Keys.ScanChannel {
		return mute()
	}
	if st.Scrolling {
		st.Scroll.add(dir)
		return mute()
	}
	return translate(motion(ev, dir, st.Distance))
}

func (c *Classifier) flush(st *State, ev Event) Decision {
	acc := st.Scroll
	st.Scroll = ScrollAccumulator{}
	if ev.Code != st.LastKey || acc.Pending == 0 {
		return mute()
	}
	return translate(ev.derive(EvRel, acc.Axis, acc.Pending))
}

func (c *Classifier) pointerScan(st *State, ev Event) Decision {
	km := &c.Keys
	v := ev.Value

	if dir, ok := km.MoveScans[v]; ok {
		if st.Scrolling {
			st.Scroll.add(dir)
			return mute()
		}
		return translate(motion(ev, dir, st.Distance))
	}
	if c.Config.ScanButtons {
		if btn, ok := km.ButtonScans[v]; ok {
			if st.HasScan && st.LastScan == v {
				return mute()
			}
			st.setButton(btn, true)
			st.ScanButton = btn
			st.ScanButtonKey = st.LastKey
			return translate(ev.derive(EvKey, btn, Press))
		}
	}
	if c.Config.WheelScans {
		if dir, ok := km.WheelScans[v]; ok {
			n := st.Decimation
			st.Decimation++
			if n%c.Config.Decimation != 0 {
				return mute()
			}
			code, step := wheel(dir)
			return translate(ev.derive(EvRel, code, step))
		}
	}
	return pass(ev)
}

func (a *ScrollAccumulator) add(dir keymaps.Direction) {
	code, step := wheel(dir)
	if a.Axis != code {
		*a = ScrollAccumulator{Axis: code}
	}
	a.Pending += step
}

func motion(ev Event, dir keymaps.Direction, distance int32) Event {
	switch dir {
	case keymaps.Up:
		return ev.derive(EvRel, RelY, -distance)
	case keymaps.Down:
		return ev.derive(EvRel, RelY, distance)
	case keymaps.Left:
		return ev.derive(EvRel, RelX, -distance)
	default:
		return ev.derive(EvRel, RelX, distance)
	}
}

func wheel(dir keymaps.Direction) (uint16, int32) {
	switch dir {
	case keymaps.Up:
		return RelWheel, 1
	case keymaps.Down:
		return RelWheel, -1
	case keymaps.Left:
		return RelHWheel, 1
	default:
		return RelHWheel, -1
	}
}
