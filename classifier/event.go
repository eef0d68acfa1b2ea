package classifier

import (
	"fmt"
	"time"
)

// Event type and code constants from linux/input-event-codes.h
const (
	EvSyn = 0x00
	EvKey = 0x01
	EvRel = 0x02
	EvMsc = 0x04

	SynReport = 0
	MscScan   = 0x04

	RelX      = 0x00
	RelY      = 0x01
	RelHWheel = 0x06
	RelWheel  = 0x08

	BtnLeft  = 0x110
	BtnRight = 0x111
)

// Key event values
const (
	Release = 0
	Press   = 1
	Repeat  = 2
)

// Event is a single input event as read from a source device.
type Event struct {
	Time  time.Time
	Type  uint16
	Code  uint16
	Value int32
}

func (e Event) String() string {
	return fmt.Sprintf("time %d.%06d, type %d, code %d, value %d",
		e.Time.Unix(), e.Time.Nanosecond()/1000, e.Type, e.Code, e.Value)
}

func (e Event) isKey(code uint16) bool {
	return e.Type == EvKey && e.Code == code
}

func (e Event) isScan() bool {
	return e.Type == EvMsc && e.Code == MscScan
}

// derive builds a new event at the same timestamp.
func (e Event) derive(typ, code uint16, value int32) Event {
	return Event{Time: e.Time, Type: typ, Code: code, Value: value}
}

type Verdict int

const (
	Mute Verdict = iota
	PassThrough
	Translate
)

func (v Verdict) String() string {
	switch v {
	case Mute:
		return "mute"
	case PassThrough:
		return "pass"
	case Translate:
		return "translate"
	}
	return fmt.Sprintf("verdict(%d)", int(v))
}

// Sink selects the virtual device an event is written to.
type Sink int

const (
	KeyboardSink Sink = iota
	PointerSink
)

func (s Sink) String() string {
	if s == PointerSink {
		return "pointer"
	}
	return "keyboard"
}

// Emit is a side emission written before the decision's main event.
type Emit struct {
	Sink  Sink
	Event Event
}

// Decision is the result of classifying one event.
// PassThrough carries the received event for the keyboard sink,
// Translate carries a new event for the pointer sink,
// Mute carries nothing. Before is written first in every case.
type Decision struct {
	Verdict Verdict
	Event   Event
	Before  []Emit
}

func mute() Decision { return Decision{Verdict: Mute} }

func pass(ev Event) Decision { return Decision{Verdict: PassThrough, Event: ev} }

func translate(ev Event) Decision { return Decision{Verdict: Translate, Event: ev} }
