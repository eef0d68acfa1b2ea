// Package trace records input events to a file and replays a recording
// through a fresh classifier.
//
// The file format is a plain sequence of struct input_event records in host
// byte order, the same bytes a reader of /dev/input/eventN receives, so a
// capture taken with cat(1) on the phone replays as well.
package trace

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/inputevent-go"

	"github.com/flipmouse/classifier"
)

type Recorder struct {
	w io.Writer
	c io.Closer
}

func NewRecorder(w io.Writer) *Recorder { return &Recorder{w: w} }

// Create truncates path and records into it.
func Create(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.Annotatef(err, "trace create %s", path)
	}
	return &Recorder{w: f, c: f}, nil
}

func (r *Recorder) Record(ev classifier.Event) error {
	ie := inputevent.InputEvent{
		Time:  syscall.NsecToTimeval(ev.Time.UnixNano()),
		Type:  ev.Type,
		Code:  ev.Code,
		Value: ev.Value,
	}
	return errors.Trace(binary.Write(r.w, binary.NativeEndian, &ie))
}

func (r *Recorder) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}

// FromInputEvent converts a kernel event record.
func FromInputEvent(ie inputevent.InputEvent) classifier.Event {
	return classifier.Event{
		Time:  time.Unix(int64(ie.Time.Sec), int64(ie.Time.Usec)*1000),
		Type:  ie.Type,
		Code:  ie.Code,
		Value: ie.Value,
	}
}

// Read decodes every record until EOF.
func Read(r io.Reader) ([]classifier.Event, error) {
	var events []classifier.Event
	for {
		ie, err := inputevent.ReadOne(r)
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return events, errors.Annotatef(err, "trace record %d", len(events))
		}
		events = append(events, FromInputEvent(ie))
	}
}

type Step struct {
	Event    classifier.Event
	Decision classifier.Decision
}

// Replay classifies a recording. Sync markers are skipped the same way the
// live session skips them.
func Replay(r io.Reader, c *classifier.Classifier, st *classifier.State) ([]Step, error) {
	events, err := Read(r)
	if err != nil {
		return nil, err
	}
	steps := make([]Step, 0, len(events))
	for _, ev := range events {
		if ev.Type == classifier.EvSyn {
			continue
		}
		steps = append(steps, Step{Event: ev, Decision: c.Decide(st, ev)})
	}
	return steps, nil
}

// Print writes one line per step and one indented line per side emission.
func Print(w io.Writer, steps []Step) error {
	for _, s := range steps {
		d := s.Decision
		for _, e := range d.Before {
			if _, err := fmt.Fprintf(w, "  +%s %s\n", e.Sink, e.Event); err != nil {
				return errors.Trace(err)
			}
		}
		line := fmt.Sprintf("%-9s %s", d.Verdict, s.Event)
		if d.Verdict == classifier.Translate {
			line += fmt.Sprintf(" -> type %d, code %d, value %d", d.Event.Type, d.Event.Code, d.Event.Value)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}
