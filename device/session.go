package device

import (
	"context"
	"fmt"
	"time"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/juju/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/flipmouse/classifier"
	"github.com/flipmouse/keymaps"
	"github.com/flipmouse/logging"
)

// pollTimeout bounds each wait so a cancelled context is noticed.
const pollTimeout = 250 * time.Millisecond

// Recorder receives every event read from a source, before classification.
type Recorder interface {
	Record(ev classifier.Event) error
}

type Options struct {
	Config  classifier.Config
	Keymaps *keymaps.KeyMappingProvider
	// Keymap, when ForceKeymap is set, is used for every source instead of
	// the type derived from the device name.
	Keymap      keymaps.KeyboardType
	ForceKeymap bool
	// SharedKeyboard passes keys through one uinput keyboard instead of a
	// mirror per source.
	SharedKeyboard bool
	UinputPath     string
	Debug          logging.Mask
	Log            zerolog.Logger
	Recorder       Recorder
}

// Source is one grabbed physical keypad and the sink its keys pass to.
type Source struct {
	Name     string
	Path     string
	Keys     *classifier.Classifier
	Keyboard Writer

	dev *evdev.InputDevice
	tag string
}

func (src *Source) read() (classifier.Event, error) {
	ie, err := src.dev.ReadOne()
	if err != nil {
		return classifier.Event{}, errors.Annotatef(err, "read %s", src.Path)
	}
	return classifier.Event{
		Time:  time.Unix(int64(ie.Time.Sec), int64(ie.Time.Usec)*1000),
		Type:  ie.Type,
		Code:  ie.Code,
		Value: ie.Value,
	}, nil
}

// Session owns the grabbed sources, the virtual sinks and the classifier
// state. It is driven by a single goroutine.
type Session struct {
	log      zerolog.Logger
	debug    logging.Mask
	state    *classifier.State
	sources  []*Source
	pointer  Writer
	sinks    []Writer
	recorder Recorder
}

// NewSession grabs every device and creates the sinks. Any failure releases
// everything acquired so far; there is no running on a subset of devices.
func NewSession(devs []*evdev.InputDevice, opts Options) (*Session, error) {
	if opts.UinputPath == "" {
		opts.UinputPath = UinputPath
	}
	if opts.Keymaps == nil {
		opts.Keymaps = keymaps.CreateDefaultKeyMappingProvider()
	}
	s := &Session{
		log:      opts.Log,
		debug:    opts.Debug,
		state:    classifier.NewState(opts.Config),
		recorder: opts.Recorder,
	}
	attached := 0
	fail := func(err error) (*Session, error) {
		for _, dev := range devs[attached:] {
			dev.File.Close()
		}
		s.Close()
		return nil, err
	}

	mouse, err := NewMouse(opts.UinputPath, "flipmouse")
	if err != nil {
		return fail(err)
	}
	s.pointer = mouse

	var shared Writer
	if opts.SharedKeyboard {
		kb, err := NewKeyboard(opts.UinputPath, "flipmouse keyboard")
		if err != nil {
			return fail(err)
		}
		shared = kb
		s.sinks = append(s.sinks, kb)
	}

	for _, dev := range devs {
		kt := keymaps.GetKeyboardType(dev.Name)
		if opts.ForceKeymap {
			kt = opts.Keymap
		}
		km := opts.Keymaps.GetMapping(kt)
		src := &Source{
			Name: dev.Name,
			Path: dev.Fn,
			Keys: classifier.New(opts.Config, km, logging.Subsystem(opts.Log, "classifier"), opts.Debug),
			dev:  dev,
			tag:  fmt.Sprintf("%d", dev.File.Fd()),
		}
		s.sources = append(s.sources, src)
		attached++

		if err := dev.Grab(); err != nil {
			src.dev = nil
			dev.File.Close()
			return fail(errors.Annotatef(err, "grab %s (%s)", dev.Fn, dev.Name))
		}
		if shared != nil {
			src.Keyboard = shared
		} else {
			kb, err := NewMirrorKeyboard(dev)
			if err != nil {
				return fail(err)
			}
			src.Keyboard = kb
			s.sinks = append(s.sinks, kb)
		}
		s.log.Info().Str("device", dev.Name).Str("path", dev.Fn).Str("keymap", km.Name).Msg("attached")
	}
	return s, nil
}

// Run waits on all sources at once and classifies events one at a time
// until ctx is cancelled or the wait fails.
func (s *Session) Run(ctx context.Context) error {
	fds := make([]unix.PollFd, len(s.sources))
	for i, src := range s.sources {
		fds[i] = unix.PollFd{Fd: int32(src.dev.File.Fd()), Events: unix.POLLIN}
	}
	timeout := int(pollTimeout / time.Millisecond)

	for ctx.Err() == nil {
		n, err := unix.Poll(fds, timeout)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return errors.Annotate(err, "poll")
		}
		if n == 0 {
			continue
		}
		for i := range fds {
			src := s.sources[i]
			re := fds[i].Revents
			if re&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
				return errors.Errorf("poll %s: revents=%#x", src.Path, re)
			}
			if re&unix.POLLIN == 0 {
				continue
			}
			ev, err := src.read()
			if err != nil {
				return err
			}
			s.Handle(src, ev)
		}
	}
	return nil
}

// Handle classifies one event from src and writes the outcome.
func (s *Session) Handle(src *Source, ev classifier.Event) {
	// sync markers are written after every emitted event instead
	if ev.Type == classifier.EvSyn {
		return
	}
	if s.recorder != nil {
		if err := s.recorder.Record(ev); err != nil {
			s.log.Error().Err(err).Msg("record event")
		}
	}
	s.trace(logging.DebugEvtIn, "<"+src.tag+"<", ev)

	d := src.Keys.Decide(s.state, ev)
	for _, e := range d.Before {
		s.emit(src, e.Sink, e.Event)
	}
	switch d.Verdict {
	case classifier.PassThrough:
		s.emit(src, classifier.KeyboardSink, d.Event)
	case classifier.Translate:
		s.emit(src, classifier.PointerSink, d.Event)
	default:
		s.trace(logging.DebugEvtMute, "SSS", ev)
	}
}

func (s *Session) emit(src *Source, sink classifier.Sink, ev classifier.Event) {
	var err error
	if sink == classifier.PointerSink {
		s.trace(logging.DebugEvtMouse, ">M>", ev)
		err = s.pointer.Write(ev)
	} else {
		s.trace(logging.DebugEvtKeyb, ">"+src.tag+">", ev)
		err = src.Keyboard.Write(ev)
	}
	if err != nil {
		s.log.Error().Err(err).Stringer("sink", sink).Stringer("event", ev).Msg("write")
	}
}

func (s *Session) trace(flag logging.Mask, dir string, ev classifier.Event) {
	if !s.debug.Has(flag) {
		return
	}
	if ev.Type == classifier.EvMsc && !s.debug.Has(logging.DebugMsc) {
		return
	}
	s.log.Debug().Str("dir", dir).Stringer("mode", s.state.Mode).Stringer("event", ev).Msg("event")
}

// Mode reports the current classifier mode.
func (s *Session) Mode() classifier.Mode { return s.state.Mode }

// Close releases stuck buttons, destroys the sinks and ungrabs the sources.
func (s *Session) Close() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	if s.pointer != nil {
		now := time.Now()
		if s.state.LeftHeld {
			keep(s.pointer.Write(classifier.Event{Time: now, Type: classifier.EvKey, Code: classifier.BtnLeft}))
		}
		if s.state.RightHeld {
			keep(s.pointer.Write(classifier.Event{Time: now, Type: classifier.EvKey, Code: classifier.BtnRight}))
		}
		keep(s.pointer.Close())
		s.pointer = nil
	}
	for _, k := range s.sinks {
		keep(k.Close())
	}
	s.sinks = nil
	for _, src := range s.sources {
		if src.dev == nil {
			continue
		}
		keep(src.dev.Release())
		keep(src.dev.File.Close())
		src.dev = nil
	}
	return errors.Trace(first)
}
