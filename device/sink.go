package device

import (
	"github.com/bendahl/uinput"
	evdev "github.com/gvalkov/golang-evdev"
	hevdev "github.com/holoplot/go-evdev"
	"github.com/juju/errors"

	"github.com/flipmouse/classifier"
)

const UinputPath = "/dev/uinput"

// Writer is a virtual device. Every Write leaves the device synced.
type Writer interface {
	Write(ev classifier.Event) error
	Close() error
}

// Mouse is the virtual pointer.
type Mouse struct {
	m uinput.Mouse
}

func NewMouse(path, name string) (*Mouse, error) {
	m, err := uinput.CreateMouse(path, []byte(name))
	if err != nil {
		return nil, errors.Annotatef(err, "create virtual mouse on %s", path)
	}
	return &Mouse{m: m}, nil
}

func (s *Mouse) Write(ev classifier.Event) error {
	switch ev.Type {
	case classifier.EvRel:
		switch ev.Code {
		case classifier.RelX:
			return s.m.Move(ev.Value, 0)
		case classifier.RelY:
			return s.m.Move(0, ev.Value)
		case classifier.RelWheel:
			return s.m.Wheel(false, ev.Value)
		case classifier.RelHWheel:
			return s.m.Wheel(true, ev.Value)
		}
	case classifier.EvKey:
		down := ev.Value != classifier.Release
		switch ev.Code {
		case classifier.BtnLeft:
			if down {
				return s.m.LeftPress()
			}
			return s.m.LeftRelease()
		case classifier.BtnRight:
			if down {
				return s.m.RightPress()
			}
			return s.m.RightRelease()
		}
	}
	return errors.NotSupportedf("pointer event %s", ev)
}

func (s *Mouse) Close() error { return s.m.Close() }

// MirrorKeyboard is a virtual keyboard with the key and scan capabilities of
// the grabbed source, so passed-through events look like the original.
type MirrorKeyboard struct {
	dev *hevdev.InputDevice
}

func NewMirrorKeyboard(src *evdev.InputDevice) (*MirrorKeyboard, error) {
	caps := map[hevdev.EvType][]hevdev.EvCode{}
	for typ, codes := range src.CapabilitiesFlat {
		if typ != evdev.EV_KEY && typ != evdev.EV_MSC {
			continue
		}
		for _, code := range codes {
			caps[hevdev.EvType(typ)] = append(caps[hevdev.EvType(typ)], hevdev.EvCode(code))
		}
	}
	id := hevdev.InputID{
		BusType: src.Bustype,
		Vendor:  src.Vendor,
		Product: src.Product,
		Version: src.Version,
	}
	// keep the name, the platform picks its key layout by it
	dev, err := hevdev.CreateDevice(src.Name, id, caps)
	if err != nil {
		return nil, errors.Annotatef(err, "mirror keyboard for %s", src.Fn)
	}
	return &MirrorKeyboard{dev: dev}, nil
}

func (k *MirrorKeyboard) Write(ev classifier.Event) error {
	err := k.dev.WriteOne(&hevdev.InputEvent{
		Type:  hevdev.EvType(ev.Type),
		Code:  hevdev.EvCode(ev.Code),
		Value: ev.Value,
	})
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(k.dev.WriteOne(&hevdev.InputEvent{Type: hevdev.EV_SYN, Code: hevdev.SYN_REPORT}))
}

func (k *MirrorKeyboard) Close() error { return k.dev.Close() }

// sharedKeyMax is the highest key code the uinput keyboard registers.
const sharedKeyMax = 248

// Keyboard is one virtual keyboard shared by all sources. It only carries
// key presses and releases of codes up to sharedKeyMax; scan and repeat
// events and higher codes such as the phone's * and # are dropped.
type Keyboard struct {
	kb uinput.Keyboard
}

func NewKeyboard(path, name string) (*Keyboard, error) {
	kb, err := uinput.CreateKeyboard(path, []byte(name))
	if err != nil {
		return nil, errors.Annotatef(err, "create virtual keyboard on %s", path)
	}
	return &Keyboard{kb: kb}, nil
}

func (k *Keyboard) Write(ev classifier.Event) error {
	if ev.Type != classifier.EvKey || ev.Code > sharedKeyMax {
		return nil
	}
	switch ev.Value {
	case classifier.Press:
		return k.kb.KeyDown(int(ev.Code))
	case classifier.Release:
		return k.kb.KeyUp(int(ev.Code))
	}
	return nil
}

func (k *Keyboard) Close() error { return k.kb.Close() }
