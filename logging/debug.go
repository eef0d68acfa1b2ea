package logging

import (
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// Mask selects which categories of diagnostic tracing are printed.
type Mask uint32

const (
	DebugMode      Mask = 0x0001
	DebugTime      Mask = 0x0002
	DebugMsc       Mask = 0x0004
	DebugEvtIn     Mask = 0x0010
	DebugEvtKeyb   Mask = 0x0020
	DebugEvtMouse  Mask = 0x0040
	DebugEvtMute   Mask = 0x0080
	DebugEvtAll         = DebugEvtIn | DebugEvtKeyb | DebugEvtMouse | DebugEvtMute
	DebugAll            = DebugMode | DebugTime | DebugMsc | DebugEvtAll
)

func (m Mask) Has(flag Mask) bool { return m&flag != 0 }

func (m Mask) String() string {
	names := []string{}
	for _, f := range []struct {
		flag Mask
		name string
	}{
		{DebugMode, "mode"},
		{DebugTime, "time"},
		{DebugMsc, "msc"},
		{DebugEvtIn, "in"},
		{DebugEvtKeyb, "keyb"},
		{DebugEvtMouse, "mouse"},
		{DebugEvtMute, "mute"},
	} {
		if m.Has(f.flag) {
			names = append(names, f.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// ParseMask accepts a decimal or 0x-prefixed hex bitmask.
func ParseMask(s string) (Mask, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, errors.Annotatef(err, "debug mask %q", s)
	}
	return Mask(v), nil
}
