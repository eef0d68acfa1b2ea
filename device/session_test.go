package device

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipmouse/classifier"
	"github.com/flipmouse/keymaps"
	"github.com/flipmouse/logging"
)

type fakeWriter struct {
	events []classifier.Event
	err    error
	closed bool
}

func (w *fakeWriter) Write(ev classifier.Event) error {
	w.events = append(w.events, ev)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeRecorder struct{ events []classifier.Event }

func (r *fakeRecorder) Record(ev classifier.Event) error {
	r.events = append(r.events, ev)
	return nil
}

var epoch = time.Unix(1700000000, 0)

func at(ms int) time.Time { return epoch.Add(time.Duration(ms) * time.Millisecond) }

func key(code uint16, value int32, ms int) classifier.Event {
	return classifier.Event{Time: at(ms), Type: classifier.EvKey, Code: code, Value: value}
}

func scan(value int32, ms int) classifier.Event {
	return classifier.Event{Time: at(ms), Type: classifier.EvMsc, Code: classifier.MscScan, Value: value}
}

func syn(ms int) classifier.Event {
	return classifier.Event{Time: at(ms), Type: classifier.EvSyn, Code: classifier.SynReport}
}

type fixture struct {
	s        *Session
	pointer  *fakeWriter
	keyboard *fakeWriter
	src      *Source
	rec      *fakeRecorder
}

func newFixture(t testing.TB) *fixture {
	cfg := classifier.DefaultConfig()
	f := &fixture{pointer: &fakeWriter{}, keyboard: &fakeWriter{}, rec: &fakeRecorder{}}
	f.src = &Source{
		Name:     "mtk-kpd",
		Path:     "/dev/input/event1",
		Keys:     classifier.New(cfg, keymaps.GetPhoneKeyMapping(), zerolog.Nop(), 0),
		Keyboard: f.keyboard,
		tag:      "3",
	}
	f.s = &Session{
		log:      zerolog.Nop(),
		debug:    logging.DebugAll,
		state:    classifier.NewState(cfg),
		sources:  []*Source{f.src},
		pointer:  f.pointer,
		sinks:    []Writer{f.keyboard},
		recorder: f.rec,
	}
	return f
}

func (f *fixture) feed(events ...classifier.Event) {
	for _, ev := range events {
		f.s.Handle(f.src, ev)
	}
}

func TestShortTapReachesKeyboardAsKeystroke(t *testing.T) {
	f := newFixture(t)
	f.feed(key(139, 1, 0), syn(0), key(139, 0, 50), syn(50))

	require.Len(t, f.keyboard.events, 2)
	assert.Equal(t, int32(1), f.keyboard.events[0].Value)
	assert.Equal(t, int32(0), f.keyboard.events[1].Value)
	for _, ev := range f.keyboard.events {
		assert.Equal(t, uint16(139), ev.Code)
	}
	assert.Empty(t, f.pointer.events)
	assert.Equal(t, classifier.KeyboardPass, f.s.Mode())
}

func TestLongPressWigglesPointerOnly(t *testing.T) {
	f := newFixture(t)
	f.feed(key(139, 1, 0), key(139, 0, 300))

	assert.Empty(t, f.keyboard.events)
	require.Len(t, f.pointer.events, 2)
	assert.Equal(t, int32(1), f.pointer.events[0].Value)
	assert.Equal(t, int32(-1), f.pointer.events[1].Value)
	assert.Equal(t, classifier.PointerActive, f.s.Mode())
}

func TestPointerModeRoutesScansToPointer(t *testing.T) {
	f := newFixture(t)
	f.feed(key(139, 1, 0), key(139, 0, 300))
	f.pointer.events = nil

	f.feed(scan(35, 400), key(103, 1, 400), scan(35, 430), key(103, 0, 460), scan(77, 470))

	require.Len(t, f.pointer.events, 2)
	for _, ev := range f.pointer.events {
		assert.Equal(t, uint16(classifier.EvRel), ev.Type)
		assert.Equal(t, uint16(classifier.RelY), ev.Code)
		assert.Equal(t, int32(-4), ev.Value)
	}
	// only the unknown scan value reaches the keyboard
	assert.Equal(t, []classifier.Event{scan(77, 470)}, f.keyboard.events)
}

func TestSyncIsNotClassifiedOrRecorded(t *testing.T) {
	f := newFixture(t)
	f.feed(syn(0), key(28, 1, 10), syn(10))

	assert.Equal(t, []classifier.Event{key(28, 1, 10)}, f.rec.events)
	assert.Equal(t, []classifier.Event{key(28, 1, 10)}, f.keyboard.events)
}

func TestWriteErrorDoesNotStopSession(t *testing.T) {
	f := newFixture(t)
	f.keyboard.err = errors.New("device gone")

	f.feed(key(28, 1, 0), key(28, 0, 10))
	assert.Len(t, f.keyboard.events, 2)
}

func TestSourcesShareMode(t *testing.T) {
	f := newFixture(t)
	other := &fakeWriter{}
	src2 := &Source{
		Name:     "matrix-keypad",
		Keys:     f.src.Keys,
		Keyboard: other,
		tag:      "4",
	}
	f.feed(key(139, 1, 0), key(139, 0, 300))

	f.s.Handle(src2, key(28, 1, 400))
	assert.Empty(t, other.events)
	assert.Equal(t, key(classifier.BtnLeft, 1, 400), f.pointer.events[len(f.pointer.events)-1])
}

func TestCloseReleasesHeldButtons(t *testing.T) {
	f := newFixture(t)
	f.feed(key(139, 1, 0), key(139, 0, 300), key(28, 1, 400))
	f.pointer.events = nil

	require.NoError(t, f.s.Close())

	require.Len(t, f.pointer.events, 1)
	assert.Equal(t, uint16(classifier.BtnLeft), f.pointer.events[0].Code)
	assert.Equal(t, int32(0), f.pointer.events[0].Value)
	assert.True(t, f.pointer.closed)
	assert.True(t, f.keyboard.closed)
}

func TestFindInputDevicesSkipsRegularFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "event0"), nil, 0644))

	_, err := FindInputDevices(dir, keymaps.IsWanted)
	assert.True(t, errors.IsNotFound(err), "%v", err)
}

func TestFindInputDevicesMissingDir(t *testing.T) {
	_, err := FindInputDevices(filepath.Join(t.TempDir(), "nope"), keymaps.IsWanted)
	require.Error(t, err)
	assert.False(t, errors.IsNotFound(err))
}
