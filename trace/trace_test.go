package trace

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipmouse/classifier"
	"github.com/flipmouse/keymaps"
)

var epoch = time.Unix(1700000000, 0)

func ev(ms int, typ, code uint16, value int32) classifier.Event {
	return classifier.Event{Time: epoch.Add(time.Duration(ms) * time.Millisecond), Type: typ, Code: code, Value: value}
}

func syn(ms int) classifier.Event { return ev(ms, classifier.EvSyn, classifier.SynReport, 0) }

// longPressSession is what the keypad driver emits for a held toggle key
// followed by one tick of "up".
func longPressSession() []classifier.Event {
	return []classifier.Event{
		ev(0, classifier.EvMsc, classifier.MscScan, 33),
		ev(0, classifier.EvKey, 139, 1),
		syn(0),
		ev(300, classifier.EvMsc, classifier.MscScan, 33),
		ev(300, classifier.EvKey, 139, 0),
		syn(300),
		ev(400, classifier.EvMsc, classifier.MscScan, 35),
		syn(400),
	}
}

func newClassifier() (*classifier.Classifier, *classifier.State) {
	cfg := classifier.DefaultConfig()
	return classifier.New(cfg, keymaps.GetPhoneKeyMapping(), zerolog.Nop(), 0), classifier.NewState(cfg)
}

func record(t *testing.T, events []classifier.Event) *bytes.Buffer {
	var buf bytes.Buffer
	r := NewRecorder(&buf)
	for _, e := range events {
		require.NoError(t, r.Record(e))
	}
	require.NoError(t, r.Close())
	return &buf
}

func TestReplayMatchesLiveClassification(t *testing.T) {
	events := longPressSession()

	c, st := newClassifier()
	var live []classifier.Decision
	for _, e := range events {
		if e.Type != classifier.EvSyn {
			live = append(live, c.Decide(st, e))
		}
	}

	c2, st2 := newClassifier()
	steps, err := Replay(record(t, events), c2, st2)
	require.NoError(t, err)

	require.Len(t, steps, len(live))
	for i, s := range steps {
		assert.Equal(t, live[i], s.Decision, "step %d", i)
	}
	assert.Equal(t, classifier.PointerActive, st2.Mode)
	last := steps[len(steps)-1].Decision
	assert.Equal(t, classifier.Translate, last.Verdict)
	assert.Equal(t, int32(-4), last.Event.Value)
}

func TestReadKeepsTimestamps(t *testing.T) {
	events := []classifier.Event{ev(1234, classifier.EvKey, 28, 1)}
	got, err := Read(record(t, events))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, events[0].Time.Equal(got[0].Time))
}

func TestReadTruncatedRecord(t *testing.T) {
	buf := record(t, longPressSession())
	buf.Truncate(buf.Len() - 3)
	_, err := Read(buf)
	assert.Error(t, err)
}

func TestCreateAndPrint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keypad.trace")
	r, err := Create(path)
	require.NoError(t, err)
	for _, e := range longPressSession() {
		require.NoError(t, r.Record(e))
	}
	require.NoError(t, r.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	c, st := newClassifier()
	steps, err := Replay(f, c, st)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Print(&out, steps))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, len(steps)+2, "one line per step plus the pointer pulse")
	assert.Contains(t, out.String(), "+pointer")
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "translate"))
}
