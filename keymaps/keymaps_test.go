package keymaps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderSelectsByDeviceName(t *testing.T) {
	p := CreateDefaultKeyMappingProvider()

	for _, tc := range []struct {
		device string
		want   string
	}{
		{"mtk-kpd", "tcl-flip-2"},
		{"matrix-keypad", "tcl-flip-2"},
		{"AT Translated Set 2 keyboard", "laptop"},
	} {
		assert.True(t, IsWanted(tc.device), tc.device)
		assert.Equal(t, tc.want, p.GetMapping(GetKeyboardType(tc.device)).Name, tc.device)
	}
	assert.False(t, IsWanted("Logitech USB Receiver"))
}

func TestProviderFallsBackToPhone(t *testing.T) {
	p := NewKeyMappingProvider()
	RegisterPhoneKeyMapping(p)
	assert.Equal(t, "tcl-flip-2", p.GetMapping(KbdTypeLaptop).Name)
}

func TestPhoneMappingTables(t *testing.T) {
	m := GetPhoneKeyMapping()

	assert.True(t, m.IsToggleScan(33))
	assert.False(t, m.IsToggleScan(35))
	assert.Equal(t, map[int32]Direction{35: Up, 9: Down, 19: Left, 34: Right}, m.MoveScans)

	// a scan value means one thing only
	for v := range m.MoveScans {
		assert.NotContains(t, m.ButtonScans, v)
		assert.NotContains(t, m.WheelScans, v)
		assert.NotEqual(t, m.ToggleScan, v)
	}
	for v := range m.ButtonScans {
		assert.NotContains(t, m.WheelScans, v)
	}
}

func TestDirection(t *testing.T) {
	m := GetLaptopKeyMapping()
	d, ok := m.Direction(105)
	assert.True(t, ok)
	assert.Equal(t, Left, d)

	_, ok = m.Direction(0)
	assert.False(t, ok)
	_, ok = m.Direction(57)
	assert.False(t, ok)
	assert.False(t, m.IsToggleScan(0), "no scan channel on the laptop")
}

func TestParseKeyboardType(t *testing.T) {
	kt, ok := ParseKeyboardType("laptop")
	assert.True(t, ok)
	assert.Equal(t, KbdTypeLaptop, kt)
	_, ok = ParseKeyboardType("gamepad")
	assert.False(t, ok)
}
