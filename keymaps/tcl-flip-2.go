package keymaps

// GetPhoneKeyMapping returns key mappings for phone-type keyboards
func GetPhoneKeyMapping() KeyMapping {
	type keyAddresses struct {
		Key1        uint16
		Key3        uint16
		AsteriskKey uint16
		HashKey     uint16

		StarKey      uint16
		SoftLeftKey  uint16
		SoftRightKey uint16

		CallKey    uint16
		EndCallKey uint16

		VolumeUpKey   uint16
		VolumeDownKey uint16
		EnterKey      uint16
		UpKey         uint16
		DownKey       uint16
		LeftKey       uint16
		RightKey      uint16
	}
	ka := keyAddresses{
		// Numberpad
		Key1:        2,
		Key3:        4,
		AsteriskKey: 522,
		HashKey:     523,

		// Shortcuts
		StarKey:      138,
		SoftLeftKey:  139, // KEY_MENU
		SoftRightKey: 48,

		// Call Keys
		CallKey:    231,
		EndCallKey: 116, // KEY_POWER

		VolumeUpKey:   115,
		VolumeDownKey: 114,
		EnterKey:      28,
		UpKey:         103,
		DownKey:       108,
		LeftKey:       105,
		RightKey:      106,
	}

	// mtk-kpd scan values, repeated while the key is held
	const (
		scanSoftLeft = 33
		scanUp       = 35
		scanDown     = 9
		scanLeft     = 19
		scanRight    = 34
	)

	return KeyMapping{
		Name:            "tcl-flip-2",
		ExitKey:         ka.EndCallKey,
		ToggleMouseKey:  ka.SoftLeftKey,
		ClickKey:        ka.EnterKey,
		RightClickKey:   ka.SoftRightKey,
		DragKey:         ka.Key3,
		FasterKey:       ka.VolumeUpKey,
		SlowerKey:       ka.VolumeDownKey,
		ToggleScrollKey: ka.HashKey,
		UpKey:           ka.UpKey,
		DownKey:         ka.DownKey,
		LeftKey:         ka.LeftKey,
		RightKey:        ka.RightKey,

		ScanChannel: true,
		ToggleScan:  scanSoftLeft,
		MoveScans: map[int32]Direction{
			scanUp:    Up,
			scanDown:  Down,
			scanLeft:  Left,
			scanRight: Right,
		},
		// Only consulted when scan buttons and wheel scans are enabled.
		ButtonScans: map[int32]uint16{
			43: 0x110, // BTN_LEFT
			26: 0x110,
			25: 0x111, // BTN_RIGHT
		},
		WheelScans: map[int32]Direction{
			0:  Up,
			1:  Up,
			18: Down,
			16: Down,
			10: Left,
			8:  Right,
		},
	}
}

// RegisterPhoneKeyMapping registers phone keyboard mapping with the provider
func RegisterPhoneKeyMapping(provider *KeyMappingProvider) {
	provider.RegisterMapping(KbdTypePhone, GetPhoneKeyMapping())
}
