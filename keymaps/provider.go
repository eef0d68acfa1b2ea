package keymaps

// WantedDevices is the allow-list of source device names.
var WantedDevices = []string{"mtk-kpd", "matrix-keypad", "AT Translated Set 2 keyboard"}

// IsWanted reports whether a device name is on the allow-list.
func IsWanted(deviceName string) bool {
	for _, wanted := range WantedDevices {
		if deviceName == wanted {
			return true
		}
	}
	return false
}

// CreateDefaultKeyMappingProvider creates and returns a provider with all default mappings
func CreateDefaultKeyMappingProvider() *KeyMappingProvider {
	provider := NewKeyMappingProvider()

	// Register all available mappings
	RegisterPhoneKeyMapping(provider)
	RegisterLaptopKeyMapping(provider)

	return provider
}

// GetKeyboardType determines the keyboard type based on device name
func GetKeyboardType(deviceName string) KeyboardType {
	switch deviceName {
	case "AT Translated Set 2 keyboard":
		return KbdTypeLaptop
	default:
		return KbdTypePhone
	}
}

// ParseKeyboardType maps a keymap name given on the command line to a type.
func ParseKeyboardType(name string) (KeyboardType, bool) {
	switch name {
	case "phone", "tcl-flip-2":
		return KbdTypePhone, true
	case "laptop":
		return KbdTypeLaptop, true
	}
	return KbdTypePhone, false
}
