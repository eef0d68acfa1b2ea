package keymaps

// GetLaptopKeyMapping returns key mappings for laptop-type keyboards.
// The AT keyboard has no repeating scan channel, so arrows move by key repeat.
func GetLaptopKeyMapping() KeyMapping {
	n := KeyMapping{Name: "laptop"}
	n.ExitKey = 1          // Esc
	n.ToggleMouseKey = 29  // left ctrl
	n.ClickKey = 57        // space
	n.RightClickKey = 100  // right alt
	n.DragKey = 32         // D key
	n.FasterKey = 13       // = key
	n.SlowerKey = 12       // - key
	n.ToggleScrollKey = 31 // S key
	n.UpKey = 103          // up arrow
	n.DownKey = 108        // down arrow
	n.LeftKey = 105        // left arrow
	n.RightKey = 106       // right arrow
	return n
}

// RegisterLaptopKeyMapping registers laptop keyboard mapping with the provider
func RegisterLaptopKeyMapping(provider *KeyMappingProvider) {
	provider.RegisterMapping(KbdTypeLaptop, GetLaptopKeyMapping())
}
