package keymaps

// Direction is one of the four screen-relative directions.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "none"
}

// KeyMapping defines keyboard key mappings.
// A zero key code disables the binding.
type KeyMapping struct {
	Name string

	ExitKey         uint16
	ToggleMouseKey  uint16
	ClickKey        uint16
	RightClickKey   uint16
	DragKey         uint16
	FasterKey       uint16
	SlowerKey       uint16
	ToggleScrollKey uint16
	UpKey           uint16
	DownKey         uint16
	LeftKey         uint16
	RightKey        uint16

	// ScanChannel reports that the keypad repeats MSC_SCAN while a key is
	// held. Motion then comes from the scan values, not the key events.
	ScanChannel bool
	ToggleScan  int32
	MoveScans   map[int32]Direction
	ButtonScans map[int32]uint16
	WheelScans  map[int32]Direction
}

// Direction returns the direction bound to a key code.
func (m KeyMapping) Direction(code uint16) (Direction, bool) {
	if code == 0 {
		return 0, false
	}
	switch code {
	case m.UpKey:
		return Up, true
	case m.DownKey:
		return Down, true
	case m.LeftKey:
		return Left, true
	case m.RightKey:
		return Right, true
	}
	return 0, false
}

// IsToggleScan reports whether a scan value belongs to the toggle key.
func (m KeyMapping) IsToggleScan(value int32) bool {
	return m.ScanChannel && value == m.ToggleScan
}

// KeyboardType identifies a family of keypads sharing one mapping.
type KeyboardType int

const (
	KbdTypePhone KeyboardType = iota
	KbdTypeLaptop
)

func (t KeyboardType) String() string {
	if t == KbdTypeLaptop {
		return "laptop"
	}
	return "phone"
}

// KeyMappingProvider provides key mappings for different keyboard types
type KeyMappingProvider struct {
	mappings map[KeyboardType]KeyMapping
}

// NewKeyMappingProvider creates an empty mapping provider
func NewKeyMappingProvider() *KeyMappingProvider {
	return &KeyMappingProvider{
		mappings: map[KeyboardType]KeyMapping{},
	}
}

// GetMapping returns the key mapping for the specified keyboard type
func (p *KeyMappingProvider) GetMapping(keyboardType KeyboardType) KeyMapping {
	mapping, exists := p.mappings[keyboardType]
	if !exists {
		// Default to phone mapping if type not found
		return p.mappings[KbdTypePhone]
	}
	return mapping
}

// RegisterMapping registers a new key mapping for a specific keyboard type
func (p *KeyMappingProvider) RegisterMapping(keyboardType KeyboardType, mapping KeyMapping) {
	p.mappings[keyboardType] = mapping
}
