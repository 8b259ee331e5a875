package host

// KeyTable is the default Inputs adapter: an in-memory scancode →
// KeyState map, ingesting events per §6.3's exact rule (grounded on
// original_source/src/systems/inputs.rs's handle_key_event). Unlike
// the original, which pre-seeds a fixed QWERTY letter set, entries
// here are created lazily on first event — any scancode is valid, the
// original's fixed key list was an artifact of its hard-coded demo
// keymap, not a protocol requirement.
type KeyTable struct {
	keys map[uint32]KeyState
}

// NewKeyTable returns an empty key table; every scancode reads as
// Released until an event arrives for it.
func NewKeyTable() *KeyTable {
	return &KeyTable{keys: make(map[uint32]KeyState)}
}

// HandleKeyEvent ingests one event. On press: JustPressed → Pressed,
// anything else → JustPressed. On release: always Released.
func (k *KeyTable) HandleKeyEvent(scancode uint32, pressed bool) {
	if !pressed {
		k.keys[scancode] = KeyReleased
		return
	}
	if k.keys[scancode] == KeyJustPressed {
		k.keys[scancode] = KeyPressed
	} else {
		k.keys[scancode] = KeyJustPressed
	}
}

func (k *KeyTable) state(scancode uint32) KeyState {
	st, ok := k.keys[scancode]
	if !ok {
		return KeyReleased
	}
	return st
}

func (k *KeyTable) IsKeyReleased(scancode uint32) bool    { return k.state(scancode) == KeyReleased }
func (k *KeyTable) IsKeyJustPressed(scancode uint32) bool { return k.state(scancode) == KeyJustPressed }
func (k *KeyTable) IsKeyPressed(scancode uint32) bool     { return k.state(scancode) == KeyPressed }
