package service

// KeyPanStep is how far one arrow key press moves the map content, in pixels.
const KeyPanStep = 100

// HandleKey applies a keyboard shortcut: arrow keys pan, "+" and "=" zoom in,
// "-" zooms out. It reports whether the key was used. Keyboard input must be
// enabled in the options.
func (m *Map) HandleKey(key string) bool {
	if !m.keyboard {
		return false
	}
	switch key {
	case "ArrowUp":
		m.PanByPixels(0, KeyPanStep, nil)
	case "ArrowDown":
		m.PanByPixels(0, -KeyPanStep, nil)
	case "ArrowLeft":
		m.PanByPixels(KeyPanStep, 0, nil)
	case "ArrowRight":
		m.PanByPixels(-KeyPanStep, 0, nil)
	case "+", "=":
		m.ZoomIn(false)
	case "-":
		m.ZoomOut()
	default:
		return false
	}
	return true
}
