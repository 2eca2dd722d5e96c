package led

import "codeberg.org/mutker/wifimon/internal/status"

// Color is an RGB triple as sent to the strip
type Color struct {
	R, G, B uint8
}

// Strip is an addressable LED strip. SetPixel stages a color; Refresh
// pushes staged colors to the LEDs; Clear turns every LED off.
type Strip interface {
	SetPixel(index int, c Color) error
	Refresh() error
	Clear() error
}

// Source provides the status to display
type Source interface {
	Load() status.State
}
