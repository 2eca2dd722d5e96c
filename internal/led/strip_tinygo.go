//go:build tinygo

package led

import (
	"image/color"
	"machine"
	"sync"

	"codeberg.org/mutker/wifimon/internal/errors"
	"tinygo.org/x/drivers/ws2812"
)

// ws2812Strip drives a WS2812 chain on a single GPIO
type ws2812Strip struct {
	mu     sync.Mutex
	dev    ws2812.Device
	pixels []color.RGBA
}

// NewStrip configures pin as the WS2812 data line for count LEDs.
func NewStrip(pin int, count int) (Strip, error) {
	if count < 1 {
		return nil, errors.New().WithData(ErrInvalidIndex, count)
	}

	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})

	return &ws2812Strip{
		dev:    ws2812.New(p),
		pixels: make([]color.RGBA, count),
	}, nil
}

// HasDisplay is always true on the board
func HasDisplay() bool {
	return true
}

func (s *ws2812Strip) SetPixel(index int, c Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.pixels) {
		return errors.New().WithData(ErrInvalidIndex, index)
	}
	s.pixels[index] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}

	return nil
}

func (s *ws2812Strip) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dev.WriteColors(s.pixels)
}

func (s *ws2812Strip) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for n := range s.pixels {
		s.pixels[n] = color.RGBA{}
	}

	return s.dev.WriteColors(s.pixels)
}
