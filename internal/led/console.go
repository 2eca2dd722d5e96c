package led

import (
	"fmt"
	"io"
	"sync"

	"codeberg.org/mutker/wifimon/internal/errors"
	"github.com/charmbracelet/lipgloss"
)

const pixelGlyph = "●"

// ConsoleStrip renders the strip as colored dots on a terminal line,
// rewriting the line on every refresh.
type ConsoleStrip struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *lipgloss.Renderer
	pixels   []Color
	staged   []Color
}

func NewConsoleStrip(out io.Writer, count int) *ConsoleStrip {
	if count < 1 {
		count = 1
	}

	return &ConsoleStrip{
		out:      out,
		renderer: lipgloss.NewRenderer(out),
		pixels:   make([]Color, count),
		staged:   make([]Color, count),
	}
}

func (s *ConsoleStrip) SetPixel(index int, c Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.staged) {
		return errors.New().WithData(ErrInvalidIndex, index)
	}
	s.staged[index] = c

	return nil
}

func (s *ConsoleStrip) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy(s.pixels, s.staged)

	return s.render()
}

func (s *ConsoleStrip) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for n := range s.pixels {
		s.pixels[n] = Color{}
		s.staged[n] = Color{}
	}

	return s.render()
}

// Pixels returns the colors currently shown
func (s *ConsoleStrip) Pixels() []Color {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Color(nil), s.pixels...)
}

func (s *ConsoleStrip) render() error {
	line := "\r"
	for _, c := range s.pixels {
		style := s.renderer.NewStyle().Foreground(lipgloss.Color(hex(c)))
		line += style.Render(pixelGlyph) + " "
	}

	_, err := io.WriteString(s.out, line)

	return err
}

// hex scales the dim firmware intensities to a visible terminal color.
func hex(c Color) string {
	return fmt.Sprintf("#%02x%02x%02x", scale(c.R), scale(c.G), scale(c.B))
}

func scale(v uint8) uint8 {
	if v == 0 {
		return 0
	}
	if v >= 32 {
		return 255
	}

	return v*8 + 7
}
