//go:build !tinygo

package led

import (
	"os"

	"github.com/mattn/go-isatty"
)

// NewStrip returns the strip of the host build: a console rendering on
// stderr, away from the log stream on stdout. The pin is only
// meaningful on the board.
func NewStrip(_ int, count int) (Strip, error) {
	return NewConsoleStrip(os.Stderr, count), nil
}

// HasDisplay reports whether the strip has somewhere to render. On the
// host that is a terminal on stderr.
func HasDisplay() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
