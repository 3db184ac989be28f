package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the server startup banner.
func PrintBanner(w io.Writer, version, addr string) {
	p := termenv.Ascii
	if IsTerminal(w) {
		p = termenv.ColorProfile()
	}
	title := termenv.String("coredata " + version).Foreground(p.Color("#818cf8")).Bold()
	listen := termenv.String("listening on " + addr).Foreground(p.Color("#c084fc"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, listen)
	fmt.Fprintln(w)
}
