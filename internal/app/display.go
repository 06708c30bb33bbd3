package app

import (
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// LineKind selects how a display line is styled.
type LineKind uint8

const (
	// LineInfo is a status message.
	LineInfo LineKind = iota

	// LineMatch reports a matched word.
	LineMatch

	// LineScript is output printed by a Lua script.
	LineScript

	// LineError reports a failure.
	LineError
)

// Display shows the output of word actions.
type Display interface {
	// Show prints one line.
	Show(kind LineKind, line string)

	// Bell rings the terminal bell.
	Bell()
}

// WriterDisplay writes colored lines to an io.Writer.
type WriterDisplay struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterDisplay creates a display writing to w.
func NewWriterDisplay(w io.Writer) *WriterDisplay {
	return &WriterDisplay{w: w}
}

var lineColors = map[LineKind]*color.Color{
	LineInfo:   color.New(color.FgCyan),
	LineMatch:  color.New(color.FgGreen, color.Bold),
	LineScript: color.New(color.Reset),
	LineError:  color.New(color.FgRed),
}

// Show implements Display.
func (d *WriterDisplay) Show(kind LineKind, line string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := lineColors[kind]
	if !ok {
		c = lineColors[LineInfo]
	}
	_, _ = c.Fprintln(d.w, line)
}

// Bell implements Display.
func (d *WriterDisplay) Bell() {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, _ = io.WriteString(d.w, "\a")
}

// maxScreenLines bounds the history kept by ScreenDisplay.
const maxScreenLines = 500

type screenLine struct {
	kind LineKind
	text string
}

// ScreenDisplay draws a scrolling log of lines on a tcell screen, with a
// title row at the top and a status row at the bottom.
type ScreenDisplay struct {
	mu     sync.Mutex
	screen tcell.Screen
	title  string
	status func() string
	lines  []screenLine
}

// NewScreenDisplay creates a display on an initialized screen. status, if
// non-nil, is called on every redraw to fill the bottom row.
func NewScreenDisplay(screen tcell.Screen, title string, status func() string) *ScreenDisplay {
	return &ScreenDisplay{
		screen: screen,
		title:  title,
		status: status,
	}
}

var lineStyles = map[LineKind]tcell.Style{
	LineInfo:   tcell.StyleDefault.Foreground(tcell.ColorTeal),
	LineMatch:  tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true),
	LineScript: tcell.StyleDefault,
	LineError:  tcell.StyleDefault.Foreground(tcell.ColorRed),
}

// Show implements Display.
func (d *ScreenDisplay) Show(kind LineKind, line string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, l := range strings.Split(line, "\n") {
		d.lines = append(d.lines, screenLine{kind: kind, text: l})
	}
	if over := len(d.lines) - maxScreenLines; over > 0 {
		d.lines = append(d.lines[:0], d.lines[over:]...)
	}
	d.drawLocked()
}

// Bell implements Display.
func (d *ScreenDisplay) Bell() {
	_ = d.screen.Beep() // not every terminal supports it
}

// Redraw repaints the whole screen, e.g. after a resize.
func (d *ScreenDisplay) Redraw() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drawLocked()
}

// Lines returns the text of the retained lines.
func (d *ScreenDisplay) Lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]string, len(d.lines))
	for i, l := range d.lines {
		out[i] = l.text
	}
	return out
}

func (d *ScreenDisplay) drawLocked() {
	d.screen.Clear()
	width, height := d.screen.Size()
	if width <= 0 || height <= 0 {
		return
	}

	drawText(d.screen, 0, 0, width, d.title, tcell.StyleDefault.Reverse(true))

	body := height - 2
	if body < 0 {
		body = 0
	}
	start := len(d.lines) - body
	if start < 0 {
		start = 0
	}
	for i, l := range d.lines[start:] {
		drawText(d.screen, 0, i+1, width, l.text, lineStyles[l.kind])
	}

	if d.status != nil && height > 1 {
		drawText(d.screen, 0, height-1, width, d.status(), tcell.StyleDefault.Dim(true))
	}
	d.screen.Show()
}

// drawText draws s on row y from column x, one grapheme cluster per cell
// group, clipped at width.
func drawText(screen tcell.Screen, x, y, width int, s string, style tcell.Style) {
	state := -1
	for s != "" {
		var cluster string
		var w int
		cluster, s, w, state = uniseg.FirstGraphemeClusterInString(s, state)
		if x+w > width {
			return
		}
		runes := []rune(cluster)
		screen.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
}
