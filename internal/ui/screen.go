// Package ui provides terminal rendering using tcell.
package ui

import "github.com/gdamore/tcell/v2"

// Screen wraps tcell.Screen with a simplified interface.
type Screen struct {
	screen tcell.Screen
}

// NewScreen creates and initializes a new terminal screen.
func NewScreen() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewScreenFrom(s)
}

// NewScreenFrom initializes and wraps an existing tcell screen, such as a
// simulation screen.
func NewScreenFrom(s tcell.Screen) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	return newScreen(s), nil
}

// newScreen wraps an initialized tcell screen; tests pass a simulation screen.
func newScreen(s tcell.Screen) *Screen {
	s.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	s.Clear()
	return &Screen{screen: s}
}

// Close finalizes the screen and restores terminal state.
func (s *Screen) Close() {
	s.screen.Fini()
}

// PollEvent waits for and returns the next terminal event.
func (s *Screen) PollEvent() tcell.Event {
	return s.screen.PollEvent()
}

// PostInterrupt queues an interrupt event carrying data. It is safe to call
// from any goroutine and is how timers hand work back to the game loop.
func (s *Screen) PostInterrupt(data any) error {
	return s.screen.PostEvent(tcell.NewEventInterrupt(data))
}

// Clear clears the screen buffer.
func (s *Screen) Clear() {
	s.screen.Clear()
}

// Show flushes the screen buffer to the terminal.
func (s *Screen) Show() {
	s.screen.Show()
}

// SetContent sets a single cell's content at the given position.
func (s *Screen) SetContent(x, y int, r rune, style tcell.Style) {
	s.screen.SetContent(x, y, r, nil, style)
}

// DrawText writes str starting at x, y and returns the column after it.
func (s *Screen) DrawText(x, y int, str string, style tcell.Style) int {
	for _, ch := range str {
		s.SetContent(x, y, ch, style)
		x++
	}
	return x
}

// DrawBox draws a single-line frame with an optional title.
func (s *Screen) DrawBox(x, y, w, h int, title string, style tcell.Style) {
	if w < 2 || h < 2 {
		return
	}
	for i := x + 1; i < x+w-1; i++ {
		s.SetContent(i, y, tcell.RuneHLine, style)
		s.SetContent(i, y+h-1, tcell.RuneHLine, style)
	}
	for j := y + 1; j < y+h-1; j++ {
		s.SetContent(x, j, tcell.RuneVLine, style)
		s.SetContent(x+w-1, j, tcell.RuneVLine, style)
	}
	s.SetContent(x, y, tcell.RuneULCorner, style)
	s.SetContent(x+w-1, y, tcell.RuneURCorner, style)
	s.SetContent(x, y+h-1, tcell.RuneLLCorner, style)
	s.SetContent(x+w-1, y+h-1, tcell.RuneLRCorner, style)
	if title != "" {
		s.DrawText(x+2, y, " "+title+" ", style)
	}
}

// Size returns the current terminal dimensions.
func (s *Screen) Size() (width, height int) {
	return s.screen.Size()
}

// Sync forces a complete redraw of the screen.
func (s *Screen) Sync() {
	s.screen.Sync()
}
