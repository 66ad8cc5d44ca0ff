// Package menu provides the cyclic selection lists used during battle.
//
// A single Menu type serves every battle menu; what happens when the player
// commits to an entry is supplied at construction as a confirm callback.
package menu

import (
	"errors"

	"github.com/samdwyer/skirmish/internal/entity"
)

// ErrNoActiveEntry is returned when navigation has no active entry to land on.
var ErrNoActiveEntry = errors.New("menu has no active entry")

// Entry is one selectable line of a menu.
type Entry struct {
	Label    string
	active   bool
	selected bool
}

// Active reports whether the entry can be landed on.
func (e *Entry) Active() bool { return e.active }

// Selected reports whether the entry is highlighted.
func (e *Entry) Selected() bool { return e.selected }

// Deactivate removes the entry from navigation. Called by a unit on death.
func (e *Entry) Deactivate() {
	e.active = false
	e.selected = false
}

func (e *Entry) selectEntry()   { e.selected = true }
func (e *Entry) deselectEntry() { e.selected = false }

var _ entity.Slot = (*Entry)(nil)

// Menu is an ordered list of entries with a cursor.
type Menu struct {
	Title     string
	entries   []*Entry
	cursor    int
	selected  bool
	onConfirm func(index int)
}

// New creates an empty menu. onConfirm may be nil for display-only menus.
func New(title string, onConfirm func(index int)) *Menu {
	return &Menu{Title: title, onConfirm: onConfirm}
}

// Append adds an active entry at the end and returns it so the caller can
// bind it to a unit.
func (m *Menu) Append(label string) *Entry {
	e := &Entry{Label: label, active: true}
	m.entries = append(m.entries, e)
	return e
}

// MoveUp moves the cursor to the previous active entry, wrapping around.
func (m *Menu) MoveUp() error {
	return m.step(-1)
}

// MoveDown moves the cursor to the next active entry, wrapping around.
func (m *Menu) MoveDown() error {
	return m.step(1)
}

func (m *Menu) step(delta int) error {
	if m.ActiveCount() == 0 {
		return ErrNoActiveEntry
	}
	m.deselectCurrent()

	n := len(m.entries)
	for {
		m.cursor = ((m.cursor+delta)%n + n) % n
		if m.entries[m.cursor].active {
			break
		}
	}
	m.entries[m.cursor].selectEntry()
	return nil
}

// SelectAt puts the menu in selected mode with the cursor on index, or on
// the next active entry after it. It returns false, leaving the menu
// unselected, when no entry is active or index is out of range.
func (m *Menu) SelectAt(index int) bool {
	if index < 0 || index >= len(m.entries) {
		return false
	}
	m.deselectCurrent()
	m.cursor = index

	for !m.entries[m.cursor].active {
		m.cursor++
		if m.cursor >= len(m.entries) {
			m.cursor = 0
		}
		if m.cursor == index {
			m.selected = false
			return false
		}
	}
	m.entries[m.cursor].selectEntry()
	m.selected = true
	return true
}

// Deselect clears the highlight, resets the cursor and leaves selected mode.
func (m *Menu) Deselect() {
	m.deselectCurrent()
	m.cursor = 0
	m.selected = false
}

// Confirm commits to the entry under the cursor. It does nothing unless the
// menu is in selected mode and has a confirm callback.
func (m *Menu) Confirm() bool {
	if !m.selected || m.onConfirm == nil {
		return false
	}
	m.onConfirm(m.cursor)
	return true
}

// Clear drops every entry and resets the cursor.
func (m *Menu) Clear() {
	m.entries = nil
	m.cursor = 0
	m.selected = false
}

// Remap rebuilds the menu from a roster, binding each new entry back onto
// its unit. Dead units get an inactive entry.
func (m *Menu) Remap(units []*entity.Unit) {
	m.Clear()
	for _, u := range units {
		u.BindSlot(m.Append(u.Label()))
	}
	m.cursor = 0
}

func (m *Menu) deselectCurrent() {
	if m.cursor < len(m.entries) {
		m.entries[m.cursor].deselectEntry()
	}
}

// Entries returns the menu lines in order.
func (m *Menu) Entries() []*Entry { return m.entries }

// Len returns the number of entries.
func (m *Menu) Len() int { return len(m.entries) }

// Cursor returns the index under the cursor.
func (m *Menu) Cursor() int { return m.cursor }

// IsSelected reports whether the menu currently accepts input.
func (m *Menu) IsSelected() bool { return m.selected }

// Current returns the entry under the cursor, or nil if the menu is empty.
func (m *Menu) Current() *Entry {
	if m.cursor >= len(m.entries) {
		return nil
	}
	return m.entries[m.cursor]
}

// ActiveCount returns the number of active entries.
func (m *Menu) ActiveCount() int {
	count := 0
	for _, e := range m.entries {
		if e.active {
			count++
		}
	}
	return count
}
