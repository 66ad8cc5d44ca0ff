package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/skirmish/internal/entity"
	"github.com/samdwyer/skirmish/internal/menu"
	"github.com/samdwyer/skirmish/internal/world"
)

// Battle screen layout.
const (
	enemyColumn = 4
	heroColumn  = 52
	unitTop     = 4
	unitSpacing = 3
	menuTop     = 14
	menuHeight  = 8
)

// BattleView is everything the renderer needs to draw a battle.
type BattleView struct {
	Heroes     []*entity.Unit
	Enemies    []*entity.Unit
	Actor      *entity.Unit
	HeroMenu   *menu.Menu
	ActionMenu *menu.Menu
	EnemyMenu  *menu.Menu
	Current    *menu.Menu
	ActionHint func(index int) string // Optional suffix for action entries
	Message    string
}

// Renderer handles drawing the game to the screen.
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// RenderField draws the exploration field, the explorer and a status line.
// Encounter zones are invisible.
func (r *Renderer) RenderField(field *world.Field, explorer *entity.Explorer, status string) {
	r.screen.Clear()

	for y := 0; y < field.Height; y++ {
		for x := 0; x < field.Width; x++ {
			tile := field.GetTile(x, y)
			r.screen.SetContent(x, y, tile.Rune(), tileStyle(tile))
		}
	}

	explorerStyle := tcell.StyleDefault.
		Foreground(tcell.ColorYellow).
		Bold(true)
	r.screen.SetContent(explorer.X, explorer.Y, explorer.Symbol(), explorerStyle)

	r.renderStatus(field.Height+1, status)
	r.screen.Show()
}

// RenderBattle draws both rosters, the three menus and the message banner.
func (r *Renderer) RenderBattle(v BattleView) {
	r.screen.Clear()

	for i, u := range v.Enemies {
		r.renderUnit(enemyColumn, unitTop+i*unitSpacing, u, u == v.Actor)
	}
	for i, u := range v.Heroes {
		r.renderUnit(heroColumn, unitTop+i*unitSpacing, u, u == v.Actor)
	}

	r.renderMenu(0, 26, v.EnemyMenu, v.Current, nil)
	r.renderMenu(27, 24, v.ActionMenu, v.Current, v.ActionHint)
	r.renderMenu(52, 28, v.HeroMenu, v.Current, nil)

	if v.Message != "" {
		r.renderBanner(v.Message)
	}
	r.screen.Show()
}

// RenderMessage displays a message on the given row.
func (r *Renderer) RenderMessage(msg string, y int) {
	r.screen.DrawText(0, y, msg, tcell.StyleDefault.Foreground(tcell.ColorWhite))
}

func (r *Renderer) renderStatus(y int, status string) {
	if status == "" {
		return
	}
	r.RenderMessage(status, y)
}

func (r *Renderer) renderUnit(x, y int, u *entity.Unit, acting bool) {
	style := tcell.StyleDefault.Foreground(u.Color)
	if !u.IsAlive() {
		style = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	}
	if acting {
		style = style.Bold(true).Underline(true)
	}
	r.screen.SetContent(x, y, u.Symbol, style)
	r.screen.DrawText(x+2, y, u.Kind, style)
	r.screen.DrawText(x+2, y+1, hpBar(u, 10), tcell.StyleDefault.Foreground(tcell.ColorGray))
}

func (r *Renderer) renderMenu(x, w int, m, current *menu.Menu, hint func(int) string) {
	if m == nil {
		return
	}
	frame := tcell.StyleDefault.Foreground(tcell.ColorGray)
	if m == current {
		frame = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	}
	r.screen.DrawBox(x, menuTop, w, menuHeight, m.Title, frame)

	for i, e := range m.Entries() {
		if i >= menuHeight-2 {
			break
		}
		if !e.Active() {
			continue
		}
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
		marker := ' '
		if e.Selected() {
			style = tcell.StyleDefault.Foreground(tcell.NewHexColor(0xF8FF38))
			marker = '>'
		}
		label := e.Label
		if hint != nil {
			label += hint(i)
		}
		r.screen.SetContent(x+1, menuTop+1+i, marker, style)
		r.screen.DrawText(x+3, menuTop+1+i, label, style)
	}
}

func (r *Renderer) renderBanner(msg string) {
	width, _ := r.screen.Size()
	w := len(msg) + 4
	x := (width - w) / 2
	if x < 0 {
		x = 0
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.NewHexColor(0x031F4C))
	r.screen.DrawBox(x, 0, w, 3, "", style)
	r.screen.DrawText(x+2, 1, msg, style)
}

func tileStyle(tile world.Tile) tcell.Style {
	switch tile {
	case world.TileTree:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	case world.TileGrass:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	default:
		return tcell.StyleDefault
	}
}

// hpBar renders "[#####     ] 55/55" with width cells.
func hpBar(u *entity.Unit, width int) string {
	filled := 0
	if u.MaxHP > 0 {
		filled = u.HP * width / u.MaxHP
	}
	if u.HP > 0 && filled == 0 {
		filled = 1
	}
	bar := make([]rune, width)
	for i := range bar {
		if i < filled {
			bar[i] = '#'
		} else {
			bar[i] = ' '
		}
	}
	return fmt.Sprintf("[%s] %d/%d", string(bar), u.HP, u.MaxHP)
}
