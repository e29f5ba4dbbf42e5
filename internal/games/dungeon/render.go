package dungeon

import (
	"fmt"

	"github.com/vovakirdan/tui-dungeon/internal/core"
)

// World-to-cell scale: terminal cells are roughly twice as tall as
// wide, so one 32-unit tile becomes two columns and one row.
const (
	cellW = 16
	cellH = 32
)

// hudHeight is the number of screen rows reserved above the map.
const hudHeight = 3

// Render draws the game to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.loadFailed {
		g.renderOverlay(dst, "Failed to load stage", g.loadError)
		return
	}
	if g.coord == nil || g.coord.Current() == nil {
		return
	}

	g.renderHUD(dst)

	stage := g.coord.Current().Stage()
	mapW := stage.Width * 2
	mapH := stage.Height
	if dst.Width() < mapW || dst.Height() < mapH+hudHeight {
		g.renderOverlay(dst, "Window too small", "Resize to continue")
		return
	}
	offX := (dst.Width() - mapW) / 2
	offY := hudHeight

	g.renderTiles(dst, offX, offY)
	g.renderDoors(dst, offX, offY)
	g.renderItems(dst, offX, offY)
	g.renderEnemies(dst, offX, offY)
	g.renderPlayer(dst, offX, offY)

	switch {
	case g.won:
		g.renderOverlay(dst, "You escaped the dungeon!", fmt.Sprintf("Final Score: %d, press R to restart", g.score))
	case g.gameOver:
		g.renderOverlay(dst, "You died", "Press R to restart")
	case g.paused:
		g.renderOverlay(dst, "Paused", "Press P to continue")
	}
}

// cellAt maps a world position to screen cell coordinates.
func cellAt(pos core.Vec2, offX, offY int) (int, int) {
	return offX + int(pos.X)/cellW, offY + int(pos.Y)/cellH
}

// renderHUD draws the status rows above the map.
func (g *Game) renderHUD(dst *core.Screen) {
	stage := g.coord.Current().Stage()
	tracker := g.coord.Current().Tracker()

	hud := fmt.Sprintf(" %s | HP %d/%d  Lv %d  XP %d  Score %d",
		stage.Name, g.player.HP, g.player.MaxHP, g.player.Level, g.player.XP, g.score)
	dst.DrawTextColored(0, 0, hud, core.ColorBrightWhite)

	var status string
	if tracker.IsCleared() {
		status = " Cleared"
	} else {
		status = fmt.Sprintf(" Enemies left: %d", tracker.Remaining())
	}
	dst.DrawTextColored(0, 1, status, core.ColorGray)
	if g.banner != "" {
		bx := (dst.Width() - len(g.banner)) / 2
		dst.DrawTextColored(bx, 1, g.banner, core.ColorBrightYellow)
	}

	for x := 0; x < dst.Width(); x++ {
		dst.Set(x, 2, '─')
	}
}

// renderTiles draws walls; floors stay blank.
func (g *Game) renderTiles(dst *core.Screen, offX, offY int) {
	stage := g.coord.Current().Stage()
	for ty := 0; ty < stage.Height; ty++ {
		for tx := 0; tx < stage.Width; tx++ {
			if !stage.SolidAtTile(tx, ty) {
				continue
			}
			dst.SetCell(offX+tx*2, offY+ty, '#', core.ColorGray)
			dst.SetCell(offX+tx*2+1, offY+ty, '#', core.ColorGray)
		}
	}
}

// renderDoors draws each door with its state glyph and color.
func (g *Game) renderDoors(dst *core.Screen, offX, offY int) {
	for _, d := range g.coord.Current().Doors() {
		x, y := cellAt(d.Pos, offX, offY)
		var r rune
		var color core.Color
		switch d.State() {
		case DoorLocked:
			r, color = '+', core.ColorRed
		case DoorUnlocked:
			r, color = '\'', core.ColorYellow
		case DoorOpen:
			r, color = '‾', core.ColorGreen
		}
		dst.SetCell(x, y, r, color)
	}
}

// renderItems draws collectibles.
func (g *Game) renderItems(dst *core.Screen, offX, offY int) {
	for _, it := range g.items {
		x, y := cellAt(it.Pos, offX, offY)
		dst.SetCell(x, y, itemGlyph(it.Kind), core.ColorBrightCyan)
	}
}

// itemGlyph maps an item kind to its map symbol.
func itemGlyph(kind string) rune {
	switch kind {
	case "health_potion":
		return '!'
	case "experience_gem":
		return '*'
	case "iron_sword":
		return '/'
	case "speed_boots":
		return '='
	default:
		return '?'
	}
}

// renderEnemies draws enemies as their kind letter. Chasing enemies
// show bright to telegraph aggro.
func (g *Game) renderEnemies(dst *core.Screen, offX, offY int) {
	for _, e := range g.enemies {
		x, y := cellAt(e.Pos, offX, offY)
		color := core.ColorRed
		if e.State == AIChase || e.State == AIAttack {
			color = core.ColorBrightRed
		}
		dst.SetCell(x, y, enemyGlyph(e.Kind), color)
	}
}

// enemyGlyph maps an enemy kind to its map letter.
func enemyGlyph(kind string) rune {
	switch kind {
	case "goblin":
		return 'g'
	case "orc":
		return 'O'
	case "skeleton":
		return 's'
	default:
		return 'e'
	}
}

// renderPlayer draws the player.
func (g *Game) renderPlayer(dst *core.Screen, offX, offY int) {
	x, y := cellAt(g.player.Pos, offX, offY)
	dst.SetCell(x, y, '@', core.ColorBrightGreen)
}

// renderOverlay draws a centered overlay message box.
func (g *Game) renderOverlay(dst *core.Screen, line1, line2 string) {
	w := dst.Width()
	h := dst.Height()

	maxLen := len(line1)
	if len(line2) > maxLen {
		maxLen = len(line2)
	}
	boxW := maxLen + 4
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	for y := boxY; y < boxY+boxH && y < h; y++ {
		for x := boxX; x < boxX+boxW && x < w; x++ {
			if x < 0 || y < 0 {
				continue
			}
			isTopOrBottom := y == boxY || y == boxY+boxH-1
			isLeftOrRight := x == boxX || x == boxX+boxW-1
			switch {
			case isTopOrBottom && isLeftOrRight:
				dst.Set(x, y, '+')
			case isTopOrBottom:
				dst.Set(x, y, '-')
			case isLeftOrRight:
				dst.Set(x, y, '|')
			default:
				dst.Set(x, y, ' ')
			}
		}
	}

	drawCentered(dst, line1, boxY+1)
	drawCentered(dst, line2, boxY+3)
}

// drawCentered draws text centered horizontally.
func drawCentered(dst *core.Screen, text string, y int) {
	if y < 0 || y >= dst.Height() {
		return
	}
	x := (dst.Width() - len(text)) / 2
	for i, ch := range text {
		px := x + i
		if px >= 0 && px < dst.Width() {
			dst.Set(px, y, ch)
		}
	}
}
