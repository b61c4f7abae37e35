package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/notedrop/backend/internal/game"
)

var (
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleLine   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDone   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleCursor = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
)

var durationGlyphs = map[game.Duration]rune{
	game.DurSixteenth:     's',
	game.DurEighth:        'e',
	game.DurDottedEighth:  'e',
	game.DurQuarter:       'q',
	game.DurDottedQuarter: 'q',
	game.DurHalf:          'h',
	game.DurDottedHalf:    'h',
	game.DurWhole:         'w',
}

// glyph picks a single-cell rune for a type. Symbols outside the BMP render
// inconsistently across terminals, so those fall back to a duration letter,
// upper case for rests.
func glyph(tt game.TokenType) rune {
	for _, r := range tt.Symbol {
		if r < 0x10000 {
			return r
		}
		break
	}
	r := durationGlyphs[tt.Duration]
	if tt.IsRest {
		r -= 'a' - 'A'
	}
	return r
}

func tokenStyle(tt game.TokenType, opacity float64) tcell.Style {
	st := tcell.StyleDefault.Background(tcell.GetColor(tt.Color)).Foreground(tcell.ColorBlack)
	if opacity < 0.5 {
		st = st.Dim(true)
	}
	return st
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// draw renders one frame.
func (a *App) draw(snap game.Snapshot) {
	s := a.screen
	s.Clear()
	l := a.layout

	a.drawBorder(l)
	if snap.Phase == game.PhaseSelecting {
		a.drawStageList()
		s.Show()
		return
	}

	// Drop line
	lineRow := l.Row(snap.Arena.DropLineY)
	for c := 0; c < l.Cols; c++ {
		s.SetContent(l.OriginX+c, lineRow, '╌', nil, styleLine)
	}

	for _, t := range snap.Tokens {
		a.drawToken(t)
	}

	// Drop cursor with the offered type above the arena
	col, _ := l.Cell(a.dropX, 0)
	if snap.NextType != nil {
		tt := game.TypeOf(*snap.NextType)
		s.SetContent(col, 0, glyph(tt), nil, tokenStyle(tt, 1))
	}
	s.SetContent(col, l.OriginY, '▼', nil, styleCursor)

	a.drawPanel(snap)
	a.drawOverlay(snap)
	s.Show()
}

func (a *App) drawBorder(l Layout) {
	s := a.screen
	right := l.OriginX + l.Cols
	bottom := l.OriginY + l.Rows
	for y := l.OriginY; y < bottom; y++ {
		s.SetContent(l.OriginX-1, y, '│', nil, styleBorder)
		s.SetContent(right, y, '│', nil, styleBorder)
	}
	for x := l.OriginX; x < right; x++ {
		s.SetContent(x, bottom, '─', nil, styleBorder)
	}
	s.SetContent(l.OriginX-1, bottom, '└', nil, styleBorder)
	s.SetContent(right, bottom, '┘', nil, styleBorder)
}

// drawToken fills the cells covered by the token's disc and puts its glyph
// in the middle.
func (a *App) drawToken(t game.TokenView) {
	l := a.layout
	tt := game.TypeOf(t.TypeID)
	style := tokenStyle(tt, t.Opacity)

	minCol, minRow := l.Cell(t.X-t.Radius, t.Y-t.Radius)
	maxCol, maxRow := l.Cell(t.X+t.Radius, t.Y+t.Radius)
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if col < l.OriginX || col >= l.OriginX+l.Cols || row < l.OriginY || row >= l.OriginY+l.Rows {
				continue
			}
			// cell center back in arena units
			cx := (float64(col-l.OriginX) + 0.5) / l.ScaleX
			cy := (float64(row-l.OriginY) + 0.5) / l.ScaleY
			dx, dy := cx-t.X, cy-t.Y
			if dx*dx+dy*dy <= t.Radius*t.Radius {
				a.screen.SetContent(col, row, ' ', nil, style)
			}
		}
	}
	col, row := l.Cell(t.X, t.Y)
	a.screen.SetContent(col, row, glyph(tt), nil, style)
}

func (a *App) drawPanel(snap game.Snapshot) {
	x := a.layout.PanelX
	y := 1
	title := "Free play"
	if snap.StageIndex != nil {
		title = fmt.Sprintf("%d. %s", *snap.StageIndex+1, snap.StageTitle)
	}
	drawText(a.screen, x, y, styleTitle, title)
	y += 2
	drawText(a.screen, x, y, styleText, fmt.Sprintf("Score  %d", snap.Score))
	y++
	if snap.NextType != nil {
		drawText(a.screen, x, y, styleText, "Next   "+snap.NextName)
	}
	y += 2

	if len(snap.Progress.Goals) > 0 {
		drawText(a.screen, x, y, styleText, fmt.Sprintf("Goals  %d/%d", snap.Progress.Done, snap.Progress.Total))
		y++
		for _, g := range snap.Progress.Goals {
			style := styleText
			if g.Complete {
				style = styleDone
			}
			tt := game.TypeOf(g.TypeID)
			a.screen.SetContent(x, y, glyph(tt), nil, tokenStyle(tt, 1))
			drawText(a.screen, x+2, y, style, fmt.Sprintf("%-20s %d/%d", g.Name, g.Collected, g.Target))
			y++
		}
		y++
	}

	for _, help := range []string{"←/→ move  space drop", "r restart  n next", "s stages  q quit"} {
		drawText(a.screen, x, y, styleDim, help)
		y++
	}
}

func (a *App) drawOverlay(snap game.Snapshot) {
	var msg string
	switch snap.Phase {
	case game.PhaseGameOver:
		msg = "GAME OVER  r: retry  s: stages"
	case game.PhaseStageComplete:
		msg = "STAGE CLEAR  n: next  r: replay"
	default:
		return
	}
	l := a.layout
	row := l.OriginY + l.Rows/2
	col := l.OriginX + (l.Cols-len([]rune(msg)))/2
	if col < l.OriginX {
		col = l.OriginX
	}
	drawText(a.screen, col, row, styleTitle.Reverse(true), msg)
}

func (a *App) drawStageList() {
	l := a.layout
	x := l.OriginX + 1
	y := l.OriginY + 1
	drawText(a.screen, x, y, styleTitle, "Select a stage")
	y += 2
	for i, st := range a.session.Stages() {
		style := styleText
		label := st.Title
		if !st.Playable() {
			style = styleDim
			label += " (soon)"
		}
		drawText(a.screen, x, y, style, fmt.Sprintf("%d  %s", i+1, label))
		y++
		if st.Playable() {
			var parts []string
			for _, id := range st.GoalTypes() {
				parts = append(parts, fmt.Sprintf("%s×%d", string(glyph(game.TypeOf(id))), st.Goals[id]))
			}
			drawText(a.screen, x+3, y, styleDim, strings.Join(parts, " "))
			y++
		}
	}
	y++
	drawText(a.screen, x, y, styleDim, "r  free play    q  quit")
	if a.notice != "" {
		drawText(a.screen, x, y+2, styleLine, a.notice)
	}
}
