package tui

import (
	"math"

	"github.com/notedrop/backend/internal/game"
)

// Terminal cells are roughly twice as tall as they are wide.
const cellAspect = 2.0

const panelWidth = 28

// Layout maps arena coordinates onto terminal cells.
type Layout struct {
	OriginX, OriginY int     // top-left cell of the arena interior
	Cols, Rows       int     // interior size in cells
	ScaleX, ScaleY   float64 // cells per arena unit
	PanelX           int     // first column of the side panel
}

// NewLayout fits arena into a w×h screen, leaving room for a border and the
// side panel.
func NewLayout(arena game.Arena, w, h int) Layout {
	availCols := w - panelWidth - 3
	availRows := h - 2
	if availCols < 10 {
		availCols = 10
	}
	if availRows < 10 {
		availRows = 10
	}

	sx := math.Min(float64(availCols)/arena.Width, float64(availRows)*cellAspect/arena.Height)
	sy := sx / cellAspect
	cols := int(math.Round(arena.Width * sx))
	rows := int(math.Round(arena.Height * sy))
	return Layout{
		OriginX: 1,
		OriginY: 1,
		Cols:    cols,
		Rows:    rows,
		ScaleX:  sx,
		ScaleY:  sy,
		PanelX:  cols + 4,
	}
}

// Cell returns the screen cell of an arena point.
func (l Layout) Cell(x, y float64) (int, int) {
	return l.OriginX + int(math.Floor(x*l.ScaleX)), l.OriginY + int(math.Floor(y*l.ScaleY))
}

// ArenaX returns the arena x at the center of screen column col, clamped to
// the interior.
func (l Layout) ArenaX(col int) float64 {
	c := col - l.OriginX
	if c < 0 {
		c = 0
	}
	if c >= l.Cols {
		c = l.Cols - 1
	}
	return (float64(c) + 0.5) / l.ScaleX
}

// Row returns the screen row of arena height y.
func (l Layout) Row(y float64) int {
	return l.OriginY + int(math.Floor(y*l.ScaleY))
}
