package tui

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/notedrop/backend/internal/game"
)

// dropStep is how far one arrow press moves the drop column, in arena units.
const dropStep = 10.0

// App drives a local session on a terminal screen. It ticks the session
// itself, so no frame runner is involved.
type App struct {
	screen  tcell.Screen
	session *game.Session
	layout  Layout
	dropX   float64
	buttons tcell.ButtonMask
	notice  string
}

// NewApp wraps an initialized screen.
func NewApp(screen tcell.Screen, session *game.Session) *App {
	a := &App{screen: screen, session: session}
	a.resize()
	a.dropX = session.World().Arena.Width / 2
	return a
}

func (a *App) resize() {
	w, h := a.screen.Size()
	a.layout = NewLayout(a.session.World().Arena, w, h)
}

// Run loops until the user quits or ctx ends.
func (a *App) Run(ctx context.Context) {
	a.screen.EnableMouse()
	done := make(chan struct{})
	defer close(done)
	events := pollEvents(a.screen, done)

	ticker := time.NewTicker(game.FrameInterval)
	defer ticker.Stop()

	a.draw(a.session.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !a.handleEvent(ev) {
				return
			}
			a.draw(a.session.Snapshot())
		case <-ticker.C:
			snap, playing := a.session.Tick()
			if playing || snap.Phase.Terminal() {
				a.draw(snap)
			}
		}
	}
}

// pollEvents forwards screen events until the screen is finalized or done
// is closed.
func pollEvents(screen tcell.Screen, done <-chan struct{}) <-chan tcell.Event {
	events := make(chan tcell.Event, 64)
	go func() {
		defer close(events)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return // screen finalized
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	return events
}

// handleEvent applies one input event. It returns false to quit.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventResize:
		a.resize()
		a.screen.Sync()
	}
	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	a.notice = ""
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		a.moveDrop(-dropStep)
	case tcell.KeyRight:
		a.moveDrop(dropStep)
	case tcell.KeyEnter:
		a.session.DropAt(a.dropX)
	case tcell.KeyRune:
		switch r := ev.Rune(); {
		case r == 'q':
			return false
		case r == ' ':
			a.session.DropAt(a.dropX)
		case r == 'r':
			a.session.Restart()
		case r == 'n':
			a.session.NextStage()
		case r == 's':
			a.session.OpenStageSelect()
		case r >= '1' && r <= '9':
			a.selectStage(int(r - '1'))
		}
	}
	return true
}

func (a *App) selectStage(i int) {
	err := a.session.SelectStage(i)
	switch {
	case err == nil:
	case errors.Is(err, game.ErrStageUnplayable):
		a.notice = "That stage is not ready yet."
	case errors.Is(err, game.ErrStageNotFound):
		a.notice = "No such stage."
	default:
		log.Printf("[TUI] select stage %d: %v", i, err)
	}
}

func (a *App) moveDrop(dx float64) {
	arena := a.session.World().Arena
	a.dropX = arena.ClampX(a.dropX+dx, 0)
}

// handleMouse tracks the pointer column and drops on a fresh left click.
func (a *App) handleMouse(ev *tcell.EventMouse) {
	col, _ := ev.Position()
	a.dropX = a.layout.ArenaX(col)

	pressed := ev.Buttons()&tcell.Button1 != 0
	wasPressed := a.buttons&tcell.Button1 != 0
	a.buttons = ev.Buttons()
	if pressed && !wasPressed {
		a.session.DropAt(a.dropX)
	}
}
