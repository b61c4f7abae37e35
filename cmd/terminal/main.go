package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/notedrop/backend/internal/audio/playback"
	"github.com/notedrop/backend/internal/config"
	"github.com/notedrop/backend/internal/game"
	"github.com/notedrop/backend/internal/tui"
)

func main() {
	cfg := config.Load()

	// The screen owns stdout; logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	stages, err := game.LoadStages(cfg.StagesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load stages: %v\n", err)
		os.Exit(1)
	}

	var sink game.EventSink
	if cfg.AudioEnabled {
		player := playback.NewPlayer(cfg.AudioSampleRate)
		if err := player.Initialize(); err != nil {
			// Non-fatal, game runs without sound
			log.Printf("[AUDIO] initialization failed: %v", err)
		} else {
			defer player.Close()
			sink = player
		}
	}

	session := game.NewSession("local", game.SessionOptions{Stages: stages, Sink: sink})

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "init screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("[TUI] started with %d stages", len(stages))
	tui.NewApp(screen, session).Run(ctx)
	log.Printf("[TUI] exited, score=%d", session.Score())
}
