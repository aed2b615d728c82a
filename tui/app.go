/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package tui plays the game in a terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Seednode/followme/game"
	"github.com/Seednode/followme/midiout"
	"github.com/Seednode/followme/playback"
)

type Options struct {
	Screen  tcell.Screen
	Profile *game.Profile
	Store   game.Store
	ID      string
	Speaker Speaker
	MIDI    *midiout.Output

	BaseDelay time.Duration
	BaseFlash time.Duration

	// After replaces the wall clock timer that paces playback.
	After playback.After

	Logf func(format string, args ...any)
}

// App owns the screen and runs every game action and playback step on a
// single goroutine.
type App struct {
	screen     tcell.Screen
	surface    *Surface
	controller *game.Controller
	logf       func(format string, args ...any)

	tasks chan func()
	done  chan struct{}
}

func New(opts Options) (*App, error) {
	if opts.Screen == nil {
		return nil, errors.New("no screen")
	}
	if opts.Profile == nil {
		opts.Profile = game.DefaultProfile()
	}
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}

	if err := opts.Screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}

	a := &App{
		screen: opts.Screen,
		logf:   opts.Logf,
		tasks:  make(chan func(), 16),
		done:   make(chan struct{}),
	}

	after := opts.After
	if after == nil {
		after = a.after
	}

	a.surface = NewSurface(opts.Screen, opts.Speaker, func() *game.Profile {
		return a.controller.Profile()
	})

	var surface playback.Surface = a.surface
	if opts.MIDI != nil {
		surface = midiout.Wrap(a.surface, opts.MIDI, func() game.Input {
			return a.controller.Profile().Settings.CurrentInput
		}, opts.Logf)
	}

	a.controller = game.NewController(opts.Profile, game.Options{
		ID:        opts.ID,
		Store:     opts.Store,
		After:     after,
		Surface:   surface,
		BaseDelay: opts.BaseDelay,
		BaseFlash: opts.BaseFlash,
		Logf:      opts.Logf,
	})

	return a, nil
}

func (a *App) after(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		select {
		case a.tasks <- fn:
		case <-a.done:
		}
	})
}

// Controller is the game behind the screen.
func (a *App) Controller() *game.Controller {
	return a.controller
}

// Run draws the game and handles key presses until the player quits or ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer close(a.done)

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)

	go a.screen.ChannelEvents(events, quit)

	a.surface.Draw()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-a.tasks:
			fn()
		case ev := <-events:
			if !a.Handle(ev) {
				return nil
			}
		}
	}
}

// Close restores the terminal.
func (a *App) Close() {
	a.screen.Fini()
}

// Handle applies one terminal event and reports whether the app should
// keep running.
func (a *App) Handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.surface.Draw()
	case *tcell.EventKey:
		return a.key(ev)
	}

	return true
}

func (a *App) key(ev *tcell.EventKey) bool {
	c := a.controller
	a.surface.clearNotice()

	var err error

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyEnter:
		c.PlayDemo()
	case tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyDelete:
		err = c.Backspace()
	case tcell.KeyTab:
		err = a.cycleInput()
	case tcell.KeyRune:
		err = a.typed(ev.Rune())
	}

	a.report(err)
	a.surface.Draw()

	return true
}

func (a *App) typed(r rune) error {
	c := a.controller

	switch r {
	case ' ':
		c.PlayDemo()
		return nil
	case 'x':
		return c.ClearAll()
	case 'r':
		return c.ResetRounds()
	case 'm':
		return a.toggleMode()
	case '[':
		return a.changeMachines(-1)
	case ']':
		return a.changeMachines(1)
	}

	v, ok := TokenFor(c.Profile().Settings.CurrentInput, r)
	if !ok {
		return nil
	}
	return c.Input(v)
}

func (a *App) cycleInput() error {
	setup := a.controller.Profile().SetupOf()

	for i, in := range game.Inputs {
		if in == setup.Input {
			setup.Input = game.Inputs[(i+1)%len(game.Inputs)]
			break
		}
	}

	return a.controller.ApplySetup(setup)
}

func (a *App) toggleMode() error {
	setup := a.controller.Profile().SetupOf()

	if setup.Mode == game.Simon {
		setup.Mode = game.UniqueRounds
	} else {
		setup.Mode = game.Simon
	}

	return a.controller.ApplySetup(setup)
}

func (a *App) changeMachines(delta int) error {
	setup := a.controller.Profile().SetupOf()
	if setup.Mode != game.Simon {
		a.surface.Notice("%s uses a single machine", game.UniqueRounds.Name())
		return nil
	}

	setup.Machines = min(max(setup.Machines+delta, 1), game.MaxMachines)

	return a.controller.ApplySetup(setup)
}

func (a *App) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, game.ErrBusy):
		a.surface.Notice("Wait for the demo to finish")
	case errors.Is(err, game.ErrSequenceFull):
		a.surface.Notice("The sequence is full")
	case errors.Is(err, game.ErrNothingToUndo):
	case errors.Is(err, game.ErrWrongMode):
		a.surface.Notice("Only available in %s", game.UniqueRounds.Name())
	default:
		a.logf("TUI: %v", err)
		a.surface.Notice("%v", err)
	}
}
