/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/followme/game"
	"github.com/Seednode/followme/playback"
	"github.com/Seednode/followme/playback/playbacktest"
)

const runLimit = 10_000

type voice struct {
	said []string
	err  error
}

func (v *voice) Speak(text string) error {
	v.said = append(v.said, text)
	return v.err
}

func newApp(t *testing.T, p *game.Profile) (*App, tcell.SimulationScreen, *playbacktest.Clock, *voice) {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	clock := playbacktest.NewClock()
	v := &voice{}

	a, err := New(Options{
		Screen:  screen,
		Profile: p,
		Speaker: v,
		After:   clock.After,
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)

	screen.SetSize(100, 24)
	a.surface.Draw()

	return a, screen, clock, v
}

func row(screen tcell.SimulationScreen, y int) string {
	w, _ := screen.Size()

	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func screenText(screen tcell.SimulationScreen) string {
	_, h := screen.Size()

	rows := make([]string, h)
	for y := range rows {
		rows[y] = row(screen, y)
	}
	return strings.Join(rows, "\n")
}

func press(a *App, r rune) bool {
	return a.Handle(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

func pressKey(a *App, k tcell.Key) bool {
	return a.Handle(tcell.NewEventKey(k, 0, tcell.ModNone))
}

func TestTokenFor(t *testing.T) {
	tests := []struct {
		in   game.Input
		r    rune
		want playback.Token
		ok   bool
	}{
		{game.Key9, '5', "5", true},
		{game.Key9, '0', "", false},
		{game.Key12, '0', "10", true},
		{game.Key12, '-', "11", true},
		{game.Key12, '=', "12", true},
		{game.Piano, 'c', "C", true},
		{game.Piano, 'G', "G", true},
		{game.Piano, '3', "3", true},
		{game.Piano, '6', "", false},
		{game.Piano, 'h', "", false},
	}

	for _, tt := range tests {
		got, ok := TokenFor(tt.in, tt.r)
		assert.Equal(t, tt.ok, ok, "%s %q", tt.in, tt.r)
		assert.Equal(t, tt.want, got, "%s %q", tt.in, tt.r)
	}

	assert.Equal(t, "F#", KeyName(game.Piano, "3"))
	assert.Equal(t, "=", Hint(game.Key12, "12"))
	assert.Equal(t, "c", Hint(game.Piano, "C"))
}

func TestTypingStartsAutoplay(t *testing.T) {
	a, screen, clock, v := newApp(t, nil)

	require.True(t, press(a, '7'))
	assert.True(t, a.Controller().Busy())
	assert.True(t, a.surface.lit["7"])
	assert.Equal(t, "1", a.surface.label)
	assert.Contains(t, row(screen, 2), "[7]")

	require.True(t, press(a, '8'))
	assert.Contains(t, screenText(screen), "Wait for the demo to finish")

	require.NoError(t, clock.RunAll(runLimit))
	assert.False(t, a.Controller().Busy())
	assert.Empty(t, a.surface.lit)
	assert.Equal(t, playback.IdleGlyph, a.surface.label)
	assert.Equal(t, []string{"7"}, v.said)

	assert.Contains(t, screenText(screen), "M1 7")
}

func TestPlayEmptyShowsDialog(t *testing.T) {
	a, screen, _, _ := newApp(t, nil)

	require.True(t, press(a, ' '))
	assert.False(t, a.Controller().Busy())
	assert.Contains(t, screenText(screen), "No Sequence: The sequence is empty.")

	require.True(t, pressKey(a, tcell.KeyBackspace))
	assert.NotContains(t, screenText(screen), "No Sequence")
}

func TestKeysChangeSetup(t *testing.T) {
	a, screen, _, _ := newApp(t, nil)
	c := a.Controller()

	require.True(t, pressKey(a, tcell.KeyTab))
	assert.Equal(t, game.Key12, c.Profile().Settings.CurrentInput)
	assert.Contains(t, row(screen, 0), "12-Key")

	require.True(t, press(a, ']'))
	require.True(t, press(a, ']'))
	assert.Equal(t, 3, c.Profile().Current().MachineCount)

	require.True(t, press(a, 'm'))
	assert.Equal(t, game.UniqueRounds, c.Profile().Settings.CurrentMode)
	assert.Contains(t, row(screen, 0), "Round 1/20")

	require.True(t, press(a, '['))
	assert.Contains(t, screenText(screen), "uses a single machine")

	require.True(t, pressKey(a, tcell.KeyTab))
	require.True(t, pressKey(a, tcell.KeyTab))
	assert.Equal(t, game.Key9, c.Profile().Settings.CurrentInput)
}

func TestPianoSpeaksNoteNames(t *testing.T) {
	p := game.DefaultProfile()
	require.NoError(t, p.ApplySetup(game.Setup{Input: game.Piano, Mode: game.Simon, Machines: 1, SequenceLength: 20, ChunkSize: 3}))
	p.Settings.Autoplay = false

	a, screen, clock, v := newApp(t, p)
	v.err = errors.New("no speaker")

	require.True(t, press(a, 'c'))
	require.True(t, press(a, '1'))
	assert.Contains(t, screenText(screen), "M1 C C#")

	require.True(t, pressKey(a, tcell.KeyEnter))
	require.NoError(t, clock.RunAll(runLimit))

	assert.Equal(t, []string{"C", "C sharp"}, v.said)
	assert.False(t, a.Controller().Busy(), "speech failures do not stop playback")
}

func TestResetOutsideRounds(t *testing.T) {
	a, screen, _, _ := newApp(t, nil)

	require.True(t, press(a, 'r'))
	assert.Contains(t, screenText(screen), "Only available in Unique Rounds")
}

func TestQuitKeys(t *testing.T) {
	a, _, _, _ := newApp(t, nil)

	assert.False(t, pressKey(a, tcell.KeyEscape))
	assert.False(t, pressKey(a, tcell.KeyCtrlC))
	assert.True(t, a.Handle(tcell.NewEventResize(100, 24)))
}

func TestRunStopsOnContext(t *testing.T) {
	a, _, _, _ := newApp(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, a.Run(ctx))
}
