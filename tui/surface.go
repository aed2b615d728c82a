/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/Seednode/followme/game"
	"github.com/Seednode/followme/playback"
)

// Speaker says a label out loud.
type Speaker interface {
	Speak(text string) error
}

var (
	styleNormal = tcell.StyleDefault
	styleTitle  = tcell.StyleDefault.Bold(true)
	styleKey    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleLit    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	styleOwner  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleNotice = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Surface draws the game on a terminal screen.
type Surface struct {
	screen  tcell.Screen
	speaker Speaker
	profile func() *game.Profile

	disabled map[playback.Control]bool
	label    string
	lit      map[playback.Token]bool
	active   map[int]bool
	message  string
}

func NewSurface(screen tcell.Screen, speaker Speaker, profile func() *game.Profile) *Surface {
	return &Surface{
		screen:   screen,
		speaker:  speaker,
		profile:  profile,
		disabled: make(map[playback.Control]bool),
		label:    playback.IdleGlyph,
		lit:      make(map[playback.Token]bool),
		active:   make(map[int]bool),
	}
}

func (s *Surface) SetControlDisabled(c playback.Control, disabled bool) {
	s.disabled[c] = disabled
	s.Draw()
}

func (s *Surface) SetControlLabel(c playback.Control, text string) {
	if c == playback.DemoControl {
		s.label = text
	}
	s.Draw()
}

func (s *Surface) ApplyHighlight(value playback.Token, class string) bool {
	in := s.profile().Settings.CurrentInput
	if !in.Accepts(value) {
		return false
	}

	s.lit[value] = true
	s.Draw()
	return true
}

func (s *Surface) RemoveHighlight(value playback.Token, class string) {
	delete(s.lit, value)
	s.Draw()
}

func (s *Surface) ApplyOwnerActiveStyle(owner int) {
	s.active[owner] = true
	s.Draw()
}

func (s *Surface) RestoreOwnerOriginalStyle(owner int) {
	delete(s.active, owner)
	s.Draw()
}

func (s *Surface) Speak(text string) error {
	if s.speaker == nil {
		return nil
	}
	return s.speaker.Speak(text)
}

func (s *Surface) ShowInfoDialog(title, message string) {
	s.message = title + ": " + message
	s.Draw()
}

func (s *Surface) RefreshDisplay() {
	s.Draw()
}

// Notice shows a one line message until the next key press.
func (s *Surface) Notice(format string, args ...any) {
	s.message = fmt.Sprintf(format, args...)
	s.Draw()
}

func (s *Surface) clearNotice() {
	s.message = ""
}

func (s *Surface) put(x, y int, text string, style tcell.Style) int {
	for _, r := range text {
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// Draw renders the whole screen.
func (s *Surface) Draw() {
	p := s.profile()
	settings := p.Settings
	in := settings.CurrentInput
	st := p.Current()

	s.screen.Clear()

	status := fmt.Sprintf("%s · %s", settings.CurrentMode.Name(), in.Name())
	if settings.CurrentMode == game.UniqueRounds {
		status += fmt.Sprintf(" · Round %d/%d", st.CurrentRound, st.MaxRound)
	} else {
		status += fmt.Sprintf(" · %d/%d", st.Len(settings.CurrentMode), st.MaxRound*st.MachineCount)
	}
	x := s.put(0, 0, "followme", styleTitle)
	s.put(x+2, 0, status, styleNormal)

	keyStyle := styleKey
	if s.disabled[playback.KeysControl] {
		keyStyle = styleDim
	}

	x = 0
	for _, v := range in.Keys() {
		style := keyStyle
		if s.lit[v] {
			style = styleLit
		}
		x = s.put(x, 2, "["+KeyName(in, v)+"]", style)
		x++
	}

	x = 0
	for _, v := range in.Keys() {
		width := len([]rune(KeyName(in, v))) + 2
		s.put(x+1, 3, Hint(in, v), styleDim)
		x += width + 1
	}

	row := 5
	for i, seq := range st.Active(settings.CurrentMode) {
		style := styleNormal
		if s.active[i] {
			style = styleOwner
		}

		name := fmt.Sprintf("M%d", i+1)
		if settings.CurrentMode == game.UniqueRounds {
			name = fmt.Sprintf("R%d", st.CurrentRound)
		}

		values := make([]string, len(seq))
		for k, v := range seq {
			values[k] = KeyName(in, v)
		}

		cursor := " "
		if settings.CurrentMode == game.Simon && i == st.NextSequenceIndex {
			cursor = "›"
		}

		s.put(0, row, fmt.Sprintf("%s%s %s", cursor, name, strings.Join(values, " ")), style)
		row++
	}

	demoStyle := styleTitle
	if s.disabled[playback.DemoControl] {
		demoStyle = styleDim
	}
	row++
	x = s.put(0, row, "["+s.label+"]", demoStyle)
	if s.message != "" {
		s.put(x+1, row, s.message, styleNotice)
	}

	s.put(0, row+2, "space play · ⌫ undo · x clear · r reset · tab input · m mode · [ ] machines · esc quit", styleDim)

	s.screen.Show()
}

var _ playback.Surface = (*Surface)(nil)
