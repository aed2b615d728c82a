/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"errors"
	"sort"
	"strings"

	"github.com/Seednode/followme/playback"
)

var (
	ErrInvalidValue  = errors.New("value is not on the current keypad")
	ErrSequenceFull  = errors.New("sequence is full")
	ErrNothingToUndo = errors.New("nothing to remove")
	ErrWrongMode     = errors.New("not available in the current mode")
	ErrInvalidSetup  = errors.New("invalid game setup")
	ErrNoPreset      = errors.New("no such preset")
	ErrPresetName    = errors.New("preset name must not be empty")
)

// Profile is everything stored for one player.
type Profile struct {
	Settings Settings             `json:"settings"`
	States   map[Input]*GameState `json:"state"`
	Presets  map[string]Settings  `json:"presets,omitempty"`
}

func DefaultProfile() *Profile {
	settings := DefaultSettings()

	p := &Profile{
		Settings: settings,
		States:   make(map[Input]*GameState, len(Inputs)),
		Presets:  make(map[string]Settings),
	}
	for _, in := range Inputs {
		p.States[in] = NewGameState(settings.SequenceLength)
	}
	return p
}

// Current is the state of the selected keypad.
func (p *Profile) Current() *GameState {
	return p.States[p.Settings.CurrentInput]
}

// Clone returns a deep copy, safe to hand to another goroutine.
func (p *Profile) Clone() *Profile {
	c := &Profile{
		Settings: p.Settings.clone(),
		States:   make(map[Input]*GameState, len(p.States)),
		Presets:  make(map[string]Settings, len(p.Presets)),
	}
	for in, st := range p.States {
		c.States[in] = st.clone()
	}
	for name, s := range p.Presets {
		c.Presets[name] = s.clone()
	}
	return c
}

func (p *Profile) normalize() {
	p.Settings.Normalize()

	if p.States == nil {
		p.States = make(map[Input]*GameState, len(Inputs))
	}
	for in := range p.States {
		if !in.Valid() {
			delete(p.States, in)
		}
	}
	for _, in := range Inputs {
		st, ok := p.States[in]
		if !ok || st == nil {
			st = NewGameState(p.Settings.SequenceLength)
			p.States[in] = st
		}
		st.normalize(p.Settings.SequenceLength)
	}
	if p.Settings.CurrentMode == UniqueRounds {
		p.Current().MachineCount = 1
	}

	if p.Presets == nil {
		p.Presets = make(map[string]Settings)
	}
}

// AddValue records a key press and reports whether it should trigger an
// autoplay run.
func (p *Profile) AddValue(value playback.Token) (bool, error) {
	in := p.Settings.CurrentInput
	if !in.Accepts(value) {
		return false, ErrInvalidValue
	}

	st := p.Current()

	if p.Settings.CurrentMode == UniqueRounds {
		if len(st.Sequences[0]) >= st.CurrentRound {
			return false, ErrSequenceFull
		}

		st.Sequences[0] = append(st.Sequences[0], value)

		return p.Settings.Autoplay && len(st.Sequences[0]) == st.CurrentRound, nil
	}

	target := st.NextSequenceIndex % st.MachineCount
	if len(st.Sequences[target]) >= st.MaxRound {
		return false, ErrSequenceFull
	}

	st.Sequences[target] = append(st.Sequences[target], value)
	st.NextSequenceIndex = (target + 1) % st.MachineCount

	return p.Settings.Autoplay && st.NextSequenceIndex == 0, nil
}

// Backspace removes the most recently entered value.
func (p *Profile) Backspace() error {
	st := p.Current()

	if p.Settings.CurrentMode == UniqueRounds {
		n := len(st.Sequences[0])
		if n == 0 {
			return ErrNothingToUndo
		}
		st.Sequences[0] = st.Sequences[0][:n-1]
		return nil
	}

	target := (st.NextSequenceIndex - 1 + st.MachineCount) % st.MachineCount
	n := len(st.Sequences[target])
	if n == 0 {
		return ErrNothingToUndo
	}

	st.Sequences[target] = st.Sequences[target][:n-1]
	st.NextSequenceIndex = target
	return nil
}

// ClearAll empties every sequence of the current keypad, keeping the round.
func (p *Profile) ClearAll() {
	st := p.Current()
	st.Sequences = emptySequences()
	st.NextSequenceIndex = 0
}

// ResetRounds returns a Unique Rounds game to round 1.
func (p *Profile) ResetRounds() error {
	if p.Settings.CurrentMode != UniqueRounds {
		return ErrWrongMode
	}
	p.Current().reset()
	return nil
}

// AdvanceRound clears the round's sequence and moves to the next round,
// starting over after the last one.
func (p *Profile) AdvanceRound() error {
	if p.Settings.CurrentMode != UniqueRounds {
		return ErrWrongMode
	}

	st := p.Current()
	st.Sequences[0] = []playback.Token{}
	st.CurrentRound++
	if st.CurrentRound > st.MaxRound {
		st.CurrentRound = 1
	}
	return nil
}

// Setup is the game setup dialog.
type Setup struct {
	Input              Input `json:"input"`
	Mode               Mode  `json:"mode"`
	Machines           int   `json:"machines"`
	SequenceLength     int   `json:"sequenceLength"`
	ChunkSize          int   `json:"chunkSize"`
	InterSequenceDelay int   `json:"interSequenceDelay"`
	AutoClear          bool  `json:"autoClear"`
	ShowWelcome        bool  `json:"showWelcome"`
}

// SetupOf fills a Setup from the current profile.
func (p *Profile) SetupOf() Setup {
	return Setup{
		Input:              p.Settings.CurrentInput,
		Mode:               p.Settings.CurrentMode,
		Machines:           p.Current().MachineCount,
		SequenceLength:     p.Settings.SequenceLength,
		ChunkSize:          p.Settings.ChunkSize,
		InterSequenceDelay: p.Settings.InterSequenceDelay,
		AutoClear:          p.Settings.AutoClear,
		ShowWelcome:        p.Settings.ShowWelcome,
	}
}

// ApplySetup applies the game setup. Changing the keypad, the mode or the
// number of machines starts the selected keypad over.
func (p *Profile) ApplySetup(s Setup) error {
	if !s.Input.Valid() || !s.Mode.Valid() {
		return ErrInvalidSetup
	}
	if s.Machines < 1 || s.Machines > MaxMachines || s.SequenceLength < 1 {
		return ErrInvalidSetup
	}

	machines := s.Machines
	if s.Mode == UniqueRounds {
		machines = 1
	}

	changed := p.Settings.CurrentMode != s.Mode ||
		p.Settings.CurrentInput != s.Input ||
		p.Current().MachineCount != machines

	p.Settings.CurrentInput = s.Input
	p.Settings.CurrentMode = s.Mode
	p.Settings.SequenceLength = s.SequenceLength
	p.Settings.ChunkSize = s.ChunkSize
	p.Settings.InterSequenceDelay = s.InterSequenceDelay
	p.Settings.AutoClear = s.AutoClear
	p.Settings.ShowWelcome = s.ShowWelcome
	p.Settings.Normalize()

	for _, st := range p.States {
		st.MaxRound = p.Settings.SequenceLength
		if st.CurrentRound > st.MaxRound {
			st.CurrentRound = st.MaxRound
		}
	}

	st := p.Current()
	st.MachineCount = machines
	if changed {
		st.reset()
	}
	return nil
}

// Preferences is a partial update of the app preferences; nil fields are left alone.
type Preferences struct {
	PlaybackSpeed *float64 `json:"playbackSpeed,omitempty"`
	Autoplay      *bool    `json:"autoplay,omitempty"`
	AutoClear     *bool    `json:"autoClear,omitempty"`
	Audio         *bool    `json:"audio,omitempty"`
	VoiceInput    *bool    `json:"voiceInput,omitempty"`
	Haptics       *bool    `json:"haptics,omitempty"`
	SpeedDeleting *bool    `json:"speedDeleting,omitempty"`
	DarkMode      *bool    `json:"darkMode,omitempty"`
	ShowWelcome   *bool    `json:"showWelcome,omitempty"`
	UIScale       *float64 `json:"uiScale,omitempty"`
	GlobalScale   *int     `json:"globalScale,omitempty"`
}

func (p *Profile) ApplyPreferences(prefs Preferences) {
	s := &p.Settings

	if prefs.PlaybackSpeed != nil {
		s.PlaybackSpeed = *prefs.PlaybackSpeed
	}
	setBool(&s.Autoplay, prefs.Autoplay)
	setBool(&s.AutoClear, prefs.AutoClear)
	setBool(&s.Audio, prefs.Audio)
	setBool(&s.VoiceInput, prefs.VoiceInput)
	setBool(&s.Haptics, prefs.Haptics)
	setBool(&s.SpeedDeleting, prefs.SpeedDeleting)
	setBool(&s.DarkMode, prefs.DarkMode)
	setBool(&s.ShowWelcome, prefs.ShowWelcome)
	if prefs.UIScale != nil {
		s.UIScale = *prefs.UIScale
	}
	if prefs.GlobalScale != nil {
		s.GlobalScale = *prefs.GlobalScale
	}

	s.Normalize()
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// SavePreset stores the current settings under name, replacing any preset of that name.
func (p *Profile) SavePreset(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrPresetName
	}
	p.Presets[name] = p.Settings.clone()
	return nil
}

// LoadPreset replaces the settings with a saved preset. The keypad states
// are kept, with their round limit following the preset.
func (p *Profile) LoadPreset(name string) error {
	preset, ok := p.Presets[name]
	if !ok {
		return ErrNoPreset
	}

	p.Settings = preset.clone()
	p.normalize()
	return nil
}

func (p *Profile) DeletePreset(name string) error {
	if _, ok := p.Presets[name]; !ok {
		return ErrNoPreset
	}
	delete(p.Presets, name)
	return nil
}

// MatchingPreset returns the name of the preset equal to the current
// settings, or "" when the settings are custom.
func (p *Profile) MatchingPreset() string {
	for _, name := range p.PresetNames() {
		if p.Presets[name].Equal(p.Settings) {
			return name
		}
	}
	return ""
}

// PresetNames returns the preset names in sorted order.
func (p *Profile) PresetNames() []string {
	names := make([]string, 0, len(p.Presets))
	for name := range p.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
