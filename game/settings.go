/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"encoding/json"
	"time"
)

const (
	MinSpeed = 0.5
	MaxSpeed = 1.5

	MinGlobalScale = 50
	MaxGlobalScale = 150

	MinChunkSize = 1
	MaxChunkSize = 5
)

// SequenceLengths are the lengths offered by game setup.
var SequenceLengths = []int{15, 20, 25}

// Settings are the player's global preferences. The JSON names are the
// persisted format and must not change.
type Settings struct {
	CurrentInput Input `json:"currentInput"`
	CurrentMode  Mode  `json:"currentMode"`

	SequenceLength     int `json:"sequenceLength"`
	ChunkSize          int `json:"simonChunkSize"`
	InterSequenceDelay int `json:"simonInterSequenceDelay"` // milliseconds

	PlaybackSpeed float64           `json:"playbackSpeed"`
	InputSpeeds   map[Input]float64 `json:"inputSpeeds,omitempty"`

	Autoplay      bool `json:"isAutoplayEnabled"`
	AutoClear     bool `json:"isUniqueRoundsAutoClearEnabled"`
	Audio         bool `json:"isAudioPlaybackEnabled"`
	VoiceInput    bool `json:"isVoiceInputEnabled"`
	Haptics       bool `json:"isHapticsEnabled"`
	SpeedDeleting bool `json:"isSpeedDeletingEnabled"`
	DarkMode      bool `json:"isDarkMode"`
	ShowWelcome   bool `json:"showWelcomeScreen"`

	UIScale     float64 `json:"uiScaleMultiplier"`
	GlobalScale int     `json:"globalUiScale"`
}

func DefaultSettings() Settings {
	return Settings{
		CurrentInput:       Key9,
		CurrentMode:        Simon,
		SequenceLength:     20,
		ChunkSize:          3,
		InterSequenceDelay: 0,
		PlaybackSpeed:      1.0,
		Autoplay:           true,
		AutoClear:          true,
		Audio:              true,
		VoiceInput:         false,
		Haptics:            true,
		SpeedDeleting:      true,
		DarkMode:           true,
		ShowWelcome:        true,
		UIScale:            1.0,
		GlobalScale:        100,
	}
}

// Normalize clamps every field into its valid range.
func (s *Settings) Normalize() {
	d := DefaultSettings()

	if !s.CurrentInput.Valid() {
		s.CurrentInput = d.CurrentInput
	}
	if !s.CurrentMode.Valid() {
		s.CurrentMode = d.CurrentMode
	}
	if s.SequenceLength < 1 {
		s.SequenceLength = d.SequenceLength
	}
	s.ChunkSize = clampInt(s.ChunkSize, MinChunkSize, MaxChunkSize)
	if s.InterSequenceDelay < 0 {
		s.InterSequenceDelay = 0
	}
	s.PlaybackSpeed = clampSpeed(s.PlaybackSpeed)
	for in, speed := range s.InputSpeeds {
		if !in.Valid() {
			delete(s.InputSpeeds, in)
			continue
		}
		s.InputSpeeds[in] = clampSpeed(speed)
	}
	if s.UIScale <= 0 {
		s.UIScale = d.UIScale
	}
	s.GlobalScale = clampInt(s.GlobalScale, MinGlobalScale, MaxGlobalScale)
}

// SpeedFor is the playback speed of the given keypad.
func (s Settings) SpeedFor(in Input) float64 {
	if speed, ok := s.InputSpeeds[in]; ok {
		return speed
	}
	return s.PlaybackSpeed
}

func (s Settings) InterSequence() time.Duration {
	return time.Duration(s.InterSequenceDelay) * time.Millisecond
}

// Equal compares two settings by their persisted form.
func (s Settings) Equal(o Settings) bool {
	a, err := json.Marshal(s)
	if err != nil {
		return false
	}
	b, err := json.Marshal(o)
	if err != nil {
		return false
	}
	return string(a) == string(b)
}

func (s Settings) clone() Settings {
	c := s
	if s.InputSpeeds != nil {
		c.InputSpeeds = make(map[Input]float64, len(s.InputSpeeds))
		for k, v := range s.InputSpeeds {
			c.InputSpeeds[k] = v
		}
	}
	return c
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampSpeed(v float64) float64 {
	if v <= 0 {
		return 1.0
	}
	if v < MinSpeed {
		return MinSpeed
	}
	if v > MaxSpeed {
		return MaxSpeed
	}
	return v
}
