/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package tone speaks playback labels as short tones, for front ends
// without a speech synthesizer.
package tone

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	SampleRate = beep.SampleRate(44100)

	// DefaultLength is how long each tone sounds.
	DefaultLength = 200 * time.Millisecond

	middleC = 261.625565
)

var (
	ErrNoTone         = errors.New("no tone for label")
	ErrNotInitialized = errors.New("audio output not initialized")
)

// Semitones above middle C of each note name.
var notes = map[string]int{
	"c":       0,
	"c sharp": 1,
	"d":       2,
	"d sharp": 3,
	"e":       4,
	"f":       5,
	"f sharp": 6,
	"g":       7,
	"g sharp": 8,
	"a":       9,
	"a sharp": 10,
	"b":       11,
}

// Numbered keys climb the C major scale.
var major = []int{0, 2, 4, 5, 7, 9, 11, 12, 14, 16, 17, 19}

// Frequency returns the pitch in Hz for a spoken label: a note name such as
// "F sharp", or a key number from 1 to 12.
func Frequency(label string) (float64, error) {
	l := strings.ToLower(strings.TrimSpace(label))

	semitones, ok := notes[l]
	if !ok {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > len(major) {
			return 0, fmt.Errorf("%w: %q", ErrNoTone, label)
		}
		semitones = major[n-1]
	}

	return middleC * math.Pow(2, float64(semitones)/12), nil
}

// Voice plays one tone per label.
type Voice struct {
	mu     sync.Mutex
	length time.Duration
	gain   float64
	play   func(beep.Streamer)
}

// New returns a voice whose tones last length. It stays silent until Init
// succeeds.
func New(length time.Duration) *Voice {
	if length <= 0 {
		length = DefaultLength
	}

	return &Voice{
		length: length,
		gain:   -0.7,
	}
}

// Init opens the speaker.
func (v *Voice) Init() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.play != nil {
		return nil
	}

	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	v.play = func(s beep.Streamer) { speaker.Play(s) }

	return nil
}

// Close stops anything still sounding.
func (v *Voice) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.play == nil {
		return
	}

	speaker.Clear()
	v.play = nil
}

// Streamer returns the tone for label without playing it.
func (v *Voice) Streamer(label string) (beep.Streamer, error) {
	freq, err := Frequency(label)
	if err != nil {
		return nil, err
	}

	sine, err := generators.SineTone(SampleRate, freq)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tone: %w", err)
	}

	return beep.Take(SampleRate.N(v.length), &effects.Gain{
		Streamer: sine,
		Gain:     v.gain,
	}), nil
}

// Speak starts the tone for label and returns without waiting for it.
func (v *Voice) Speak(label string) error {
	v.mu.Lock()
	play := v.play
	v.mu.Unlock()

	if play == nil {
		return ErrNotInitialized
	}

	s, err := v.Streamer(label)
	if err != nil {
		return err
	}

	play(s)

	return nil
}
