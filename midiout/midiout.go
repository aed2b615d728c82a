/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package midiout mirrors playback highlights as MIDI notes.
package midiout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/Seednode/followme/game"
	"github.com/Seednode/followme/playback"
)

const (
	middleC  = 60
	velocity = 100
)

var ErrNoPort = errors.New("no such MIDI output port")

// Semitones above C of the piano keypad values.
var pianoNotes = map[playback.Token]uint8{
	"C": 0,
	"1": 1,
	"D": 2,
	"2": 3,
	"E": 4,
	"F": 5,
	"3": 6,
	"G": 7,
	"4": 8,
	"A": 9,
	"5": 10,
	"B": 11,
}

var major = []uint8{0, 2, 4, 5, 7, 9, 11, 12, 14, 16, 17, 19}

// Note returns the MIDI key for a value of the given keypad. Numbered keys
// climb the C major scale from middle C.
func Note(in game.Input, value playback.Token) (uint8, bool) {
	if !in.Accepts(value) {
		return 0, false
	}

	if in == game.Piano {
		semitones, ok := pianoNotes[value]
		return middleC + semitones, ok
	}

	n, err := strconv.Atoi(string(value))
	if err != nil || n < 1 || n > len(major) {
		return 0, false
	}
	return middleC + major[n-1], true
}

// Ports lists the names of the available output ports.
func Ports() []string {
	outs := gomidi.GetOutPorts()

	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names
}

// Output sends notes on one channel.
type Output struct {
	mu      sync.Mutex
	send    func(gomidi.Message) error
	channel uint8
}

// New wraps an open sender.
func New(send func(gomidi.Message) error, channel uint8) *Output {
	return &Output{
		send:    send,
		channel: channel & 0x0f,
	}
}

// Open connects to the first output port whose name contains name, or to
// the port with that index.
func Open(name string, channel uint8) (*Output, error) {
	outs := gomidi.GetOutPorts()

	index, err := strconv.Atoi(name)
	if err != nil {
		index = -1
		for i, out := range outs {
			if strings.Contains(strings.ToLower(out.String()), strings.ToLower(name)) {
				index = i
				break
			}
		}
	}

	if index < 0 || index >= len(outs) {
		return nil, fmt.Errorf("%w: %q", ErrNoPort, name)
	}

	send, err := gomidi.SendTo(outs[index])
	if err != nil {
		return nil, fmt.Errorf("failed to open port %s: %w", outs[index], err)
	}

	return New(send, channel), nil
}

func (o *Output) NoteOn(key uint8) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.send(gomidi.NoteOn(o.channel, key, velocity))
}

func (o *Output) NoteOff(key uint8) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.send(gomidi.NoteOff(o.channel, key))
}

// Close releases the MIDI driver.
func (o *Output) Close() {
	gomidi.CloseDriver()
}

// Surface sounds a note for every highlight of the wrapped surface. MIDI
// failures are logged and never reach the scheduler.
type Surface struct {
	playback.Surface

	out   *Output
	input func() game.Input
	logf  func(format string, args ...any)
}

func Wrap(inner playback.Surface, out *Output, input func() game.Input, logf func(format string, args ...any)) *Surface {
	if logf == nil {
		logf = func(string, ...any) {}
	}

	return &Surface{
		Surface: inner,
		out:     out,
		input:   input,
		logf:    logf,
	}
}

func (s *Surface) ApplyHighlight(value playback.Token, class string) bool {
	lit := s.Surface.ApplyHighlight(value, class)
	if !lit {
		return false
	}

	if key, ok := Note(s.input(), value); ok {
		if err := s.out.NoteOn(key); err != nil {
			s.logf("MIDI: Note on %d failed: %v", key, err)
		}
	}

	return true
}

func (s *Surface) RemoveHighlight(value playback.Token, class string) {
	s.Surface.RemoveHighlight(value, class)

	if key, ok := Note(s.input(), value); ok {
		if err := s.out.NoteOff(key); err != nil {
			s.logf("MIDI: Note off %d failed: %v", key, err)
		}
	}
}

var _ playback.Surface = (*Surface)(nil)
