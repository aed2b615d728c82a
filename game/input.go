/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"strconv"

	"github.com/Seednode/followme/playback"
)

// MaxMachines is the number of sequence slots each input keeps.
const MaxMachines = 4

// Input selects the keypad in use.
type Input string

const (
	Key9  Input = "key9"
	Key12 Input = "key12"
	Piano Input = "piano"
)

// Inputs lists every keypad in display order.
var Inputs = []Input{Key9, Key12, Piano}

// Mode selects the game rules.
type Mode string

const (
	Simon        Mode = "simon"
	UniqueRounds Mode = "unique_rounds"
)

func (i Input) Valid() bool {
	switch i {
	case Key9, Key12, Piano:
		return true
	}
	return false
}

func (m Mode) Valid() bool {
	return m == Simon || m == UniqueRounds
}

// Name is the human readable keypad name.
func (i Input) Name() string {
	switch i {
	case Key9:
		return "9-Key"
	case Key12:
		return "12-Key"
	case Piano:
		return "Piano"
	}
	return string(i)
}

func (m Mode) Name() string {
	if m == UniqueRounds {
		return "Unique Rounds"
	}
	return "Simon Says"
}

// Piano keys in keyboard order: naturals are letters, the five sharps are digits.
var pianoKeys = []playback.Token{"C", "1", "D", "2", "E", "F", "3", "G", "4", "A", "5", "B"}

var pianoSpeech = map[playback.Token]string{
	"1": "C sharp",
	"2": "D sharp",
	"3": "F sharp",
	"4": "G sharp",
	"5": "A sharp",
}

// Keys returns the values of every key on the keypad, in layout order.
func (i Input) Keys() []playback.Token {
	switch i {
	case Piano:
		return append([]playback.Token(nil), pianoKeys...)
	case Key12:
		return numberKeys(12)
	default:
		return numberKeys(9)
	}
}

func numberKeys(n int) []playback.Token {
	keys := make([]playback.Token, n)
	for k := range keys {
		keys[k] = playback.Token(strconv.Itoa(k + 1))
	}
	return keys
}

// Accepts reports whether value is a key of this keypad.
func (i Input) Accepts(value playback.Token) bool {
	switch i {
	case Key9:
		return len(value) == 1 && value[0] >= '1' && value[0] <= '9'
	case Key12:
		n, err := strconv.Atoi(string(value))
		return err == nil && n >= 1 && n <= 12 && strconv.Itoa(n) == string(value)
	case Piano:
		return len(value) == 1 && ((value[0] >= '1' && value[0] <= '5') || (value[0] >= 'A' && value[0] <= 'G'))
	}
	return false
}

// FlashClass is the highlight class for keys of this keypad.
func (i Input) FlashClass() string {
	switch i {
	case Piano:
		return "flash"
	case Key12:
		return "key12-flash"
	default:
		return "key9-flash"
	}
}

// SpokenLabel is what speech says for value on this keypad.
func (i Input) SpokenLabel(value playback.Token) string {
	if i == Piano {
		if label, ok := pianoSpeech[value]; ok {
			return label
		}
	}
	return string(value)
}
