/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"strings"

	"github.com/Seednode/followme/playback"
)

// CommandKind is what a spoken word asks for.
type CommandKind int

const (
	CommandValue CommandKind = iota
	CommandBackspace
	CommandClearAll
	CommandPlay
)

// Command is one action parsed from a voice transcript.
type Command struct {
	Kind  CommandKind
	Value playback.Token
}

var numberWords = map[string]string{
	"one":    "1",
	"won":    "1",
	"two":    "2",
	"to":     "2",
	"too":    "2",
	"three":  "3",
	"four":   "4",
	"for":    "4",
	"five":   "5",
	"six":    "6",
	"seven":  "7",
	"eight":  "8",
	"ate":    "8",
	"nine":   "9",
	"ten":    "10",
	"eleven": "11",
	"twelve": "12",
}

// Sharps are numbered 1-5 on the piano keypad.
var sharpOf = map[string]string{"c": "1", "d": "2", "f": "3", "g": "4", "a": "5"}

var flatOf = map[string]string{"d": "1", "e": "2", "g": "3", "a": "4", "b": "5"}

// ParseTranscript turns free speech into commands for the given keypad.
// On the piano, sharps may also be named by their key number. Words that
// mean nothing on this keypad are dropped.
func ParseTranscript(in Input, transcript string) []Command {
	words := strings.FieldsFunc(strings.ToLower(transcript), func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '\t' || r == '\n' || r == '!' || r == '?'
	})

	var out []Command

	for i := 0; i < len(words); i++ {
		w := words[i]
		next := ""
		if i+1 < len(words) {
			next = words[i+1]
		}

		switch {
		case w == "clear" && next == "all", w == "reset":
			out = append(out, Command{Kind: CommandClearAll})
			if w == "clear" {
				i++
			}
			continue
		case w == "clear" || w == "delete" || w == "back" || w == "backspace" || w == "undo":
			out = append(out, Command{Kind: CommandBackspace})
			continue
		case w == "read" && next == "back":
			out = append(out, Command{Kind: CommandPlay})
			i++
			continue
		case w == "play" || w == "repeat" || w == "go":
			out = append(out, Command{Kind: CommandPlay})
			continue
		}

		if in == Piano {
			if v, skip, ok := pianoWord(w, next); ok {
				out = append(out, Command{Kind: CommandValue, Value: playback.Token(v)})
				i += skip
				continue
			}
		}

		v := w
		if n, ok := numberWords[w]; ok {
			v = n
		}
		if in.Accepts(playback.Token(v)) {
			out = append(out, Command{Kind: CommandValue, Value: playback.Token(v)})
		}
	}

	return out
}

// pianoWord reads a note name, optionally followed by "sharp" or "flat",
// and reports how many extra words it consumed.
func pianoWord(w, next string) (string, int, bool) {
	switch {
	case len(w) == 2 && w[1] == '#':
		v, ok := sharpOf[w[:1]]
		return v, 0, ok
	case len(w) == 1 && w[0] >= 'a' && w[0] <= 'g':
		switch next {
		case "sharp":
			v, ok := sharpOf[w]
			return v, 1, ok
		case "flat":
			v, ok := flatOf[w]
			return v, 1, ok
		}
		return strings.ToUpper(w), 0, true
	}

	return "", 0, false
}
