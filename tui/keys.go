/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tui

import (
	"strings"

	"github.com/Seednode/followme/game"
	"github.com/Seednode/followme/playback"
)

// Key12 has no single characters for its last three values.
var key12Extra = map[rune]playback.Token{
	'0': "10",
	'-': "11",
	'=': "12",
}

// TokenFor maps a typed character to a value of the given keypad.
func TokenFor(in game.Input, r rune) (playback.Token, bool) {
	var v playback.Token

	switch in {
	case game.Piano:
		if r >= 'a' && r <= 'g' {
			r -= 'a' - 'A'
		}
		v = playback.Token(string(r))
	case game.Key12:
		if extra, ok := key12Extra[r]; ok {
			v = extra
		} else {
			v = playback.Token(string(r))
		}
	default:
		v = playback.Token(string(r))
	}

	if !in.Accepts(v) {
		return "", false
	}
	return v, true
}

// KeyName is the short label drawn on a key.
func KeyName(in game.Input, v playback.Token) string {
	return strings.Replace(in.SpokenLabel(v), " sharp", "#", 1)
}

// Hint is the key a player types for v.
func Hint(in game.Input, v playback.Token) string {
	if in == game.Piano {
		return strings.ToLower(string(v))
	}
	for r, extra := range key12Extra {
		if in == game.Key12 && extra == v {
			return string(r)
		}
	}
	return string(v)
}
