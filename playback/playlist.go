/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package playback turns the sequences of a game into a timed demo run.
//
// A run is built in two steps: BuildPlaylist flattens the active sequences
// into an ordered list of items, and a Scheduler walks that list forward in
// time, one item per step, through an injected After primitive and a Surface
// that performs the visible side effects.
package playback

// Token is a single symbolic value entered on a keypad ("7", "12", "C", ...).
type Token string

// Item is one step of a playlist: the machine that owns the value, and the value itself.
type Item struct {
	Owner int   `json:"owner"`
	Value Token `json:"value"`
}

// BuildPlaylist interleaves the given sequences in chunks of chunkSize values.
//
// With a single sequence (or none), chunking is disabled and the playlist is
// the sequence itself. The input slices are never retained.
func BuildPlaylist(sequences [][]Token, chunkSize int) []Item {
	maxLength := 0
	total := 0
	for _, seq := range sequences {
		total += len(seq)
		if len(seq) > maxLength {
			maxLength = len(seq)
		}
	}

	if maxLength == 0 {
		return []Item{}
	}

	if len(sequences) <= 1 || chunkSize < 1 {
		chunkSize = maxLength
	}

	numChunks := (maxLength + chunkSize - 1) / chunkSize

	playlist := make([]Item, 0, total)

	for c := 0; c < numChunks; c++ {
		for m, seq := range sequences {
			for k := 0; k < chunkSize; k++ {
				i := c*chunkSize + k
				if i >= len(seq) {
					break
				}

				playlist = append(playlist, Item{Owner: m, Value: seq[i]})
			}
		}
	}

	return playlist
}
