/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokens(values ...string) []Token {
	out := make([]Token, len(values))
	for i, v := range values {
		out[i] = Token(v)
	}
	return out
}

func TestBuildPlaylistChunkOrder(t *testing.T) {
	a := tokens("1", "2", "3", "4", "5")
	b := tokens("6", "7", "8")

	got := BuildPlaylist([][]Token{a, b}, 2)

	want := []Item{
		{0, "1"}, {0, "2"},
		{1, "6"}, {1, "7"},
		{0, "3"}, {0, "4"},
		{1, "8"},
		{0, "5"},
	}
	assert.Equal(t, want, got)
}

func TestBuildPlaylistSingleMachineIgnoresChunkSize(t *testing.T) {
	seq := tokens("3", "1", "4", "1", "5", "9", "2", "6")

	for _, chunk := range []int{0, 1, 2, 3, 100} {
		got := BuildPlaylist([][]Token{seq}, chunk)

		require.Len(t, got, len(seq), "chunk %d", chunk)
		for i, item := range got {
			assert.Equal(t, 0, item.Owner)
			assert.Equal(t, seq[i], item.Value)
		}
	}
}

func TestBuildPlaylistLengthAndPositions(t *testing.T) {
	cases := []struct {
		name      string
		sequences [][]Token
		chunk     int
	}{
		{"two even", [][]Token{tokens("1", "2"), tokens("3", "4")}, 1},
		{"three uneven", [][]Token{tokens("1"), tokens("2", "3", "4", "5"), tokens("6", "7")}, 3},
		{"four with empty", [][]Token{tokens("9", "8", "7"), nil, tokens("C", "D"), tokens("12")}, 2},
		{"chunk larger than all", [][]Token{tokens("1", "2"), tokens("3")}, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := BuildPlaylist(tc.sequences, tc.chunk)

			total := 0
			for _, seq := range tc.sequences {
				total += len(seq)
			}
			require.Len(t, got, total)

			// Each owner's values come out front to back.
			seen := make([]int, len(tc.sequences))
			for _, item := range got {
				require.Less(t, item.Owner, len(tc.sequences))
				pos := seen[item.Owner]
				require.Less(t, pos, len(tc.sequences[item.Owner]))
				assert.Equal(t, tc.sequences[item.Owner][pos], item.Value)
				seen[item.Owner]++
			}
		})
	}
}

func TestBuildPlaylistEmpty(t *testing.T) {
	assert.Empty(t, BuildPlaylist(nil, 3))
	assert.Empty(t, BuildPlaylist([][]Token{{}, {}, nil}, 3))
}

func TestBuildPlaylistDoesNotAlias(t *testing.T) {
	seq := tokens("1", "2")
	got := BuildPlaylist([][]Token{seq}, 1)

	seq[0] = "9"
	assert.Equal(t, Token("1"), got[0].Value)
}
