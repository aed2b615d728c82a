/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "github.com/Seednode/followme/playback"

// GameState is the progress of one keypad. Sequences always holds
// MaxMachines slots; only the first MachineCount are in play.
type GameState struct {
	Sequences         [][]playback.Token `json:"sequences"`
	MachineCount      int                `json:"machineCount"`
	NextSequenceIndex int                `json:"nextSequenceIndex"`
	CurrentRound      int                `json:"currentRound"`
	MaxRound          int                `json:"maxRound"`
}

func NewGameState(maxRound int) *GameState {
	return &GameState{
		Sequences:    emptySequences(),
		MachineCount: 1,
		CurrentRound: 1,
		MaxRound:     maxRound,
	}
}

func emptySequences() [][]playback.Token {
	seqs := make([][]playback.Token, MaxMachines)
	for i := range seqs {
		seqs[i] = []playback.Token{}
	}
	return seqs
}

// normalize repairs a state decoded from storage.
func (g *GameState) normalize(maxRound int) {
	for len(g.Sequences) < MaxMachines {
		g.Sequences = append(g.Sequences, []playback.Token{})
	}
	g.Sequences = g.Sequences[:MaxMachines]
	for i, seq := range g.Sequences {
		if seq == nil {
			g.Sequences[i] = []playback.Token{}
		}
	}

	g.MachineCount = clampInt(g.MachineCount, 1, MaxMachines)
	g.MaxRound = maxRound
	g.CurrentRound = clampInt(g.CurrentRound, 1, max(maxRound, 1))
	if g.NextSequenceIndex < 0 {
		g.NextSequenceIndex = 0
	}
	g.NextSequenceIndex %= g.MachineCount
}

// reset clears every sequence and returns to the first machine and round.
func (g *GameState) reset() {
	g.Sequences = emptySequences()
	g.NextSequenceIndex = 0
	g.CurrentRound = 1
}

// Active returns copies of the sequences in play under mode.
func (g *GameState) Active(mode Mode) [][]playback.Token {
	n := g.MachineCount
	if mode == UniqueRounds {
		n = 1
	}

	out := make([][]playback.Token, n)
	for i := range out {
		out[i] = append([]playback.Token(nil), g.Sequences[i]...)
	}
	return out
}

// Len is the number of values held by the sequences in play.
func (g *GameState) Len(mode Mode) int {
	total := 0
	for _, seq := range g.Active(mode) {
		total += len(seq)
	}
	return total
}

func (g *GameState) clone() *GameState {
	c := *g
	c.Sequences = make([][]playback.Token, len(g.Sequences))
	for i, seq := range g.Sequences {
		c.Sequences[i] = append([]playback.Token{}, seq...)
	}
	return &c
}
