/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package help builds the help tabs and the virtual assistant prompts.
package help

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Seednode/followme/game"
)

// Entry is one labelled line of a help block.
type Entry struct {
	Term string `json:"term"`
	Text string `json:"text"`
}

// Block is a titled group of entries, optionally introduced by a sentence.
type Block struct {
	Heading string  `json:"heading"`
	Intro   string  `json:"intro,omitempty"`
	Entries []Entry `json:"entries,omitempty"`
}

// Tab is one page of the help dialog.
type Tab struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

// Prompts are the texts a player can paste into a voice assistant so it
// plays along. Only the prompt of the current mode is shown.
type Prompts struct {
	Simon        string    `json:"simon"`
	UniqueRounds string    `json:"uniqueRounds"`
	Show         game.Mode `json:"show"`
}

// Help is everything the help dialog renders.
type Help struct {
	Tabs    []Tab   `json:"tabs"`
	Prompts Prompts `json:"prompts"`
}

var tabs = []Tab{
	{
		ID:    "general",
		Title: "General",
		Blocks: []Block{
			{
				Heading: "App Overview",
				Intro:   "Enter values on the keypad, then watch and listen as the app plays them back. Game setup is shown on launch and from Settings.",
			},
			{
				Heading: "Basic Controls",
				Entries: []Entry{
					{"Keypad", "Tap a key to add its value to the sequence."},
					{"Play (▶)", "Plays back the current sequence or sequences."},
					{"Backspace (←)", "Removes the last value entered."},
					{"Settings (⚙️)", "Speed, autoplay, audio and display options."},
					{"RESET", "Unique Rounds only. Starts over at round 1."},
				},
			},
		},
	},
	{
		ID:    "modes",
		Title: "Modes",
		Blocks: []Block{
			{
				Heading: "Inputs",
				Entries: []Entry{
					{game.Key9.Name(), "A 3x3 grid of the values 1 to 9."},
					{game.Key12.Name(), "A 4x3 grid of the values 1 to 12."},
					{game.Piano.Name(), "Seven white keys and five sharps."},
				},
			},
			{
				Heading: "Modes",
				Entries: []Entry{
					{game.Simon.Name(), fmt.Sprintf("Enter values up to the sequence length, spread over 1 to %d machines.", game.MaxMachines)},
					{game.UniqueRounds.Name(), "Each round is one value longer than the last, up to the sequence length. Always a single machine."},
				},
			},
		},
	},
	{
		ID:    "settings",
		Title: "Settings",
		Blocks: []Block{
			{
				Heading: "Game Setup",
				Intro:   "Shown on launch and from the Change Game Setup button in Settings.",
				Entries: []Entry{
					{"Input", "The keypad to play on."},
					{"Game Mode", "Simon Says or Unique Rounds."},
					{"Machines", "Simon Says only. How many sequences are interleaved."},
					{"Sequence Length", "The most values a sequence holds, and the last round."},
					{"Multi-Sequence Options", "Simon Says with 2 or more machines. Chunk size and the pause between machines."},
				},
			},
			{
				Heading: "Settings (⚙️)",
				Entries: []Entry{
					{"Presets", "Save the current configuration and load it later."},
					{"Playback Speed", "From 50% to 150%."},
					{"Autoplay", "Plays the demo by itself once a cycle or round is complete."},
					{"Auto Clear", "Unique Rounds only. Clears the sequence and moves to the next round after playback."},
					{"Sequence Size", "The size of the sequence boxes."},
					{"Toggles", "Dark mode, speed deleting, audio, voice input and haptics."},
				},
			},
		},
	},
}

// Params are the settings the prompts depend on.
type Params struct {
	Mode           game.Mode
	Machines       int
	SequenceLength int
	Autoplay       bool
	AutoClear      bool
}

// ParamsOf reads the prompt parameters from a profile.
func ParamsOf(p *game.Profile) Params {
	machines := p.Current().MachineCount
	if p.Settings.CurrentMode == game.UniqueRounds {
		machines = 1
	}

	return Params{
		Mode:           p.Settings.CurrentMode,
		Machines:       machines,
		SequenceLength: p.Settings.SequenceLength,
		Autoplay:       p.Settings.Autoplay,
		AutoClear:      p.Settings.AutoClear,
	}
}

var funcs = template.FuncMap{
	"machines": func(n int) string {
		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("Machine %d", i+1)
		}
		return strings.Join(names, ", ")
	},
}

var simonPrompt = template.Must(template.New("simon").Funcs(funcs).Parse(
	`{{if eq .Machines 1 -}}
Let's play 'Simon Says' (1 Machine).
1. I will give you values one at a time.
2. {{if .Autoplay}}The game is **automatic**. Every time I give you a value, **immediately** read the **entire** sequence back to me.{{else}}When I say 'read back', read the entire sequence back to me.{{end}}
3. 'Clear': Delete the last value I gave you.
4. 'Clear all': Delete the entire sequence.
Let's start.
{{- else -}}
Let's play 'Simon Says' ({{.Machines}} Machines).
1. I will give you one value at a time. Assign the values to the machines in turn ({{machines .Machines}}, then back to Machine 1).
2. {{if .Autoplay}}The game is **automatic**. When I give you the value for the *last* machine (Machine {{.Machines}}), **immediately** read all sequences back to me, in order.{{else}}After the value for the *last* machine, I will say 'read back'. Then read all sequences back to me, in order.{{end}}
3. When you are done reading, I will give you the next value for Machine 1.
4. 'Clear': Delete the last value I gave you.
5. 'Clear all': Delete all sequences.
Let's start with Machine 1.
{{- end}}`))

var roundsPrompt = template.Must(template.New("rounds").Parse(
	`Let's play 'Unique Rounds Mode'.
1. We will play from Round 1 up to Round {{.SequenceLength}}.
2. Each round has as many values as its number (Round 3 has 3 values).
3. I will give you the values of the current round one at a time.
4. {{if .Autoplay}}The game is **automatic**. As soon as I give you the **last value of the round**, **immediately** read the whole sequence for that round back to me.{{else}}After the last value of the round, I will say 'read back'. Then read the whole sequence for that round back to me.{{end}}
5. {{if and .Autoplay .AutoClear}}When you are done reading, **automatically** clear the sequence, move to the next round and say 'Next Round'.{{else}}When you are done reading, wait for me to say 'next' before you clear and move on.{{end}}
6. 'Repeat': Read the sequence of the current round again.
7. 'Reset': Go back to Round 1.
Let's start with Round 1.`))

func render(t *template.Template, p Params) (string, error) {
	var buf bytes.Buffer

	if err := t.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", t.Name(), err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// Build returns the help tabs and the prompts for p.
func Build(p Params) (Help, error) {
	if p.Machines < 1 {
		p.Machines = 1
	}

	simon, err := render(simonPrompt, p)
	if err != nil {
		return Help{}, err
	}

	rounds, err := render(roundsPrompt, p)
	if err != nil {
		return Help{}, err
	}

	show := p.Mode
	if !show.Valid() {
		show = game.Simon
	}

	return Help{
		Tabs: append([]Tab(nil), tabs...),
		Prompts: Prompts{
			Simon:        simon,
			UniqueRounds: rounds,
			Show:         show,
		},
	}, nil
}
