/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package playbacktest provides a manual clock and a recording surface for
// tests of code built on the playback package.
package playbacktest

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Seednode/followme/playback"
)

type timer struct {
	at  time.Duration
	seq int
	fn  func()
}

// Clock is a manual playback.After implementation. Nothing runs until the
// test advances it.
type Clock struct {
	now     time.Duration
	seq     int
	pending []timer
}

func NewClock() *Clock {
	return &Clock{}
}

// After implements playback.After.
func (c *Clock) After(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}

	c.pending = append(c.pending, timer{at: c.now + d, seq: c.seq, fn: fn})
	c.seq++
}

// Now is the time elapsed since the clock was created.
func (c *Clock) Now() time.Duration {
	return c.now
}

// Pending is the number of scheduled callbacks that have not run yet.
func (c *Clock) Pending() int {
	return len(c.pending)
}

func (c *Clock) next() (timer, bool) {
	if len(c.pending) == 0 {
		return timer{}, false
	}

	sort.SliceStable(c.pending, func(i, j int) bool {
		if c.pending[i].at != c.pending[j].at {
			return c.pending[i].at < c.pending[j].at
		}
		return c.pending[i].seq < c.pending[j].seq
	})

	return c.pending[0], true
}

// Advance runs every callback due within d, in order, and moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	end := c.now + d

	for {
		t, ok := c.next()
		if !ok || t.at > end {
			break
		}

		c.pending = c.pending[1:]
		c.now = t.at
		t.fn()
	}

	c.now = end
}

// RunAll runs callbacks until none are left, bounded by limit steps.
func (c *Clock) RunAll(limit int) error {
	for i := 0; i < limit; i++ {
		t, ok := c.next()
		if !ok {
			return nil
		}

		c.pending = c.pending[1:]
		c.now = t.at
		t.fn()
	}

	return errors.New("playbacktest: callbacks still pending after limit")
}

// Event is one call recorded by a Recorder.
type Event struct {
	At   time.Duration
	Kind string
	Arg  string
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s(%s)", e.At, e.Kind, e.Arg)
}

// Recorder is a playback.Surface that remembers every call and the current
// state of controls and highlights.
type Recorder struct {
	Clock  *Clock
	Events []Event

	// Missing lists values that have no key on this surface.
	Missing map[playback.Token]bool
	// SpeakErr is returned by Speak when set.
	SpeakErr error

	Disabled map[playback.Control]bool
	Labels   map[playback.Control]string
	Lit      map[playback.Token]string
	Active   map[int]bool
}

func NewRecorder(clock *Clock) *Recorder {
	return &Recorder{
		Clock:    clock,
		Missing:  make(map[playback.Token]bool),
		Disabled: make(map[playback.Control]bool),
		Labels:   make(map[playback.Control]string),
		Lit:      make(map[playback.Token]string),
		Active:   make(map[int]bool),
	}
}

func (r *Recorder) record(kind, arg string) {
	var at time.Duration
	if r.Clock != nil {
		at = r.Clock.Now()
	}

	r.Events = append(r.Events, Event{At: at, Kind: kind, Arg: arg})
}

// Kinds returns the recorded events of the given kind.
func (r *Recorder) Kinds(kind string) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) SetControlDisabled(c playback.Control, disabled bool) {
	r.Disabled[c] = disabled
	r.record("disabled", fmt.Sprintf("%s=%t", c, disabled))
}

func (r *Recorder) SetControlLabel(c playback.Control, text string) {
	r.Labels[c] = text
	r.record("label", fmt.Sprintf("%s=%s", c, text))
}

func (r *Recorder) ApplyHighlight(value playback.Token, class string) bool {
	if r.Missing[value] {
		r.record("miss", string(value))
		return false
	}

	r.Lit[value] = class
	r.record("highlight", string(value))
	return true
}

func (r *Recorder) RemoveHighlight(value playback.Token, class string) {
	delete(r.Lit, value)
	r.record("unhighlight", string(value))
}

func (r *Recorder) ApplyOwnerActiveStyle(owner int) {
	r.Active[owner] = true
	r.record("owner", fmt.Sprint(owner))
}

func (r *Recorder) RestoreOwnerOriginalStyle(owner int) {
	delete(r.Active, owner)
	r.record("restore", fmt.Sprint(owner))
}

func (r *Recorder) Speak(text string) error {
	r.record("speak", text)
	return r.SpeakErr
}

func (r *Recorder) ShowInfoDialog(title, message string) {
	r.record("dialog", title+": "+message)
}

func (r *Recorder) RefreshDisplay() {
	r.record("refresh", "")
}

var _ playback.Surface = (*Recorder)(nil)
