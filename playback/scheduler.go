/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playback

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// IdleGlyph is the demo control's label while no run is in progress.
	IdleGlyph = "▶"

	// AdvanceDelay is the grace period between the end of a run and the
	// auto-advance action of policies that request one.
	AdvanceDelay = 300 * time.Millisecond

	emptyTitle = "No Sequence"
)

// RunState is the scheduler's re-entrancy guard.
type RunState int

const (
	Idle RunState = iota
	Running
)

func (s RunState) String() string {
	if s == Running {
		return "running"
	}

	return "idle"
}

// Policy describes how a game mode plays back.
type Policy struct {
	// Interleave plays several machines in chunks, styles the owning machine
	// while its values play, and adds the inter-sequence delay when the owner
	// changes.
	Interleave bool

	// AutoAdvance runs Request.Advance once the run has completed.
	AutoAdvance bool

	// EmptyDialog shows an informational dialog when a user asks to play
	// empty sequences. Autoplay runs never show it.
	EmptyDialog bool
}

var (
	SimonPolicy        = Policy{Interleave: true, EmptyDialog: true}
	UniqueRoundsPolicy = Policy{EmptyDialog: true}
)

// Request is everything a run needs, captured when it is started.
type Request struct {
	Sequences  [][]Token // active sequences, one per machine
	ChunkSize  int
	Timing     Timing
	Policy     Policy
	FlashClass string

	// Speech requests a spoken label per item; Label defaults to the token itself.
	Speech bool
	Label  func(Token) string

	// Autoplay marks runs started by the game rather than by the user.
	Autoplay bool

	// Advance is the follow-on action of Policy.AutoAdvance.
	Advance func()
}

// Scheduler drives at most one playlist at a time through an After primitive.
// It is not safe for concurrent use; every call, including the continuations
// it schedules, must happen on the loop behind After.
type Scheduler struct {
	after   After
	surface Surface
	logf    func(format string, args ...any)

	state RunState
}

func NewScheduler(after After, surface Surface, logf func(format string, args ...any)) *Scheduler {
	if logf == nil {
		logf = func(string, ...any) {}
	}

	return &Scheduler{
		after:   after,
		surface: surface,
		logf:    logf,
	}
}

func (s *Scheduler) State() RunState {
	return s.state
}

func (s *Scheduler) Running() bool {
	return s.state == Running
}

// Play starts a run and reports whether it did. A run is refused while
// another is in progress and when every sequence is empty.
func (s *Scheduler) Play(req Request) bool {
	if s.state == Running {
		return false
	}

	playlist := BuildPlaylist(req.Sequences, req.ChunkSize)
	if len(playlist) == 0 {
		if req.Policy.EmptyDialog && !req.Autoplay {
			s.surface.ShowInfoDialog(emptyTitle, emptyMessage(len(req.Sequences)))
		}

		return false
	}

	r := &run{
		scheduler: s,
		req:       req,
		playlist:  playlist,
		styled:    req.Policy.Interleave && len(req.Sequences) > 1,
		flash:     req.Timing.Flash(),
	}

	s.state = Running
	s.surface.SetControlDisabled(DemoControl, true)
	s.surface.SetControlDisabled(KeysControl, true)

	r.step(0)

	return true
}

func emptyMessage(machines int) string {
	if machines > 1 {
		return "The sequences are empty. Enter some values first!"
	}

	return "The sequence is empty. Enter some values first!"
}

type run struct {
	scheduler *Scheduler
	req       Request
	playlist  []Item
	styled    bool
	flash     time.Duration
}

func (r *run) label(value Token) string {
	if r.req.Label != nil {
		return r.req.Label(value)
	}

	return string(value)
}

func (r *run) step(i int) {
	s := r.scheduler

	if i >= len(r.playlist) {
		r.complete()

		return
	}

	item := r.playlist[i]

	if r.styled {
		s.surface.ApplyOwnerActiveStyle(item.Owner)
	}

	lit := s.surface.ApplyHighlight(item.Value, r.req.FlashClass)
	if !lit {
		s.logf("PLAY: No key for value %q, skipping highlight", item.Value)
	}

	s.surface.SetControlLabel(DemoControl, strconv.Itoa(i+1))

	if r.req.Speech {
		if err := speak(s.surface, r.label(item.Value)); err != nil {
			s.logf("PLAY: Speech failed for %q: %v", item.Value, err)
		}
	}

	ownerChanged := r.styled && i+1 < len(r.playlist) && r.playlist[i+1].Owner != item.Owner
	between := r.req.Timing.Between(ownerChanged)

	s.after(r.flash, func() {
		if lit {
			s.surface.RemoveHighlight(item.Value, r.req.FlashClass)
		}
		if r.styled {
			s.surface.RestoreOwnerOriginalStyle(item.Owner)
		}

		s.after(between, func() {
			r.step(i + 1)
		})
	})
}

func (r *run) complete() {
	s := r.scheduler

	s.state = Idle

	s.surface.SetControlDisabled(DemoControl, false)
	s.surface.SetControlDisabled(KeysControl, false)
	s.surface.SetControlLabel(DemoControl, IdleGlyph)
	s.surface.RefreshDisplay()

	s.logf("PLAY: Finished %d item(s)", len(r.playlist))

	if r.req.Policy.AutoAdvance && r.req.Advance != nil {
		s.after(AdvanceDelay, r.req.Advance)
	}
}

// speak shields the timeline from speech engines that panic instead of
// returning an error.
func speak(surface Surface, text string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("speech panicked: %v", p)
		}
	}()

	return surface.Speak(text)
}
