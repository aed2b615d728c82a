/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"errors"
	"time"

	"github.com/Seednode/followme/playback"
)

// ErrBusy is returned for changes requested while a demo is playing.
var ErrBusy = errors.New("demo playback in progress")

const (
	DefaultBaseDelay = 800 * time.Millisecond
	DefaultBaseFlash = 250 * time.Millisecond
)

// Options configure a Controller.
type Options struct {
	ID        string
	Store     Store
	After     playback.After
	Surface   playback.Surface
	BaseDelay time.Duration
	BaseFlash time.Duration
	Logf      func(format string, args ...any)
}

// Controller applies player actions to a profile, persists the result and
// starts demo runs. Like the scheduler it owns, it must only be used from
// the loop behind Options.After.
type Controller struct {
	id        string
	profile   *Profile
	store     Store
	surface   playback.Surface
	scheduler *playback.Scheduler
	baseDelay time.Duration
	baseFlash time.Duration
	logf      func(format string, args ...any)

	// runs counts started demo runs. A pending round advance only fires
	// for the run that scheduled it.
	runs uint64
}

func NewController(profile *Profile, opts Options) *Controller {
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultBaseDelay
	}
	if opts.BaseFlash <= 0 {
		opts.BaseFlash = DefaultBaseFlash
	}

	return &Controller{
		id:        opts.ID,
		profile:   profile,
		store:     opts.Store,
		surface:   opts.Surface,
		scheduler: playback.NewScheduler(opts.After, opts.Surface, opts.Logf),
		baseDelay: opts.BaseDelay,
		baseFlash: opts.BaseFlash,
		logf:      opts.Logf,
	}
}

// Profile is the live profile. Callers must not modify it.
func (c *Controller) Profile() *Profile {
	return c.profile
}

// Busy reports whether a demo run is in progress.
func (c *Controller) Busy() bool {
	return c.scheduler.Running()
}

func (c *Controller) persist() {
	if c.store == nil {
		return
	}

	if err := c.store.Save(c.id, c.profile); err != nil {
		c.logf("STORE: Failed to save profile %s: %v", c.id, err)
	}
}

func (c *Controller) changed() {
	c.persist()
	c.surface.RefreshDisplay()
}

// Request builds the playback request for the current keypad.
func (c *Controller) Request(autoplay bool) playback.Request {
	s := c.profile.Settings
	in := s.CurrentInput

	req := playback.Request{
		Sequences: c.profile.Current().Active(s.CurrentMode),
		ChunkSize: s.ChunkSize,
		Timing: playback.Timing{
			BaseDelay:          c.baseDelay,
			BaseFlash:          c.baseFlash,
			InterSequenceDelay: s.InterSequence(),
			Speed:              s.SpeedFor(in),
		},
		FlashClass: in.FlashClass(),
		Speech:     s.Audio,
		Label:      in.SpokenLabel,
		Autoplay:   autoplay,
	}

	if s.CurrentMode == UniqueRounds {
		req.Policy = playback.UniqueRoundsPolicy
		req.Policy.AutoAdvance = s.AutoClear
		req.Advance = c.advanceFor(c.runs+1, in)
	} else {
		req.Policy = playback.SimonPolicy
	}

	return req
}

// PlayDemo starts a user requested demo run.
func (c *Controller) PlayDemo() bool {
	return c.play(false)
}

func (c *Controller) play(autoplay bool) bool {
	started := c.scheduler.Play(c.Request(autoplay))
	if started {
		c.runs++
		c.logf("PLAY: Started demo for %s (autoplay=%t)", c.id, autoplay)
	}
	return started
}

// advanceFor moves to the next round once run number gen has finished,
// unless the player has since switched keypads or started another run.
func (c *Controller) advanceFor(gen uint64, in Input) func() {
	return func() {
		s := c.profile.Settings
		if gen != c.runs || c.Busy() || s.CurrentInput != in || s.CurrentMode != UniqueRounds {
			return
		}

		if err := c.profile.AdvanceRound(); err != nil {
			return
		}
		c.changed()
	}
}

// Input records a key press, starting an autoplay run when the press
// completes a cycle or a round.
func (c *Controller) Input(value playback.Token) error {
	if c.Busy() {
		return ErrBusy
	}

	autoplay, err := c.profile.AddValue(value)
	if err != nil {
		return err
	}

	c.changed()

	if autoplay {
		c.play(true)
	}
	return nil
}

func (c *Controller) Backspace() error {
	if c.Busy() {
		return ErrBusy
	}
	if err := c.profile.Backspace(); err != nil {
		return err
	}
	c.changed()
	return nil
}

func (c *Controller) ClearAll() error {
	if c.Busy() {
		return ErrBusy
	}
	c.profile.ClearAll()
	c.changed()
	return nil
}

func (c *Controller) ResetRounds() error {
	if c.Busy() {
		return ErrBusy
	}
	if err := c.profile.ResetRounds(); err != nil {
		return err
	}
	c.changed()
	return nil
}

func (c *Controller) ApplySetup(s Setup) error {
	if c.Busy() {
		return ErrBusy
	}
	if err := c.profile.ApplySetup(s); err != nil {
		return err
	}
	c.changed()
	return nil
}

func (c *Controller) ApplyPreferences(prefs Preferences) {
	c.profile.ApplyPreferences(prefs)
	c.changed()
}

// Voice applies a spoken transcript as a single edit. Values, undo and
// clear commands are applied in order and saved once; afterwards at most
// one run starts, either the requested demo or the autoplay run of the
// last value. The first command that cannot be applied stops the rest.
func (c *Controller) Voice(transcript string) error {
	if c.Busy() {
		return ErrBusy
	}

	var (
		edited, autoplay, demo bool
		err                    error
	)

	for _, cmd := range ParseTranscript(c.profile.Settings.CurrentInput, transcript) {
		switch cmd.Kind {
		case CommandValue:
			var full bool
			if full, err = c.profile.AddValue(cmd.Value); err == nil {
				edited, autoplay = true, full
			}
		case CommandBackspace:
			if err = c.profile.Backspace(); err == nil {
				edited, autoplay = true, false
			}
		case CommandClearAll:
			c.profile.ClearAll()
			edited, autoplay = true, false
		case CommandPlay:
			demo = true
		}

		if err != nil {
			break
		}
	}

	if edited {
		c.changed()
	}

	switch {
	case demo:
		c.play(false)
	case autoplay:
		c.play(true)
	}

	return err
}

func (c *Controller) SavePreset(name string) error {
	if err := c.profile.SavePreset(name); err != nil {
		return err
	}
	c.changed()
	return nil
}

func (c *Controller) LoadPreset(name string) error {
	if c.Busy() {
		return ErrBusy
	}
	if err := c.profile.LoadPreset(name); err != nil {
		return err
	}
	c.changed()
	return nil
}

func (c *Controller) DeletePreset(name string) error {
	if err := c.profile.DeletePreset(name); err != nil {
		return err
	}
	c.changed()
	return nil
}

// RestoreDefaults replaces the whole profile, presets included.
func (c *Controller) RestoreDefaults() error {
	if c.Busy() {
		return ErrBusy
	}
	c.profile = DefaultProfile()
	c.changed()
	return nil
}
