/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/followme/playback"
	"github.com/Seednode/followme/playback/playbacktest"
)

const runLimit = 10_000

type harness struct {
	clock *playbacktest.Clock
	rec   *playbacktest.Recorder
	store *FileStore
	id    string
	c     *Controller
}

func newController(t *testing.T, p *Profile) *harness {
	t.Helper()

	clock := playbacktest.NewClock()
	rec := playbacktest.NewRecorder(clock)
	store := NewFileStore(afero.NewMemMapFs(), dataDir, nil)
	id := uuid.NewString()

	c := NewController(p, Options{
		ID:      id,
		Store:   store,
		After:   clock.After,
		Surface: rec,
	})

	return &harness{clock: clock, rec: rec, store: store, id: id, c: c}
}

func (h *harness) highlighted() []string {
	var out []string
	for _, e := range h.rec.Kinds("highlight") {
		out = append(out, e.Arg)
	}
	return out
}

func TestControllerAutoplayOnCycle(t *testing.T) {
	h := newController(t, simonProfile(t, 2, 20))

	require.NoError(t, h.c.Input("1"))
	assert.False(t, h.c.Busy())

	require.NoError(t, h.c.Input("2"))
	assert.True(t, h.c.Busy(), "completing a cycle starts a demo")
	assert.ErrorIs(t, h.c.Input("3"), ErrBusy)
	assert.ErrorIs(t, h.c.Backspace(), ErrBusy)

	require.NoError(t, h.clock.RunAll(runLimit))
	assert.False(t, h.c.Busy())
	assert.Equal(t, []string{"1", "2"}, h.highlighted())
	assert.False(t, h.rec.Disabled[playback.KeysControl])
	assert.Equal(t, playback.IdleGlyph, h.rec.Labels[playback.DemoControl])

	require.NoError(t, h.c.Input("3"))
}

func TestControllerPersistsChanges(t *testing.T) {
	h := newController(t, simonProfile(t, 1, 20))
	h.c.Profile().Settings.Autoplay = false

	require.NoError(t, h.c.Input("6"))
	require.NoError(t, h.c.Input("7"))
	require.NoError(t, h.c.Backspace())

	loaded, err := h.store.Load(h.id)
	require.NoError(t, err)
	assert.Equal(t, tokens("6"), loaded.Current().Sequences[0])
	assert.NotEmpty(t, h.rec.Kinds("refresh"))
}

func TestControllerPlayDemo(t *testing.T) {
	p := simonProfile(t, 1, 20)
	p.Settings.Autoplay = false
	h := newController(t, p)

	assert.False(t, h.c.PlayDemo())
	dialogs := h.rec.Kinds("dialog")
	require.Len(t, dialogs, 1)
	assert.Equal(t, "No Sequence: The sequence is empty. Enter some values first!", dialogs[0].Arg)

	require.NoError(t, h.c.Input("4"))
	assert.False(t, h.c.Busy())

	assert.True(t, h.c.PlayDemo())
	assert.False(t, h.c.PlayDemo(), "a second run is refused")

	require.NoError(t, h.clock.RunAll(runLimit))
	assert.Equal(t, []string{"4"}, h.highlighted())
}

func TestControllerUniqueRoundsAutoAdvance(t *testing.T) {
	h := newController(t, uniqueProfile(t, 20))

	require.NoError(t, h.c.Input("5"))
	require.True(t, h.c.Busy())

	require.NoError(t, h.clock.RunAll(runLimit))
	assert.False(t, h.c.Busy())

	st := h.c.Profile().Current()
	assert.Equal(t, 2, st.CurrentRound)
	assert.Empty(t, st.Sequences[0])

	loaded, err := h.store.Load(h.id)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Current().CurrentRound)
}

func TestControllerUniqueRoundsWithoutAutoClear(t *testing.T) {
	p := uniqueProfile(t, 20)
	p.Settings.AutoClear = false
	h := newController(t, p)

	require.NoError(t, h.c.Input("5"))
	require.NoError(t, h.clock.RunAll(runLimit))

	st := h.c.Profile().Current()
	assert.Equal(t, 1, st.CurrentRound)
	assert.Equal(t, tokens("5"), st.Sequences[0])
	assert.False(t, h.rec.Disabled[playback.KeysControl])
}

// finishRun steps the clock until the current run has completed, leaving
// any follow-on callbacks pending.
func (h *harness) finishRun(t *testing.T) {
	t.Helper()

	for i := 0; h.c.Busy(); i++ {
		require.Less(t, i, runLimit)
		h.clock.Advance(10 * time.Millisecond)
	}
}

func TestControllerAdvanceSkippedAfterKeypadChange(t *testing.T) {
	h := newController(t, uniqueProfile(t, 20))

	require.NoError(t, h.c.Input("5"))
	h.finishRun(t)
	require.Positive(t, h.clock.Pending(), "the round advance is still pending")

	setup := h.c.Profile().SetupOf()
	setup.Input = Piano
	require.NoError(t, h.c.ApplySetup(setup))

	require.NoError(t, h.clock.RunAll(runLimit))

	p := h.c.Profile()
	assert.Equal(t, 1, p.States[Piano].CurrentRound, "the new keypad is left alone")
	assert.Equal(t, 1, p.States[Key9].CurrentRound)
	assert.Equal(t, tokens("5"), p.States[Key9].Sequences[0])
}

func TestControllerAdvanceOncePerRound(t *testing.T) {
	h := newController(t, uniqueProfile(t, 20))

	require.NoError(t, h.c.Input("5"))
	h.finishRun(t)

	require.True(t, h.c.PlayDemo(), "replay during the grace period")
	require.NoError(t, h.clock.RunAll(runLimit))

	st := h.c.Profile().Current()
	assert.Equal(t, 2, st.CurrentRound)
	assert.Empty(t, st.Sequences[0])
}

func TestControllerRequest(t *testing.T) {
	p := DefaultProfile()
	require.NoError(t, p.ApplySetup(Setup{Input: Piano, Mode: Simon, Machines: 2, SequenceLength: 20, ChunkSize: 2, InterSequenceDelay: 500}))
	p.Settings.InputSpeeds = map[Input]float64{Piano: 0.5}
	p.Settings.Audio = false
	h := newController(t, p)

	req := h.c.Request(true)

	assert.Equal(t, playback.SimonPolicy, req.Policy)
	assert.Len(t, req.Sequences, 2)
	assert.Equal(t, 2, req.ChunkSize)
	assert.Equal(t, "flash", req.FlashClass)
	assert.False(t, req.Speech)
	assert.True(t, req.Autoplay)
	assert.Equal(t, 0.5, req.Timing.Speed)
	assert.Equal(t, 500*time.Millisecond, req.Timing.InterSequenceDelay)
	assert.Equal(t, DefaultBaseDelay, req.Timing.BaseDelay)
	assert.Equal(t, "A sharp", req.Label("5"))
	assert.Nil(t, req.Advance)
}

func TestControllerVoice(t *testing.T) {
	p := simonProfile(t, 1, 20)
	p.Settings.Autoplay = false
	h := newController(t, p)

	require.NoError(t, h.c.Voice("one two three back play"))
	assert.Equal(t, tokens("1", "2"), h.c.Profile().Current().Sequences[0])
	assert.True(t, h.c.Busy())

	assert.ErrorIs(t, h.c.Voice("four"), ErrBusy)
}

func TestControllerVoiceAutoplaysOnce(t *testing.T) {
	h := newController(t, DefaultProfile())
	require.True(t, h.c.Profile().Settings.Autoplay)

	require.NoError(t, h.c.Voice("one two three"))
	assert.Equal(t, tokens("1", "2", "3"), h.c.Profile().Current().Sequences[0])
	assert.True(t, h.c.Busy())

	require.NoError(t, h.clock.RunAll(runLimit))
	assert.False(t, h.c.Busy())

	var starts int
	for _, e := range h.rec.Kinds("disabled") {
		if e.Arg == "demo=true" {
			starts++
		}
	}
	assert.Equal(t, 1, starts, "one run for the whole transcript")
	assert.Equal(t, []string{"1", "2", "3"}, h.highlighted())

	loaded, err := h.store.Load(h.id)
	require.NoError(t, err)
	assert.Equal(t, tokens("1", "2", "3"), loaded.Current().Sequences[0])
}

func TestControllerVoiceStopsAtFirstError(t *testing.T) {
	h := newController(t, uniqueProfile(t, 20))

	assert.ErrorIs(t, h.c.Voice("four five"), ErrSequenceFull)
	assert.Equal(t, tokens("4"), h.c.Profile().Current().Sequences[0])
	assert.True(t, h.c.Busy(), "the applied value still plays")
}

func TestControllerPresetsAndDefaults(t *testing.T) {
	h := newController(t, DefaultProfile())

	require.NoError(t, h.c.SavePreset("saved"))
	speed := 0.5
	h.c.ApplyPreferences(Preferences{PlaybackSpeed: &speed})
	require.NoError(t, h.c.LoadPreset("saved"))
	assert.Equal(t, 1.0, h.c.Profile().Settings.PlaybackSpeed)

	require.NoError(t, h.c.RestoreDefaults())
	assert.Empty(t, h.c.Profile().PresetNames())

	loaded, err := h.store.Load(h.id)
	require.NoError(t, err)
	assert.Empty(t, loaded.PresetNames())
}
