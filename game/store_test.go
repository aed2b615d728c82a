/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataDir = "/data"

func newTestStore(t *testing.T) (*FileStore, afero.Fs, *[]string) {
	t.Helper()

	fs := afero.NewMemMapFs()
	var logs []string
	store := NewFileStore(fs, dataDir, func(format string, args ...any) {
		logs = append(logs, format)
	})
	return store, fs, &logs
}

func TestFileStoreLoadMissing(t *testing.T) {
	store, _, _ := newTestStore(t)

	p, err := store.Load(uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), p)
}

func TestFileStoreRejectsBadIDs(t *testing.T) {
	store, _, _ := newTestStore(t)

	for _, id := range []string{"", "../../etc/passwd", "not-a-uuid"} {
		_, err := store.Load(id)
		assert.ErrorIs(t, err, ErrInvalidID, id)
		assert.ErrorIs(t, store.Save(id, DefaultProfile()), ErrInvalidID, id)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, fs, _ := newTestStore(t)
	id := uuid.NewString()

	p := simonProfile(t, 3, 25)
	_, err := p.AddValue("8")
	require.NoError(t, err)
	require.NoError(t, p.SavePreset("mine"))

	require.NoError(t, store.Save(id, p))

	exists, err := afero.Exists(fs, filepath.Join(dataDir, id+".json"))
	require.NoError(t, err)
	assert.True(t, exists)

	leftovers, err := afero.Glob(fs, filepath.Join(dataDir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	loaded, err := store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}

func TestFileStoreDiscardsCorruptProfiles(t *testing.T) {
	store, fs, logs := newTestStore(t)
	id := uuid.NewString()
	path := filepath.Join(dataDir, id+".json")

	require.NoError(t, afero.WriteFile(fs, path, []byte(`{"settings": [`), 0644))

	p, err := store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), p)
	assert.NotEmpty(t, *logs)

	exists, err := afero.Exists(fs, path)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDecodeProfileMigratesOldNames(t *testing.T) {
	data := []byte(`{
		"settings": {
			"currentInput": "key12",
			"currentMode": "changing",
			"sequenceLength": 15,
			"isChangingAutoClearEnabled": false,
			"areSlidersLocked": true
		},
		"state": {
			"key12": {
				"sequences": [["1", "12"]],
				"sequenceCount": 1,
				"currentRound": 3
			},
			"key7": {
				"sequences": [["1"]]
			}
		}
	}`)

	p, err := DecodeProfile(data)
	require.NoError(t, err)

	assert.Equal(t, Key12, p.Settings.CurrentInput)
	assert.Equal(t, UniqueRounds, p.Settings.CurrentMode)
	assert.False(t, p.Settings.AutoClear)
	assert.True(t, p.Settings.Autoplay, "missing settings take defaults")

	st := p.States[Key12]
	assert.Equal(t, tokens("1", "12"), st.Sequences[0])
	assert.Len(t, st.Sequences, MaxMachines)
	assert.Equal(t, 1, st.MachineCount)
	assert.Equal(t, 3, st.CurrentRound)
	assert.Equal(t, 15, st.MaxRound)

	assert.Len(t, p.States, len(Inputs))
	assert.Equal(t, 15, p.States[Piano].MaxRound)
}

func TestDecodeProfileNewNameWins(t *testing.T) {
	p, err := DecodeProfile([]byte(`{"settings": {
		"isChangingAutoClearEnabled": false,
		"isUniqueRoundsAutoClearEnabled": true
	}}`))
	require.NoError(t, err)
	assert.True(t, p.Settings.AutoClear)
}

func TestDecodeProfileRepairsState(t *testing.T) {
	p, err := DecodeProfile([]byte(`{"state": {"key9": {
		"sequences": [["1"], null, ["2"], [], ["3"]],
		"machineCount": 9,
		"nextSequenceIndex": 7,
		"currentRound": 40
	}}}`))
	require.NoError(t, err)

	st := p.States[Key9]
	assert.Len(t, st.Sequences, MaxMachines)
	assert.NotNil(t, st.Sequences[1])
	assert.Equal(t, MaxMachines, st.MachineCount)
	assert.Equal(t, 3, st.NextSequenceIndex)
	assert.Equal(t, 20, st.CurrentRound)
}

func TestDecodeProfileRejectsGarbage(t *testing.T) {
	for _, data := range []string{`nope`, `{"settings": 4}`, `{"state": {"key9": {"sequences": "x"}}}`} {
		_, err := DecodeProfile([]byte(data))
		assert.Error(t, err, data)
	}
}
