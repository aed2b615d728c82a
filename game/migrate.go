/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"encoding/json"
	"fmt"
)

// Older documents used other names for some fields; they are renamed
// before decoding so stored progress survives upgrades.
var (
	settingsRenames = map[string]string{
		"isChangingAutoClearEnabled": "isUniqueRoundsAutoClearEnabled",
	}
	settingsDropped = []string{"areSlidersLocked"}
	modeRenames     = map[string]Mode{"changing": UniqueRounds}

	stateRenames = map[string]string{
		"sequenceCount": "machineCount",
	}
)

type storedProfile struct {
	Settings json.RawMessage            `json:"settings"`
	State    map[string]json.RawMessage `json:"state"`
	Presets  map[string]json.RawMessage `json:"presets"`
}

// DecodeProfile reads a stored profile, filling anything missing with
// defaults and upgrading old field names.
func DecodeProfile(data []byte) (*Profile, error) {
	var stored storedProfile
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	p := DefaultProfile()

	if len(stored.Settings) > 0 {
		settings, err := decodeSettings(stored.Settings)
		if err != nil {
			return nil, err
		}
		p.Settings = settings
	}

	for key, raw := range stored.State {
		in := Input(key)
		if !in.Valid() {
			continue
		}

		st := NewGameState(p.Settings.SequenceLength)
		migrated, err := rename(raw, stateRenames, nil)
		if err != nil {
			return nil, fmt.Errorf("state %s: %w", key, err)
		}
		if err := json.Unmarshal(migrated, st); err != nil {
			return nil, fmt.Errorf("state %s: %w", key, err)
		}
		p.States[in] = st
	}

	for name, raw := range stored.Presets {
		settings, err := decodeSettings(raw)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		p.Presets[name] = settings
	}

	p.normalize()

	return p, nil
}

func decodeSettings(raw json.RawMessage) (Settings, error) {
	migrated, err := rename(raw, settingsRenames, settingsDropped)
	if err != nil {
		return Settings{}, fmt.Errorf("settings: %w", err)
	}

	s := DefaultSettings()
	if err := json.Unmarshal(migrated, &s); err != nil {
		return Settings{}, fmt.Errorf("settings: %w", err)
	}
	if m, ok := modeRenames[string(s.CurrentMode)]; ok {
		s.CurrentMode = m
	}
	s.Normalize()

	return s, nil
}

// rename moves old keys of a JSON object to their new names. A value already
// stored under the new name wins.
func rename(raw json.RawMessage, renames map[string]string, dropped []string) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	for _, key := range dropped {
		delete(fields, key)
	}
	for from, to := range renames {
		v, ok := fields[from]
		if !ok {
			continue
		}
		delete(fields, from)
		if _, exists := fields[to]; !exists {
			fields[to] = v
		}
	}

	return json.Marshal(fields)
}
