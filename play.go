/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/Seednode/followme/game"
	"github.com/Seednode/followme/midiout"
	"github.com/Seednode/followme/tone"
	"github.com/Seednode/followme/tui"
)

const (
	terminalPlayerFile = "terminal.id"
	terminalLogFile    = "followme.log"
)

// terminalPlayer returns the player id used by the terminal game, creating
// and remembering one on first use.
func terminalPlayer(fs afero.Fs, cfg *Config) (string, error) {
	if cfg.player != "" {
		id, err := uuid.Parse(cfg.player)
		if err != nil {
			return "", fmt.Errorf("%w: %q", game.ErrInvalidID, cfg.player)
		}
		return id.String(), nil
	}

	path := filepath.Join(cfg.dataDir, terminalPlayerFile)

	data, err := afero.ReadFile(fs, path)
	if err == nil {
		if id, err := uuid.Parse(strings.TrimSpace(string(data))); err == nil {
			return id.String(), nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	id := uuid.NewString()

	if err := fs.MkdirAll(cfg.dataDir, 0755); err != nil {
		return "", err
	}
	if err := afero.WriteFile(fs, path, []byte(id+"\n"), 0644); err != nil {
		return "", err
	}

	return id, nil
}

func openTerminalLog(fs afero.Fs, cfg *Config) (afero.File, error) {
	if err := fs.MkdirAll(cfg.dataDir, 0755); err != nil {
		return nil, err
	}

	return fs.OpenFile(filepath.Join(cfg.dataDir, terminalLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func PlayTerminal(ctx context.Context, cfg *Config) error {
	fs := afero.NewOsFs()

	id, err := terminalPlayer(fs, cfg)
	if err != nil {
		return err
	}

	// The screen owns the terminal, so verbose output goes to a file.
	if cfg.verbose {
		f, err := openTerminalLog(fs, cfg)
		if err != nil {
			return err
		}
		defer f.Close()

		log.SetOutput(f)
	}

	logger := func(format string, args ...any) {
		logf(cfg, format, args...)
	}

	store := game.NewFileStore(fs, cfg.dataDir, logger)

	profile, err := store.Load(id)
	if err != nil {
		return err
	}

	var speaker tui.Speaker
	if !cfg.noSound {
		voice := tone.New(tone.DefaultLength)
		if err := voice.Init(); err != nil {
			logf(cfg, "SOUND: %v", err)
		} else {
			defer voice.Close()
			speaker = voice
		}
	}

	var out *midiout.Output
	if cfg.midiPort != "" {
		out, err = midiout.Open(cfg.midiPort, uint8(cfg.midiChannel))
		if err != nil {
			return err
		}
		defer out.Close()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}

	app, err := tui.New(tui.Options{
		Screen:    screen,
		Profile:   profile,
		Store:     store,
		ID:        id,
		Speaker:   speaker,
		MIDI:      out,
		BaseDelay: cfg.demoDelay,
		BaseFlash: cfg.flash,
		Logf:      logger,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	logf(cfg, "START: followme v%s terminal game for %s", releaseVersion, id)

	return app.Run(ctx)
}
