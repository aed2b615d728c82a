/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimingDoubleSpeed(t *testing.T) {
	tm := Timing{BaseDelay: 2000 * time.Millisecond, BaseFlash: 250 * time.Millisecond, Speed: 2}

	assert.Equal(t, 1000*time.Millisecond, tm.Pause())
	assert.Equal(t, 125*time.Millisecond, tm.Flash())
	assert.Equal(t, 875*time.Millisecond, tm.Between(false))
}

func TestTimingFlashNeverGrows(t *testing.T) {
	tm := Timing{BaseDelay: 800 * time.Millisecond, BaseFlash: 250 * time.Millisecond, Speed: 0.5}

	assert.Equal(t, 250*time.Millisecond, tm.Flash())
	assert.Equal(t, 1600*time.Millisecond, tm.Pause())
	assert.Equal(t, 1350*time.Millisecond, tm.Between(false))
}

func TestTimingInterSequenceDelay(t *testing.T) {
	tm := Timing{
		BaseDelay:          800 * time.Millisecond,
		BaseFlash:          250 * time.Millisecond,
		InterSequenceDelay: 500 * time.Millisecond,
		Speed:              1,
	}

	assert.Equal(t, 550*time.Millisecond, tm.Between(false))
	assert.Equal(t, 1050*time.Millisecond, tm.Between(true))
}

func TestTimingNegativeBetween(t *testing.T) {
	tm := Timing{BaseDelay: 100 * time.Millisecond, BaseFlash: 250 * time.Millisecond, Speed: 1}

	assert.Equal(t, -150*time.Millisecond, tm.Between(false))
}

func TestTimingZeroSpeedIsNormal(t *testing.T) {
	tm := Timing{BaseDelay: 800 * time.Millisecond, BaseFlash: 250 * time.Millisecond}

	assert.Equal(t, 800*time.Millisecond, tm.Pause())
	assert.Equal(t, 250*time.Millisecond, tm.Flash())
}
