/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playback

import "time"

// Timing holds the base durations a run is scaled from.
type Timing struct {
	BaseDelay          time.Duration // time from one item's start to the next at speed 1
	BaseFlash          time.Duration // how long a key stays highlighted at speed 1
	InterSequenceDelay time.Duration // extra pause when the owning machine changes
	Speed              float64       // playback speed multiplier, 1 is normal
}

func (t Timing) speed() float64 {
	if t.Speed <= 0 {
		return 1
	}

	return t.Speed
}

// Flash is the highlight duration. It only shrinks for speeds above 1 and
// never grows when playing slower than normal.
func (t Timing) Flash() time.Duration {
	if s := t.speed(); s > 1 {
		return time.Duration(float64(t.BaseFlash) / s)
	}

	return t.BaseFlash
}

// Pause is the base delay scaled inversely by speed.
func (t Timing) Pause() time.Duration {
	return time.Duration(float64(t.BaseDelay) / t.speed())
}

// Between is the wait after a highlight is cleared and before the next item
// starts. The result may be negative at high speeds with a short base delay.
func (t Timing) Between(ownerChanged bool) time.Duration {
	d := t.Pause() - t.Flash()
	if ownerChanged {
		d += t.InterSequenceDelay
	}

	return d
}
