package rtty

/*------------------------------------------------------------------
 *
 * Purpose:   	Print statistics for audio input stream.
 *
 * 		A common complaint is that there is no indication of
 *		audio input level until something is decoded correctly.
 *		Every so often we print something like this:
 *
 *		Sample rate approx. 44.1 k, 0 errors, receive audio level 73
 *
 *		It has been a useful troubleshooting tool for sound
 *		cards that drop samples or deliver nothing but zeros.
 *
 *---------------------------------------------------------------*/

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type AudioStats struct {
	interval time.Duration // 0 to turn off.

	lastTime      time.Time
	sampleCount   int
	errorCount    int
	suppressFirst bool

	level   float64
	dc      float64
	onLevel func(float64)

	now func() time.Time
}

func NewAudioStats(intervalSeconds int) *AudioStats {
	return &AudioStats{ //nolint:exhaustruct
		interval: time.Duration(intervalSeconds) * time.Second,
		now:      time.Now,
	}
}

// OnLevel is called with every new level measurement, e.g. for metrics.
func (a *AudioStats) OnLevel(fn func(float64)) {
	a.onLevel = fn
}

// Level is peak to peak of the most recent buffer, scaled so full scale is 100.
func (a *AudioStats) Level() float64 {
	return a.level
}

/*------------------------------------------------------------------
*
* Name:        Add
*
* Purpose:     Add one buffer of samples to the statistics.
*		Print if specified amount of time has passed.
*
* Inputs:	samples	- What was read, scaled -1 .. +1.
*			  Empty counts as a read error.
*
*----------------------------------------------------------------*/

func (a *AudioStats) Add(samples []float64) {
	if len(samples) > 0 {
		a.level = (floats.Max(samples) - floats.Min(samples)) * 50
		a.dc = stat.Mean(samples, nil)

		if a.onLevel != nil {
			a.onLevel(a.level)
		}
	}

	if a.interval <= 0 {
		return
	}

	var thisTime = a.now()

	if a.lastTime.IsZero() {
		// Suppressing the first one could mean a rather long wait
		// for the first message.  Make the first interval 3 seconds.
		a.lastTime = thisTime.Add(-(a.interval - 3*time.Second))
		a.sampleCount = len(samples)
		a.errorCount = 0
		a.suppressFirst = true

		return
	}

	if len(samples) > 0 {
		a.sampleCount += len(samples)
	} else {
		a.errorCount++
	}

	if thisTime.Before(a.lastTime.Add(a.interval)) {
		return
	}

	if a.suppressFirst {
		// The first rate would be off considerably because we
		// didn't start on a second boundary.
		a.suppressFirst = false
	} else {
		var aveRate = float64(a.sampleCount) / 1000.0 / thisTime.Sub(a.lastTime).Seconds()

		logger.Info("Audio input",
			"rate_k", aveRate,
			"errors", a.errorCount,
			"level", int(a.level+0.5),
			"dc", a.dc)
	}

	a.lastTime = thisTime
	a.sampleCount = 0
	a.errorCount = 0
}
