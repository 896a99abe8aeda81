package rtty

/*------------------------------------------------------------------
 *
 * Purpose:     Generate the filters used by the FSK demodulator.
 *
 *----------------------------------------------------------------*/

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

type bpWindow int

const (
	windowTruncated bpWindow = iota
	windowCosine
	windowHamming
	windowBlackman
	windowFlattop
)

const maxFilterSize = 4096

/*------------------------------------------------------------------
 *
 * Name:        window
 *
 * Purpose:     Filter window shape functions.
 *
 * Inputs:   	windowType	- windowHamming, etc.
 *		size		- Number of filter taps.
 *		j		- Index in range of 0 to size-1.
 *
 * Returns:     Multiplier for the window shape.
 *
 *----------------------------------------------------------------*/

func window(windowType bpWindow, _size int, _j int) float64 {
	var size = float64(_size)
	var j = float64(_j)

	var center = 0.5 * (size - 1)

	switch windowType {
	case windowCosine:
		return math.Cos((j - center) / size * math.Pi)

	case windowHamming:
		return 0.53836 - 0.46164*math.Cos((j*2*math.Pi)/(size-1))

	case windowBlackman:
		return 0.42659 - 0.49656*math.Cos((j*2*math.Pi)/(size-1)) +
			0.076849*math.Cos((j*4*math.Pi)/(size-1))

	case windowFlattop:
		return 1.0 - 1.93*math.Cos((j*2*math.Pi)/(size-1)) +
			1.29*math.Cos((j*4*math.Pi)/(size-1)) -
			0.388*math.Cos((j*6*math.Pi)/(size-1)) +
			0.028*math.Cos((j*8*math.Pi)/(size-1))

	case windowTruncated:
		fallthrough
	default:
		return 1.0
	}
}

func checkFilterSize(size int) error {
	if size < 3 || size > maxFilterSize {
		return fmt.Errorf("filter size %d outside 3 .. %d: %w", size, maxFilterSize, ErrInvalidConfig)
	}

	return nil
}

/*------------------------------------------------------------------
 *
 * Name:        genLowpass
 *
 * Purpose:     Generate low pass filter kernel.
 *
 * Inputs:   	fc		- Cutoff frequency as fraction of sampling frequency.
 *		size		- Number of filter taps.
 *		wtype		- Window type.
 *
 * Returns:     Kernel normalized for unity gain at DC.
 *
 *----------------------------------------------------------------*/

func genLowpass(fc float64, size int, wtype bpWindow) ([]float64, error) {
	var err = checkFilterSize(size)
	if err != nil {
		return nil, err
	}

	var lp = make([]float64, size)
	var center = 0.5 * float64(size-1)

	for j := range size {
		var sinc float64

		if float64(j)-center == 0 {
			sinc = 2 * fc
		} else {
			sinc = math.Sin(2*math.Pi*(fc*(float64(j)-center))) / (math.Pi * (float64(j) - center))
		}

		lp[j] = sinc * window(wtype, size, j)
	}

	var G float64
	for _, v := range lp {
		G += v
	}
	for j := range lp {
		lp[j] /= G
	}

	return lp, nil
}

/*------------------------------------------------------------------
 *
 * Name:        genTone
 *
 * Purpose:     Generate sin and cos correlators for a mark or space tone.
 *
 * Inputs:   	fc		- Tone frequency, Hz.
 *		sps		- Samples per second.
 *		size		- Number of filter taps.
 *		wtype		- Window type.
 *
 * Returns:	sin and cos kernels, each normalized for unity gain.
 *
 *----------------------------------------------------------------*/

func genTone(fc float64, sps float64, size int, wtype bpWindow) ([]float64, []float64, error) {
	var err = checkFilterSize(size)
	if err != nil {
		return nil, nil, err
	}

	var sinTable = make([]float64, size)
	var cosTable = make([]float64, size)
	var Gs, Gc float64
	var center = 0.5 * float64(size-1)

	for j := range size {
		var am = ((float64(j) - center) / sps) * fc * (2.0 * math.Pi)
		var shape = window(wtype, size, j)

		sinTable[j] = math.Sin(am) * shape
		cosTable[j] = math.Cos(am) * shape

		Gs += sinTable[j] * math.Sin(am)
		Gc += cosTable[j] * math.Cos(am)
	}

	for j := range size {
		sinTable[j] /= Gs
		cosTable[j] /= Gc
	}

	return sinTable, cosTable, nil
}

// convolve is the dot product of the most recent samples with a kernel.
// data[0] is the newest sample.
func convolve(data []float64, filter []float64) float64 {
	return floats.Dot(filter, data[:len(filter)])
}

// pushSample shifts a delay line along by one, newest first.
func pushSample(val float64, buff []float64) {
	copy(buff[1:], buff[:len(buff)-1])
	buff[0] = val
}
