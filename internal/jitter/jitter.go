// Package jitter derives the pseudo-random imperfections of the contact
// sheet — strip tilt, hand-drawn path wobble, text background offsets —
// purely from integer indices.
//
// Every rendering surface (the live editor, the headless-browser export,
// and the compositing export) calls these same formulas, so a given sheet
// state always produces the same composition. There is no entropy source
// and no persisted seed: two processes given the same inputs produce
// bit-identical float64 results.
package jitter

import "math"

// stripPhase and textPhase are the frequency multipliers that spread
// consecutive indices across the sine period. Changing either changes the
// look of every previously exported sheet.
const (
	stripPhase = 123.456
	textPhase  = 456.789
)

// maxStripRotation is the strip tilt amplitude in degrees.
const maxStripRotation = 0.5

// StripRotation returns the rotation angle in degrees for the strip at
// stripIndex. Angles stay within ±maxStripRotation.
func StripRotation(stripIndex int) float64 {
	return math.Sin(float64(stripIndex)*stripPhase) * maxStripRotation
}

// PathJitter perturbs one control point of a hand-drawn path. frameNumber
// is the 1-based frame number the path decorates, base is a coordinate of
// the unperturbed point (so distinct vertices of the same path wobble
// differently), and variance is the amplitude in unscaled pixels.
func PathJitter(frameNumber int, base, variance float64) float64 {
	return math.Sin(float64(frameNumber)*stripPhase+base*0.1) * variance
}

// TextRepeatOffset returns the horizontal offset, in unscaled pixels, of
// the repeating background behind a text sticker starting at startIndex.
func TextRepeatOffset(startIndex int) float64 {
	return math.Sin(float64(startIndex)*textPhase) * 40
}
