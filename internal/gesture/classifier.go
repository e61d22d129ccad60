// Package gesture turns hand landmarks into the palm position and fist
// state that drive the countdown.
package gesture

import (
	"github.com/jchen0824/new-year-countdown/internal/detector"
)

// DefaultFistRatio is the fingertip-to-palm ratio below which a hand counts
// as closed.
const DefaultFistRatio = 1.8

// HandState is the latest interpretation of the tracked hand. X and Y are
// normalized to [0,1] with x mirrored so moving right moves the cloud right.
type HandState struct {
	X, Y      float64
	IsFist    bool
	IsPresent bool
}

// Classify reads one hand. The palm position is the middle-finger knuckle.
// The hand is a fist when the mean 3-D distance from the wrist to the four
// fingertips is below ratio times the planar wrist-to-knuckle distance.
// Both sides scale with the hand's apparent size, so distance from the
// camera does not matter.
func Classify(h *detector.HandLandmarks, ratio float64) HandState {
	if h == nil {
		return HandState{}
	}
	if ratio <= 0 {
		ratio = DefaultFistRatio
	}

	palm := h.Points[detector.MiddleMCP]
	mean, palmSize := measure(h)

	return HandState{
		X:         1 - palm.X,
		Y:         palm.Y,
		IsFist:    palmSize > 0 && mean < ratio*palmSize,
		IsPresent: true,
	}
}

// FistScore returns the fingertip-to-palm ratio used by Classify, handy for
// tuning the threshold in verbose logs. Zero palm size yields zero.
func FistScore(h *detector.HandLandmarks) float64 {
	if h == nil {
		return 0
	}
	mean, palmSize := measure(h)
	if palmSize == 0 {
		return 0
	}
	return mean / palmSize
}

// measure returns the mean wrist-to-fingertip distance and the planar
// wrist-to-knuckle distance.
func measure(h *detector.HandLandmarks) (mean, palmSize float64) {
	wrist := h.Points[detector.Wrist]
	var sum float64
	for _, tip := range detector.FingerTips {
		sum += detector.Distance(wrist, h.Points[tip])
	}
	mean = sum / float64(len(detector.FingerTips))
	palmSize = detector.PlanarDistance(wrist, h.Points[detector.MiddleMCP])
	return mean, palmSize
}
