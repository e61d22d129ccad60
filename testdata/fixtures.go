// Package testdata provides recorded landmarker responses and blank frames
// for tests.
package testdata

import (
	"embed"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/jchen0824/new-year-countdown/internal/detector"
)

//go:embed hands/*.json
var handsFS embed.FS

// Hand fixtures. Palm positions are in raw (unmirrored) image coordinates.
const (
	// FistCenter is a closed fist with the palm at the image center.
	FistCenter = "fist_center.json"
	// OpenCenter is an open hand with the palm at the image center.
	OpenCenter = "open_center.json"
	// FistFar is a half-size fist with the palm at (0.2, 0.24).
	FistFar = "fist_far.json"
	// NoHands is an empty response.
	NoHands = "none.json"
)

// LoadHands decodes a recorded landmarker response by name.
func LoadHands(name string) ([]detector.HandLandmarks, error) {
	data, err := handsFS.ReadFile("hands/" + name)
	if err != nil {
		return nil, fmt.Errorf("load hands %s: %w", name, err)
	}
	hands, err := detector.DecodeResponse(data)
	if err != nil {
		return nil, fmt.Errorf("decode hands %s: %w", name, err)
	}
	return hands, nil
}

// BlankFrame returns a black BGR frame. The caller owns it.
func BlankFrame(width, height int) *gocv.Mat {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	return &mat
}
