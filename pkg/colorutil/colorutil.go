// Package colorutil provides the shared overlay palette for the annotation tool.
package colorutil

import (
	"image/color"
)

// Colors used by the scene renderer. Point markers are yellow with a black
// outline; spline and ROI lines are green, matching the remote tool's output.
var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Green  = color.RGBA{R: 0, G: 200, B: 0, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)
