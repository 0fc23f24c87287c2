package detection

import "math"

// CircleParams are the Hough gradient circle detector settings.
type CircleParams struct {
	// DP is the inverse accumulator resolution: 2 means the accumulator has
	// half the image resolution.
	DP float64 `yaml:"dp"`

	// MinDist is the minimum distance between detected centres.
	MinDist float64 `yaml:"min_dist"`

	// Param1 is the upper Canny threshold; the lower one is half of it.
	Param1 float64 `yaml:"param1"`

	// Param2 is the accumulator vote threshold for a centre.
	Param2 float64 `yaml:"param2"`

	MinRadius int `yaml:"min_radius"`
	MaxRadius int `yaml:"max_radius"`
}

// DefaultCircleParams returns the scene's circle detector settings.
func DefaultCircleParams() CircleParams {
	return CircleParams{
		DP:        2.0,
		MinDist:   10.0,
		Param1:    200.0,
		Param2:    150.0,
		MinRadius: 5,
		MaxRadius: 60,
	}
}

// LineParams are the probabilistic Hough line detector settings.
type LineParams struct {
	// Rho is the distance resolution of the accumulator in pixels.
	Rho float64 `yaml:"rho"`

	// Theta is the angle resolution of the accumulator in radians.
	Theta float64 `yaml:"theta"`

	// Threshold is the minimum number of votes for a line.
	Threshold int `yaml:"threshold"`

	// MinLineLength drops shorter segments.
	MinLineLength float64 `yaml:"min_line_length"`

	// MaxLineGap is the largest gap bridged between points on the same line.
	MaxLineGap float64 `yaml:"max_line_gap"`
}

// DefaultLineParams returns the scene's line detector settings.
func DefaultLineParams() LineParams {
	return LineParams{
		Rho:           1.0,
		Theta:         math.Pi / 180,
		Threshold:     50,
		MinLineLength: 50.0,
		MaxLineGap:    10.0,
	}
}
