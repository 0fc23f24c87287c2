//go:build gocv

package detection

import (
	"image"

	"gocv.io/x/gocv"
)

// NewBackend returns the OpenCV backend.
func NewBackend() Backend {
	return GocvBackend{}
}

// GocvBackend runs the OpenCV Hough transforms through gocv.
type GocvBackend struct{}

// Name implements Backend.
func (GocvBackend) Name() string { return "opencv" }

// HoughCircles implements Backend with cv::HoughCircles (HOUGH_GRADIENT).
func (GocvBackend) HoughCircles(gray *image.Gray, p CircleParams, dst []float32) []float32 {
	src, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return dst
	}
	defer src.Close()

	circles := gocv.NewMat()
	defer circles.Close()

	gocv.HoughCirclesWithParams(src, &circles, gocv.HoughGradient,
		p.DP, p.MinDist, p.Param1, p.Param2, p.MinRadius, p.MaxRadius)

	// one row, one Vec3f per circle
	for i := 0; i < circles.Cols(); i++ {
		v := circles.GetVecfAt(0, i)
		dst = append(dst, v[0], v[1], v[2])
	}
	return dst
}

// HoughLines implements Backend with cv::HoughLinesP.
func (GocvBackend) HoughLines(edges *image.Gray, p LineParams, dst []int32) []int32 {
	src, err := gocv.ImageGrayToMatGray(edges)
	if err != nil {
		return dst
	}
	defer src.Close()

	lines := gocv.NewMat()
	defer lines.Close()

	gocv.HoughLinesPWithParams(src, &lines, float32(p.Rho), float32(p.Theta),
		p.Threshold, float32(p.MinLineLength), float32(p.MaxLineGap))

	// one Vec4i per row
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		dst = append(dst, v[0], v[1], v[2], v[3])
	}
	return dst
}
