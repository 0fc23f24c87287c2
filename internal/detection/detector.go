package detection

import (
	"image"
)

// Backend is a Hough transform implementation. Results are appended to dst,
// which the caller has already truncated.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string

	// HoughCircles finds circles in a grayscale image and appends flat
	// (x, y, radius) triples.
	HoughCircles(gray *image.Gray, p CircleParams, dst []float32) []float32

	// HoughLines finds segments in a binary edge map and appends flat
	// (x0, y0, x1, y1) quadruples.
	HoughLines(edges *image.Gray, p LineParams, dst []int32) []int32
}

// Detector binds a backend to fixed parameters. It keeps one result buffer
// per shape kind: each call overwrites the slice returned by the previous
// one, so callers must parse the result before the next call.
//
// Detector is not safe for concurrent use.
type Detector struct {
	backend Backend
	circle  CircleParams
	line    LineParams

	circleBuf []float32
	lineBuf   []int32
}

// NewDetector creates a detector.
func NewDetector(backend Backend, circle CircleParams, line LineParams) *Detector {
	return &Detector{
		backend: backend,
		circle:  circle,
		line:    line,
	}
}

// Backend returns the bound backend.
func (d *Detector) Backend() Backend { return d.backend }

// Circles returns flat (x, y, radius) triples found in gray.
func (d *Detector) Circles(gray *image.Gray) []float32 {
	d.circleBuf = d.backend.HoughCircles(gray, d.circle, d.circleBuf[:0])
	return d.circleBuf
}

// Lines returns flat (x0, y0, x1, y1) quadruples found in edges.
func (d *Detector) Lines(edges *image.Gray) []int32 {
	d.lineBuf = d.backend.HoughLines(edges, d.line, d.lineBuf[:0])
	return d.lineBuf
}
