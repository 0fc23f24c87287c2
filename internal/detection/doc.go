// Package detection finds circles and line segments in preprocessed frames.
//
// The detectors follow the OpenCV contract: circles come back as a flat
// []float32 of (x, y, radius) triples and lines as a flat []int32 of
// (x0, y0, x1, y1) quadruples, all in image pixels. ParseCircles and
// ParseLines turn those into records. An empty result is the normal
// "nothing detected" case, never an error.
//
// # Backends
//
// Two Backend implementations exist:
//
//   - HoughBackend: pure Go, the default build.
//   - GocvBackend: OpenCV through gocv, selected with the gocv build tag.
//
// NewBackend returns whichever one was compiled in.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Performance Considerations
//
// The pure-Go transforms iterate over every edge pixel for every accumulator
// angle or radius step. Keep the capture resolution modest and the radius
// range tight; the defaults target 640x480 frames.
package detection
