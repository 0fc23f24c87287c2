// Package imaging turns captured frames into the inputs of shape detection.
//
// The Preprocessor converts an RGBA frame to grayscale and derives a binary
// Canny edge map from it. Circle detection consumes the grayscale image,
// line detection consumes the edge map.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based image coordinates:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// Gradient arrays are indexed [y][x] relative to the image bounds.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Preprocessing is stateless and may
// run concurrently on different frames.
package imaging
