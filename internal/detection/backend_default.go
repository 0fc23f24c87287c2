//go:build !gocv

package detection

// NewBackend returns the pure-Go backend. Build with -tags gocv to use
// OpenCV instead.
func NewBackend() Backend {
	return HoughBackend{}
}
