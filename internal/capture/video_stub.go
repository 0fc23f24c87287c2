//go:build !gocv

package capture

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrVideoUnavailable is returned when the binary was built without gocv.
var ErrVideoUnavailable = errors.New("video capture requires a build with -tags gocv")

// unavailableSource stands in for the OpenCV source in builds without gocv.
type unavailableSource struct {
	logger *zap.Logger
}

// NewVideoSource returns a source whose Begin always fails with
// ErrVideoUnavailable.
func NewVideoSource(logger *zap.Logger, _ []Device) Source {
	return unavailableSource{logger: logger}
}

func (s unavailableSource) Begin(Preferences) error {
	return ErrVideoUnavailable
}

func (unavailableSource) Ready() bool         { return false }
func (unavailableSource) HasNewFrame() bool   { return false }
func (unavailableSource) CurrentFrame() Frame { return Frame{} }
func (unavailableSource) Pause()              {}
func (unavailableSource) Resume()             {}
func (unavailableSource) Close() error        { return nil }
