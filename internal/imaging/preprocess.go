package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/pkg/errors"

	"github.com/ironsheep/rollingball/internal/capture"
)

// Default Canny thresholds on a 0-255 scale.
const (
	DefaultCannyLow  = 50.0
	DefaultCannyHigh = 200.0
)

// Preprocessed holds the per-frame inputs of the shape detectors.
type Preprocessed struct {
	// Gray is the single-channel frame, same resolution as the input.
	Gray *image.Gray

	// Edges is the binary Canny edge map of Gray.
	Edges *image.Gray
}

// Preprocessor converts captured frames into detector inputs.
type Preprocessor struct {
	CannyLow  float64
	CannyHigh float64
}

// NewPreprocessor returns a preprocessor with the given Canny thresholds.
func NewPreprocessor(low, high float64) *Preprocessor {
	return &Preprocessor{CannyLow: low, CannyHigh: high}
}

// Process converts frame to grayscale and computes its edge map. A malformed
// frame returns an error and nothing else.
func (p *Preprocessor) Process(frame capture.Frame) (*Preprocessed, error) {
	if err := frame.Validate(); err != nil {
		return nil, errors.Wrap(err, "preprocess")
	}
	return p.ProcessImage(frame.Image()), nil
}

// ProcessImage runs the same conversion on an arbitrary image.
func (p *Preprocessor) ProcessImage(img image.Image) *Preprocessed {
	gray := Grayscale(img)
	return &Preprocessed{
		Gray:  gray,
		Edges: Canny(gray, p.CannyLow, p.CannyHigh),
	}
}

// Grayscale returns the luminance of img as a single-channel image with the
// same bounds.
func Grayscale(img image.Image) *image.Gray {
	// bild yields an RGBA image with equal channels
	rgba := effect.Grayscale(img)
	gray := image.NewGray(img.Bounds())
	b := rgba.Bounds()
	for y := 0; y < b.Dy(); y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+4*b.Dx()]
		dst := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()]
		for x := range dst {
			dst[x] = src[4*x]
		}
	}
	return gray
}
