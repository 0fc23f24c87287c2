package detection

import (
	"image"

	"github.com/pkg/errors"

	"github.com/ironsheep/rollingball/internal/geometry"
	"github.com/ironsheep/rollingball/internal/imaging"
)

// Result is the outcome of one detection pass, mapped into all three
// coordinate spaces.
type Result struct {
	Circles []geometry.DetectedCircle `json:"circles"`
	Lines   []geometry.DetectedLine   `json:"lines"`
}

// Empty reports whether nothing was detected.
func (r Result) Empty() bool {
	return len(r.Circles) == 0 && len(r.Lines) == 0
}

// Detect runs both detectors on a preprocessed frame and maps every record
// through m. Circles are detected on the grayscale image, lines on the edge
// map.
func (d *Detector) Detect(pre *imaging.Preprocessed, m *geometry.Mapper) Result {
	rawCircles := ParseCircles(d.Circles(pre.Gray))
	rawLines := ParseLines(d.Lines(pre.Edges))

	res := Result{
		Circles: make([]geometry.DetectedCircle, 0, len(rawCircles)),
		Lines:   make([]geometry.DetectedLine, 0, len(rawLines)),
	}
	for _, c := range rawCircles {
		res.Circles = append(res.Circles, m.MapCircle(float64(c.X), float64(c.Y), float64(c.Radius)))
	}
	for _, l := range rawLines {
		res.Lines = append(res.Lines, m.MapLine(float64(l.X0), float64(l.Y0), float64(l.X1), float64(l.Y1)))
	}
	return res
}

// DetectImage runs preprocessing, detection and mapping on a still image, as
// if it had been captured at its own size and shown on a screen of
// screenW x screenH.
func DetectImage(img image.Image, pre *imaging.Preprocessor, d *Detector, screenW, screenH int, lens geometry.Lens) (Result, error) {
	b := img.Bounds()
	m, err := geometry.NewMapper(b.Dx(), b.Dy(), screenW, screenH, lens)
	if err != nil {
		return Result{}, errors.Wrap(err, "detect image")
	}
	return d.Detect(pre.ProcessImage(img), m), nil
}
