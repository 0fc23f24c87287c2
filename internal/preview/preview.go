// Package preview draws the detected shapes as an overlay in screen space.
//
// The Overlay renderer rasterises circles and line segments onto a canvas
// the size of the screen and periodically saves it as a PNG snapshot, so the
// headless binary leaves a visible trace of what it detects.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/rollingball/internal/geometry"
)

// Renderer is the preview renderer contract. It only reads the shape lists.
type Renderer interface {
	Draw(circles []geometry.DetectedCircle, lines []geometry.DetectedLine)
}

// Background is the canvas colour behind the overlay.
var Background = color.NRGBA{R: 16, G: 16, B: 16, A: 255}

// strokeWidth is the overlay stroke in screen pixels.
const strokeWidth = 3

// Overlay renders every interval-th Draw call onto a screen-sized canvas.
//
// Overlay is not safe for concurrent use.
type Overlay struct {
	logger   *zap.Logger
	width    int
	height   int
	circle   color.Color
	line     color.Color
	path     string
	interval int

	calls int
	last  *image.NRGBA
}

// Options configures an Overlay.
type Options struct {
	Width  int
	Height int
	// Color is the hex overlay colour; lines use its complementary hue.
	Color string
	// SnapshotPath receives a PNG on every rendered call. Empty disables
	// saving.
	SnapshotPath string
	// Interval renders every n-th call; values below 1 render every call.
	Interval int
}

// NewOverlay creates an overlay renderer.
func NewOverlay(logger *zap.Logger, opts Options) (*Overlay, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, errors.Errorf("preview size must be positive, got %dx%d", opts.Width, opts.Height)
	}
	base, err := colorful.Hex(opts.Color)
	if err != nil {
		return nil, errors.Wrapf(err, "preview color %q", opts.Color)
	}
	h, s, v := base.Hsv()

	interval := opts.Interval
	if interval < 1 {
		interval = 1
	}
	return &Overlay{
		logger:   logger,
		width:    opts.Width,
		height:   opts.Height,
		circle:   base,
		line:     colorful.Hsv(math.Mod(h+180, 360), s, v),
		path:     opts.SnapshotPath,
		interval: interval,
	}, nil
}

// SetSize changes the canvas size for subsequent renders.
func (o *Overlay) SetSize(width, height int) {
	if width > 0 && height > 0 {
		o.width, o.height = width, height
	}
}

// Draw implements Renderer.
func (o *Overlay) Draw(circles []geometry.DetectedCircle, lines []geometry.DetectedLine) {
	o.calls++
	if (o.calls-1)%o.interval != 0 {
		return
	}

	o.last = o.Render(circles, lines)
	if o.path == "" {
		return
	}
	if err := imaging.Save(o.last, o.path); err != nil {
		o.logger.Warn("saving preview snapshot", zap.String("path", o.path), zap.Error(err))
		return
	}
	o.logger.Debug("saved preview snapshot",
		zap.String("path", o.path),
		zap.Int("circles", len(circles)),
		zap.Int("lines", len(lines)))
}

// Last returns the most recently rendered canvas, or nil.
func (o *Overlay) Last() *image.NRGBA {
	return o.last
}

// Render draws the shapes onto a fresh canvas. Screen Y grows upwards, so
// rows are flipped.
func (o *Overlay) Render(circles []geometry.DetectedCircle, lines []geometry.DetectedLine) *image.NRGBA {
	canvas := imaging.New(o.width, o.height, Background)

	for _, c := range circles {
		x, y := o.toCanvas(c.ScreenPosition.X, c.ScreenPosition.Y)
		drawRing(canvas, x, y, 0.5*c.ScreenDiameter, o.circle)
	}
	for _, l := range lines {
		x0, y0 := o.toCanvas(l.ScreenPoint0.X, l.ScreenPoint0.Y)
		x1, y1 := o.toCanvas(l.ScreenPoint1.X, l.ScreenPoint1.Y)
		drawSegment(canvas, x0, y0, x1, y1, o.line)
	}

	drawCaption(canvas, fmt.Sprintf("circles: %d  lines: %d", len(circles), len(lines)), o.circle)
	return canvas
}

func (o *Overlay) toCanvas(sx, sy float64) (float64, float64) {
	return sx, float64(o.height) - sy
}

// drawRing draws a circle outline of the given radius.
func drawRing(img *image.NRGBA, cx, cy, radius float64, c color.Color) {
	outer := radius + strokeWidth/2.0
	inner := math.Max(0, radius-strokeWidth/2.0)
	bounds := img.Bounds()

	minX := max(bounds.Min.X, int(math.Floor(cx-outer)))
	maxX := min(bounds.Max.X-1, int(math.Ceil(cx+outer)))
	minY := max(bounds.Min.Y, int(math.Floor(cy-outer)))
	maxY := min(bounds.Max.Y-1, int(math.Ceil(cy+outer)))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			if d >= inner && d <= outer {
				img.Set(x, y, c)
			}
		}
	}
}

// drawSegment draws a thick line by stamping squares along it.
func drawSegment(img *image.NRGBA, x0, y0, x1, y1 float64, c color.Color) {
	steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))))
	if steps == 0 {
		steps = 1
	}
	bounds := img.Bounds()
	half := strokeWidth / 2

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		px := int(math.Floor(x0 + t*(x1-x0)))
		py := int(math.Floor(y0 + t*(y1-y0)))
		for dy := -half; dy <= half; dy++ {
			for dx := -half; dx <= half; dx++ {
				if image.Pt(px+dx, py+dy).In(bounds) {
					img.Set(px+dx, py+dy, c)
				}
			}
		}
	}
}

// drawCaption writes a status line in the top-left corner.
func drawCaption(img *image.NRGBA, text string, c color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(8, 8+face.Ascent),
	}
	d.DrawString(text)
}
