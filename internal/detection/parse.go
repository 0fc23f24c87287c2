package detection

// Record strides of the flat detector outputs.
const (
	CircleStride = 3
	LineStride   = 4
)

// RawCircle is one circle record in image pixels.
type RawCircle struct {
	X, Y, Radius float32
}

// RawLine is one segment record in image pixels.
type RawLine struct {
	X0, Y0, X1, Y1 int32
}

// ParseCircles splits flat (x, y, r) triples into records. An empty slice is
// the valid "nothing detected" result. A trailing partial record is dropped.
func ParseCircles(flat []float32) []RawCircle {
	n := len(flat) / CircleStride
	out := make([]RawCircle, 0, n)
	for i := 0; i+CircleStride <= len(flat); i += CircleStride {
		out = append(out, RawCircle{X: flat[i], Y: flat[i+1], Radius: flat[i+2]})
	}
	return out
}

// ParseLines splits flat (x0, y0, x1, y1) quadruples into records. An empty
// slice is the valid "nothing detected" result. A trailing partial record is
// dropped.
func ParseLines(flat []int32) []RawLine {
	n := len(flat) / LineStride
	out := make([]RawLine, 0, n)
	for i := 0; i+LineStride <= len(flat); i += LineStride {
		out = append(out, RawLine{X0: flat[i], Y0: flat[i+1], X1: flat[i+2], Y1: flat[i+3]})
	}
	return out
}
