package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/rollingball/internal/imaging"
)

// HoughBackend implements both detectors in pure Go.
//
// Circles use the Hough gradient method: every Canny edge pixel votes along
// its gradient direction, in both senses, for centres between MinRadius and
// MaxRadius away. Cells whose 3x3 vote sum exceeds Param2 and is a local
// maximum become candidates, strongest first. Each candidate is refined to
// the least-squares intersection of the gradient lines passing near it and
// scored by the number of distinct edge pixels whose gradient line passes
// within one accumulator cell of it, so a full circle of N edge pixels
// scores about N. Candidates scoring above Param2 whose supporting pixels
// surround the centre become circles, and the radius is the best-supported
// distance to those pixels.
//
// Lines vote every edge pixel into a (theta, rho) accumulator, then walk the
// strongest peaks first: edge pixels within one rho step of the peak line are
// sorted along it, split wherever the gap exceeds MaxLineGap, and segments at
// least MinLineLength long are emitted. Emitted pixels are consumed so that a
// neighbouring peak cannot report the same segment again.
type HoughBackend struct{}

// Name implements Backend.
func (HoughBackend) Name() string { return "hough" }

type point struct {
	x, y int
}

// edgePoint is an edge pixel with its unit gradient direction.
type edgePoint struct {
	x, y   float64
	sx, sy float64
}

type peak struct {
	a, b  int
	votes int
}

// minOctants is the number of 45 degree sectors around a centre that must
// hold supporting pixels. Edges on one side of a line never fill more than
// five.
const minOctants = 6

// HoughCircles implements Backend.
func (HoughBackend) HoughCircles(gray *image.Gray, p CircleParams, dst []float32) []float32 {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 || p.DP <= 0 {
		return dst
	}

	minR := p.MinRadius
	if minR < 0 {
		minR = 0
	}
	maxR := p.MaxRadius
	if maxR <= 0 {
		maxR = max(width, height)
	}
	if maxR < minR {
		return dst
	}

	edges := imaging.Canny(gray, math.Max(1, p.Param1/2), p.Param1)
	gradX, gradY := imaging.Gradients(gray)

	idp := 1 / p.DP
	acols := int(math.Ceil(float64(width) * idp))
	arows := int(math.Ceil(float64(height) * idp))

	// one cell of padding on every side keeps the neighbourhood sums in bounds
	accumulator := newGrid(arows+2, acols+2)

	rmin := float64(minR) * idp
	rmax := float64(maxR) * idp
	var edgePoints []edgePoint

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y == 0 {
				continue
			}
			gx, gy := gradX[y][x], gradY[y][x]
			mag := math.Hypot(gx, gy)
			if mag == 0 {
				continue
			}
			sx, sy := gx/mag, gy/mag
			edgePoints = append(edgePoints, edgePoint{x: float64(x), y: float64(y), sx: sx, sy: sy})

			x0 := (float64(x) + 0.5) * idp
			y0 := (float64(y) + 0.5) * idp
			for _, sign := range [2]float64{1, -1} {
				for r := rmin; r <= rmax; r++ {
					cx := int(math.Floor(x0 + sign*r*sx))
					cy := int(math.Floor(y0 + sign*r*sy))
					if cx < 0 || cy < 0 || cx >= acols || cy >= arows {
						break
					}
					accumulator[cy+1][cx+1]++
				}
			}
		}
	}

	// 3x3 vote sums absorb centres split across neighbouring cells
	sums := newGrid(arows+2, acols+2)
	for y := 1; y <= arows; y++ {
		for x := 1; x <= acols; x++ {
			total := 0
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					total += accumulator[y+ky][x+kx]
				}
			}
			sums[y][x] = total
		}
	}

	// Centre candidates: local maxima of the sums above the vote threshold,
	// plateaus included
	centres := make([]peak, 0)
	for y := 1; y <= arows; y++ {
		for x := 1; x <= acols; x++ {
			v := sums[y][x]
			if float64(v) <= p.Param2 || accumulator[y][x] == 0 || !isLocalMax(sums, x, y) {
				continue
			}
			centres = append(centres, peak{a: x - 1, b: y - 1, votes: v})
		}
	}

	sort.SliceStable(centres, func(i, j int) bool {
		return centres[i].votes > centres[j].votes
	})

	minDist2 := math.Max(p.MinDist, 1)
	minDist2 *= minDist2
	tolerance := math.Max(p.DP, 1)
	rlo := float64(minR) - 1
	rhi := float64(maxR) + 1
	ox, oy := float64(bounds.Min.X), float64(bounds.Min.Y)
	start := len(dst)

	for _, c := range centres {
		cx := (float64(c.a)+0.5)*p.DP - 0.5
		cy := (float64(c.b)+0.5)*p.DP - 0.5
		if tooClose(dst[start:], cx+ox, cy+oy, minDist2) {
			continue
		}

		cx, cy = refineCentre(edgePoints, cx, cy, rlo, rhi, 2*tolerance, 2*tolerance)
		if tooClose(dst[start:], cx+ox, cy+oy, minDist2) {
			continue
		}

		support := supportingPoints(edgePoints, cx, cy, rlo, rhi, tolerance)
		if float64(len(support)) <= p.Param2 || octants(support, cx, cy) < minOctants {
			continue
		}

		radius, ok := estimateRadius(support, cx, cy, minR, maxR)
		if !ok {
			continue
		}
		dst = append(dst, float32(cx+ox), float32(cy+oy), float32(radius))
	}

	return dst
}

func newGrid(rows, cols int) [][]int {
	g := make([][]int, rows)
	for i := range g {
		g[i] = make([]int, cols)
	}
	return g
}

// isLocalMax reports whether g[y][x] is at least each of its 8 neighbours.
func isLocalMax(g [][]int, x, y int) bool {
	v := g[y][x]
	for ky := -1; ky <= 1; ky++ {
		for kx := -1; kx <= 1; kx++ {
			if (kx != 0 || ky != 0) && g[y+ky][x+kx] > v {
				return false
			}
		}
	}
	return true
}

// tooClose reports whether (cx, cy) lies within sqrt(minDist2) of a circle
// already in found.
func tooClose(found []float32, cx, cy, minDist2 float64) bool {
	for i := 0; i+2 < len(found); i += CircleStride {
		dx := float64(found[i]) - cx
		dy := float64(found[i+1]) - cy
		if dx*dx+dy*dy < minDist2 {
			return true
		}
	}
	return false
}

// offLine returns the distance from (cx, cy) to the gradient line through e,
// and the distance from (cx, cy) to e.
func offLine(e edgePoint, cx, cy float64) (perp, dist float64) {
	dx, dy := cx-e.x, cy-e.y
	return math.Abs(dx*e.sy - dy*e.sx), math.Hypot(dx, dy)
}

// supportingPoints returns the edge pixels between rlo and rhi from the centre
// whose gradient line passes within tolerance of it.
func supportingPoints(edgePoints []edgePoint, cx, cy, rlo, rhi, tolerance float64) []edgePoint {
	var support []edgePoint
	for _, e := range edgePoints {
		perp, dist := offLine(e, cx, cy)
		if perp <= tolerance && dist >= rlo && dist <= rhi {
			support = append(support, e)
		}
	}
	return support
}

// refineCentre moves (cx, cy) to the least-squares intersection of the
// gradient lines passing within reach of it. The original point is kept when
// the lines are degenerate or the intersection lies farther than limit away.
func refineCentre(edgePoints []edgePoint, cx, cy, rlo, rhi, reach, limit float64) (float64, float64) {
	var a11, a12, a22, b1, b2 float64
	for _, e := range supportingPoints(edgePoints, cx, cy, rlo, rhi, reach) {
		// normal of the gradient line
		nx, ny := -e.sy, e.sx
		d := nx*e.x + ny*e.y
		a11 += nx * nx
		a12 += nx * ny
		a22 += ny * ny
		b1 += nx * d
		b2 += ny * d
	}

	det := a11*a22 - a12*a12
	if det < 1e-6 {
		return cx, cy
	}
	rx := (a22*b1 - a12*b2) / det
	ry := (a11*b2 - a12*b1) / det
	if math.Hypot(rx-cx, ry-cy) > limit {
		return cx, cy
	}
	return rx, ry
}

// octants counts the 45 degree sectors around (cx, cy) holding at least one
// point.
func octants(points []edgePoint, cx, cy float64) int {
	var seen [8]bool
	for _, e := range points {
		angle := math.Atan2(e.y-cy, e.x-cx) + math.Pi
		sector := int(angle / (math.Pi / 4))
		if sector > 7 {
			sector = 7
		}
		seen[sector] = true
	}
	n := 0
	for _, s := range seen {
		if s {
			n++
		}
	}
	return n
}

// estimateRadius picks the radius in [minR, maxR] with the most edge pixels
// at that distance from (cx, cy), using a three-pixel window. At least a
// quarter of the circumference must be supported.
func estimateRadius(edgePoints []edgePoint, cx, cy float64, minR, maxR int) (float64, bool) {
	counts := make([]int, maxR-minR+1)
	for _, p := range edgePoints {
		d := math.Hypot(p.x-cx, p.y-cy)
		bin := int(math.Round(d)) - minR
		if bin < 0 || bin >= len(counts) {
			continue
		}
		counts[bin]++
	}

	best, bestBin := 0, -1
	for b := range counts {
		support := counts[b]
		if b > 0 {
			support += counts[b-1]
		}
		if b+1 < len(counts) {
			support += counts[b+1]
		}
		if support > best {
			best, bestBin = support, b
		}
	}
	if bestBin < 0 {
		return 0, false
	}

	var sum, n float64
	for b := bestBin - 1; b <= bestBin+1; b++ {
		if b < 0 || b >= len(counts) {
			continue
		}
		sum += float64(counts[b]) * float64(b+minR)
		n += float64(counts[b])
	}
	radius := sum / n

	if float64(best) < 0.25*2*math.Pi*radius {
		return 0, false
	}
	return radius, true
}

// HoughLines implements Backend.
func (HoughBackend) HoughLines(edges *image.Gray, p LineParams, dst []int32) []int32 {
	bounds := edges.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 || p.Rho <= 0 || p.Theta <= 0 {
		return dst
	}

	points := make([]point, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y != 0 {
				points = append(points, point{x, y})
			}
		}
	}
	if len(points) == 0 {
		return dst
	}

	numAngles := int(math.Round(math.Pi / p.Theta))
	if numAngles < 1 {
		numAngles = 1
	}
	numRho := int(math.Round(float64((width+height)*2+1) / p.Rho))
	offset := (numRho - 1) / 2

	cosTab := make([]float64, numAngles)
	sinTab := make([]float64, numAngles)
	for n := 0; n < numAngles; n++ {
		angle := float64(n) * p.Theta
		cosTab[n] = math.Cos(angle)
		sinTab[n] = math.Sin(angle)
	}

	// Vote in Hough space
	accumulator := make([][]int, numAngles)
	for n := range accumulator {
		accumulator[n] = make([]int, numRho)
	}
	for _, pt := range points {
		for n := 0; n < numAngles; n++ {
			r := int(math.Round((float64(pt.x)*cosTab[n]+float64(pt.y)*sinTab[n])/p.Rho)) + offset
			if r >= 0 && r < numRho {
				accumulator[n][r]++
			}
		}
	}

	// Find peaks in accumulator
	peaks := make([]peak, 0)
	for n := 0; n < numAngles; n++ {
		for r := 0; r < numRho; r++ {
			votes := accumulator[n][r]
			if votes < p.Threshold || votes == 0 {
				continue
			}
			isMax := true
			for dn := -2; dn <= 2 && isMax; dn++ {
				for dr := -2; dr <= 2 && isMax; dr++ {
					if dn == 0 && dr == 0 {
						continue
					}
					nn, nr := n+dn, r+dr
					if nn >= 0 && nn < numAngles && nr >= 0 && nr < numRho && accumulator[nn][nr] > votes {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, peak{a: n, b: r, votes: votes})
			}
		}
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].votes > peaks[j].votes
	})

	type onLine struct {
		t   float64
		idx int
	}
	used := make([]bool, len(points))
	tolerance := math.Max(1, p.Rho)
	minVotes := max(p.Threshold, 2)

	for _, pk := range peaks {
		cosA, sinA := cosTab[pk.a], sinTab[pk.a]
		rho := float64(pk.b-offset) * p.Rho

		candidates := make([]onLine, 0)
		for i, pt := range points {
			if used[i] {
				continue
			}
			d := float64(pt.x)*cosA + float64(pt.y)*sinA - rho
			if math.Abs(d) <= tolerance {
				candidates = append(candidates, onLine{
					t:   -float64(pt.x)*sinA + float64(pt.y)*cosA,
					idx: i,
				})
			}
		}
		if len(candidates) < minVotes {
			continue
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].t < candidates[j].t
		})

		first := 0
		for i := 1; i <= len(candidates); i++ {
			if i < len(candidates) && candidates[i].t-candidates[i-1].t <= p.MaxLineGap {
				continue
			}

			a := points[candidates[first].idx]
			b := points[candidates[i-1].idx]
			length := math.Hypot(float64(b.x-a.x), float64(b.y-a.y))
			if length >= p.MinLineLength && i-1 > first {
				for _, c := range candidates[first:i] {
					used[c.idx] = true
				}
				dst = append(dst,
					int32(a.x+bounds.Min.X), int32(a.y+bounds.Min.Y),
					int32(b.x+bounds.Min.X), int32(b.y+bounds.Min.Y))
			}
			first = i
		}
	}

	return dst
}
