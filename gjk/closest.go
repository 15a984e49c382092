package gjk

import "github.com/go-gl/mathgl/mgl32"

// closest reduces the simplex to the smallest sub-simplex whose hull holds the point
// closest to the origin, within the shifted vertices y[i] = origin - Points[i].P.
// It returns that point, fills the barycentric weights, and reports whether the hull
// contains the origin.
//
// Ericson, "Real-Time Collision Detection" (2005), 5.1.
func (s *Simplex) closest(origin mgl32.Vec3) (mgl32.Vec3, bool) {
	var y [4]mgl32.Vec3
	for i := 0; i < s.Count; i++ {
		y[i] = origin.Sub(s.Points[i].P)
	}

	var r reduction
	switch s.Count {
	case 1:
		r = reduction{point: y[0], count: 1, indices: [4]int{0}, weights: [4]float32{1}}
	case 2:
		r = closestSegment(&y, 0, 1)
	case 3:
		r = closestTriangle(&y, 0, 1, 2)
	case 4:
		r = closestTetrahedron(&y)
	default:
		return mgl32.Vec3{}, false
	}

	var points [4]SupportPoint
	for i := 0; i < r.count; i++ {
		points[i] = s.Points[r.indices[i]]
	}
	s.Points = points
	s.weights = r.weights
	s.Count = r.count

	return r.point, r.count == 4
}

type reduction struct {
	point   mgl32.Vec3
	indices [4]int
	weights [4]float32
	count   int
}

func closestSegment(y *[4]mgl32.Vec3, i, j int) reduction {
	a, b := y[i], y[j]
	ab := b.Sub(a)
	denom := ab.LenSqr()
	if denom < 1e-12 {
		return reduction{point: a, count: 1, indices: [4]int{i}, weights: [4]float32{1}}
	}

	t := -a.Dot(ab) / denom
	if t <= 0 {
		return reduction{point: a, count: 1, indices: [4]int{i}, weights: [4]float32{1}}
	}
	if t >= 1 {
		return reduction{point: b, count: 1, indices: [4]int{j}, weights: [4]float32{1}}
	}

	return reduction{
		point:   a.Add(ab.Mul(t)),
		count:   2,
		indices: [4]int{i, j},
		weights: [4]float32{1 - t, t},
	}
}

func closestTriangle(y *[4]mgl32.Vec3, i, j, k int) reduction {
	a, b, c := y[i], y[j], y[k]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := a.Mul(-1)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return reduction{point: a, count: 1, indices: [4]int{i}, weights: [4]float32{1}}
	}

	bp := b.Mul(-1)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return reduction{point: b, count: 1, indices: [4]int{j}, weights: [4]float32{1}}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return closestSegment(y, i, j)
	}

	cp := c.Mul(-1)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return reduction{point: c, count: 1, indices: [4]int{k}, weights: [4]float32{1}}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return closestSegment(y, i, k)
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		return closestSegment(y, j, k)
	}

	denom := va + vb + vc
	if denom < 1e-12 {
		// flat triangle
		return closestOf(closestSegment(y, i, j), closestSegment(y, i, k), closestSegment(y, j, k))
	}

	v := vb / denom
	w := vc / denom

	return reduction{
		point:   a.Add(ab.Mul(v)).Add(ac.Mul(w)),
		count:   3,
		indices: [4]int{i, j, k},
		weights: [4]float32{1 - v - w, v, w},
	}
}

func closestTetrahedron(y *[4]mgl32.Vec3) reduction {
	faces := [4][4]int{
		{0, 1, 2, 3},
		{0, 2, 3, 1},
		{0, 3, 1, 2},
		{1, 3, 2, 0},
	}

	found := false
	var best reduction
	bestDist := float32(0)
	for _, f := range faces {
		if !originOutsidePlane(y[f[0]], y[f[1]], y[f[2]], y[f[3]]) {
			continue
		}
		r := closestTriangle(y, f[0], f[1], f[2])
		dist := r.point.LenSqr()
		if !found || dist < bestDist {
			best, bestDist, found = r, dist, true
		}
	}
	if found {
		return best
	}

	// origin inside: weights from the signed volumes
	volume := tripleProduct(y[1].Sub(y[0]), y[2].Sub(y[0]), y[3].Sub(y[0]))
	origin := mgl32.Vec3{}
	w1 := tripleProduct(origin.Sub(y[0]), y[2].Sub(y[0]), y[3].Sub(y[0])) / volume
	w2 := tripleProduct(y[1].Sub(y[0]), origin.Sub(y[0]), y[3].Sub(y[0])) / volume
	w3 := tripleProduct(y[1].Sub(y[0]), y[2].Sub(y[0]), origin.Sub(y[0])) / volume

	return reduction{
		count:   4,
		indices: [4]int{0, 1, 2, 3},
		weights: [4]float32{1 - w1 - w2 - w3, w1, w2, w3},
	}
}

// originOutsidePlane reports whether the origin and d lie on opposite sides of plane abc.
// A degenerate tetrahedron reports every face as outside.
func originOutsidePlane(a, b, c, d mgl32.Vec3) bool {
	n := b.Sub(a).Cross(c.Sub(a))
	signP := a.Mul(-1).Dot(n)
	signD := d.Sub(a).Dot(n)
	if signD*signD < 1e-12 {
		return true
	}

	return signP*signD < 0
}

func tripleProduct(a, b, c mgl32.Vec3) float32 {
	return a.Dot(b.Cross(c))
}

func closestOf(candidates ...reduction) reduction {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.point.LenSqr() < best.point.LenSqr() {
			best = c
		}
	}

	return best
}
