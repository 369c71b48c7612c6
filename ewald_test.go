package ewald

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phil-mansfield/ewald/direct"
	"github.com/phil-mansfield/ewald/geom"
	"github.com/phil-mansfield/ewald/particle"
	"github.com/phil-mansfield/ewald/tree"
)

// madelungNaCl is the Madelung constant of the rock-salt lattice in
// units of the nearest-neighbor distance.
const madelungNaCl = 1.7475645946331822

func almostEq(x, y, eps float64) bool {
	return x+eps > y && x-eps < y
}

// sum runs the full pipeline on bodies, which are reordered by the tree
// build, and returns them.
func sum(
	bodies particle.Bodies, ksize int,
	alpha, sigma, cutoff float64, cycle geom.Vec,
) particle.Bodies {

	e := New(ksize, alpha, sigma, cutoff, cycle)
	InitTarget(bodies)
	// Point leaves keep the walker exact out to cutoffs as large as
	// half the box edge.
	cells := tree.Build(bodies, 1)

	e.RealPart(cells, cells, bodies, bodies)
	e.WavePart(bodies)
	e.SelfTerm(bodies)

	var x0 geom.Vec
	for d := 0; d < 3; d++ {
		x0[d] = cycle[d] / 2
	}
	dipole := GetDipole(bodies, x0)
	DipoleCorrection(bodies, dipole, len(bodies), cycle)

	return bodies
}

func rockSalt() particle.Bodies {
	bodies := particle.Bodies{}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				q := 1.0
				if (i+j+k)%2 == 1 {
					q = -1
				}
				bodies = append(bodies, particle.Body{
					X: geom.Vec{float64(i), float64(j), float64(k)},
					Q: q, Weight: 1,
				})
			}
		}
	}
	return bodies
}

func TestP2PNewtonsThirdLaw(t *testing.T) {
	bodies := particle.Bodies{
		{X: geom.Vec{0.3, 0.4, 0.5}, Q: +1},
		{X: geom.Vec{0.7, 0.9, 0.6}, Q: -2},
	}
	ci := &tree.Cell{Body: 0, NBody: 1}
	cj := &tree.Cell{Body: 1, NBody: 1}
	e := New(0, 2, 0.25/math.Pi, 1.5, geom.Vec{10, 10, 10})

	var off geom.Vec
	e.p2p(ci, cj, bodies, bodies, &off)
	e.p2p(cj, ci, bodies, bodies, &off)

	qi, qj := bodies[0].Q, bodies[1].Q
	for d := 0; d < 3; d++ {
		assert.Equal(
			t, qi*bodies[0].Trg[d+1], -qj*bodies[1].Trg[d+1],
			"force antisymmetry",
		)
	}
	// The pair's interaction energy is the same seen from either side.
	assert.Equal(t, qi*bodies[0].Trg[0], qj*bodies[1].Trg[0], "pair energy")
}

func TestP2PCutoffBoundary(t *testing.T) {
	cutoff := 1.0
	e := New(0, 2, 0.25/math.Pi, cutoff, geom.Vec{10, 10, 10})
	ci := &tree.Cell{Body: 0, NBody: 1}
	cj := &tree.Cell{Body: 1, NBody: 1}
	var off geom.Vec

	table := []struct {
		r       float64
		nonzero bool
	}{
		{cutoff - 1e-9, true},
		{cutoff, false},
		{cutoff + 1e-9, false},
	}

	for i := range table {
		bodies := particle.Bodies{
			{X: geom.Vec{0, 0, 0}, Q: 1},
			{X: geom.Vec{table[i].r, 0, 0}, Q: 1},
		}
		e.p2p(ci, cj, bodies, bodies, &off)
		nonzero := bodies[0].Trg[0] != 0
		if nonzero != table[i].nonzero {
			t.Errorf(
				"%d) pair at R = %g: contribution nonzero = %v, expected %v",
				i, table[i].r, nonzero, table[i].nonzero,
			)
		}
	}
}

func TestP2PSelfInteractionSkipped(t *testing.T) {
	bodies := particle.Bodies{
		{X: geom.Vec{0.5, 0.5, 0.5}, Q: 1},
		{X: geom.Vec{0.5, 0.5, 0.5}, Q: 1},
	}
	c := &tree.Cell{Body: 0, NBody: 2}
	e := New(0, 2, 0.25/math.Pi, 1, geom.Vec{10, 10, 10})

	var off geom.Vec
	e.p2p(c, c, bodies, bodies, &off)

	// Coincident bodies must be skipped rather than produce NaN.
	for i := range bodies {
		for d := 0; d < 4; d++ {
			if math.IsNaN(bodies[i].Trg[d]) {
				t.Fatalf("body %d accumulator %d is NaN", i, d)
			}
			assert.Equal(t, 0.0, bodies[i].Trg[d], "coincident pair")
		}
	}
}

func compareRealPart(
	t *testing.T, bodies particle.Bodies, cells tree.Cells,
	alpha, cutoff float64, cycle geom.Vec,
) {
	ref := make(particle.Bodies, len(bodies))
	copy(ref, bodies)

	e := New(0, alpha, 0.25/math.Pi, cutoff, cycle)
	e.RealPart(cells, cells, bodies, bodies)
	direct.ShortRange(ref, alpha, cutoff, cycle)

	for i := range bodies {
		for d := 0; d < 4; d++ {
			if !almostEq(bodies[i].Trg[d], ref[i].Trg[d], 1e-9) {
				t.Errorf(
					"body %d accumulator %d: tree %g, direct %g",
					i, d, bodies[i].Trg[d], ref[i].Trg[d],
				)
			}
		}
	}
}

func TestRealPartMatchesDirect(t *testing.T) {
	// Single-body leaves are point spheres, so the image the walker
	// derives from each leaf pair is exactly that pair's minimum image
	// and the walk must reproduce the pairwise sum up to summation
	// order, including pairs wrapped across the box boundary.
	cycle := geom.Vec{2, 2, 2}
	alpha, cutoff := 2.0, 0.9

	bodies := particle.RandomNeutral(64, cycle, 11)
	InitTarget(bodies)
	cells := tree.Build(bodies, 1)

	compareRealPart(t, bodies, cells, alpha, cutoff, cycle)
}

func TestRealPartMatchesDirectMultiBodyLeaves(t *testing.T) {
	// The walker applies one periodic image to every pair of a leaf
	// pair, so it agrees with the per-pair minimum image only while
	// cutoff + 2 * (max leaf radius) stays below half the shortest box
	// edge. This configuration keeps the bodies clustered so that the
	// condition holds with a wide margin.
	cycle := geom.Vec{8, 8, 8}
	alpha, cutoff := 2.0, 0.5

	gen := rand.New(rand.NewSource(13))
	bodies := make(particle.Bodies, 64)
	for i := range bodies {
		for d := 0; d < 3; d++ {
			bodies[i].X[d] = 4 + 0.6*(gen.Float64()-0.5)
		}
		bodies[i].Q = 1
		if i%2 == 1 {
			bodies[i].Q = -1
		}
	}
	InitTarget(bodies)
	cells := tree.Build(bodies, 8)

	maxR := 0.0
	for _, i := range cells.Leaves() {
		if cells[i].R > maxR {
			maxR = cells[i].R
		}
	}
	if cutoff+2*maxR >= cycle[0]/2 {
		t.Fatalf(
			"configuration outside the walker's validity domain: "+
				"cutoff %g + 2 * leaf radius %g >= %g",
			cutoff, maxR, cycle[0]/2,
		)
	}

	compareRealPart(t, bodies, cells, alpha, cutoff, cycle)
}

func TestSelfTerm(t *testing.T) {
	e := New(0, 2, 0.25/math.Pi, 1, geom.Vec{1, 1, 1})
	bodies := particle.Bodies{{Q: 3}}
	e.SelfTerm(bodies)
	assert.Equal(t, -2/math.SqrtPi*3*2, bodies[0].Trg[0], "self term")
}

func TestDipoleCentrosymmetric(t *testing.T) {
	cycle := geom.Vec{2, 2, 2}
	center := geom.Vec{1, 1, 1}
	a := geom.Vec{0.25, 0.125, 0.5}
	b := geom.Vec{0.5, 0.25, 0.125}

	bodies := particle.Bodies{
		{X: geom.Vec{center[0] + a[0], center[1] + a[1], center[2] + a[2]}, Q: +1},
		{X: geom.Vec{center[0] - a[0], center[1] - a[1], center[2] - a[2]}, Q: +1},
		{X: geom.Vec{center[0] + b[0], center[1] + b[1], center[2] + b[2]}, Q: -1},
		{X: geom.Vec{center[0] - b[0], center[1] - b[1], center[2] - b[2]}, Q: -1},
	}

	dipole := GetDipole(bodies, center)
	assert.Equal(t, geom.Vec{}, dipole, "dipole moment")

	InitTarget(bodies)
	DipoleCorrection(bodies, dipole, len(bodies), cycle)
	for i := range bodies {
		assert.Equal(t, [4]float64{}, bodies[i].Trg, "zero-dipole correction")
	}
}

func TestInitTarget(t *testing.T) {
	bodies := particle.Bodies{
		{Trg: [4]float64{1, 2, 3, 4}, Index: 7, CellID: 3, Weight: 9},
		{Trg: [4]float64{5, 6, 7, 8}, Index: 0, CellID: 1, Weight: 0},
	}
	InitTarget(bodies)
	for i := range bodies {
		assert.Equal(t, [4]float64{}, bodies[i].Trg, "accumulator")
		assert.Equal(t, i, bodies[i].Index, "index")
		assert.Equal(t, 0, bodies[i].CellID, "cell id")
		assert.Equal(t, 1.0, bodies[i].Weight, "weight")
	}
}

func TestMadelungRockSalt(t *testing.T) {
	// Eight alternating unit charges on the corners of a unit-spacing
	// cube, replicated with period 2, form the rock-salt lattice. The
	// potential at each ion times its charge is minus the Madelung
	// constant.
	cycle := geom.Vec{2, 2, 2}
	bodies := sum(rockSalt(), 16, 6, 0.25/math.Pi, 1, cycle)

	for i := range bodies {
		u := bodies[i].Q * bodies[i].Trg[0]
		if !almostEq(u, -madelungNaCl, 2e-4) {
			t.Errorf(
				"ion %d: q * phi = %g, expected %g",
				i, u, -madelungNaCl,
			)
		}
		for d := 0; d < 3; d++ {
			if f := bodies[i].Trg[d+1]; !almostEq(f, 0, 1e-6) {
				t.Errorf("ion %d force axis %d = %g, expected 0", i, d, f)
			}
		}
	}
}

func TestAlphaIndependence(t *testing.T) {
	// The splitting parameter moves weight between the real-space and
	// wave-space sums but must not change their total.
	cycle := geom.Vec{2, 2, 2}

	bodies1 := particle.RandomNeutral(16, cycle, 3)
	bodies2 := particle.RandomNeutral(16, cycle, 3)

	u1 := sum(bodies1, 14, 4, 0.25/math.Pi, 0.999, cycle).TotalPotential()
	u2 := sum(bodies2, 16, 6, 0.25/math.Pi, 0.999, cycle).TotalPotential()

	if !almostEq(u1, u2, 1e-4*math.Abs(u1)+1e-4) {
		t.Errorf("total potential %g at alpha 4 but %g at alpha 6", u1, u2)
	}
}

func TestRealPartSourceTree(t *testing.T) {
	// Targets against a distinct (here disjoint) source tree: only
	// source charges may deposit onto target accumulators.
	cycle := geom.Vec{4, 4, 4}
	targets := particle.Bodies{{X: geom.Vec{1, 1, 1}, Q: 1}}
	sources := particle.Bodies{{X: geom.Vec{1.5, 1, 1}, Q: -1}}
	InitTarget(targets)
	InitTarget(sources)

	tcells := tree.Build(targets, 8)
	scells := tree.Build(sources, 8)

	alpha := 2.0
	e := New(0, alpha, 0.25/math.Pi, 1, cycle)
	e.RealPart(tcells, scells, targets, sources)

	r := 0.5
	want := -math.Erfc(alpha*r) / r
	if !almostEq(targets[0].Trg[0], want, 1e-12) {
		t.Errorf("potential %g, expected %g", targets[0].Trg[0], want)
	}
	assert.Equal(t, [4]float64{}, sources[0].Trg, "source accumulator")
}
