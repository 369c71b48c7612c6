/*package ewald computes the potential and force on a periodic system of
point sources by Ewald summation. The 1/r kernel is split into a
short-range term summed directly between nearby bodies and a long-range
term summed over a truncated reciprocal lattice.

The short-range term is evaluated by RealPart, which walks a
bounding-sphere tree under the minimum-image convention and prunes
subtrees beyond the cutoff. The long-range term is evaluated by WavePart
through an explicit discrete Fourier transform over the wave set.
SelfTerm and DipoleCorrection remove the artifacts of charge smearing and
of periodic replication of the net dipole.
*/
package ewald

import (
	"math"
	"runtime"

	"github.com/phil-mansfield/ewald/geom"
	"github.com/phil-mansfield/ewald/particle"
	"github.com/phil-mansfield/ewald/tree"
)

const m2SqrtPi = 2 / math.SqrtPi

// Summation evaluates periodic Coulomb sums for a fixed splitting
// configuration. All derived constants are computed once at construction
// and a Summation is immutable afterwards, so it may be shared freely
// across goroutines.
type Summation struct {
	ksize  int
	alpha  float64
	sigma  float64
	cutoff float64
	cycle  geom.Vec

	scale   geom.Vec // 2 pi / cycle, per axis
	cutoff2 float64
	prune   float64 // sqrt(3) * cutoff, the walker's surface-gap threshold
	coef    float64 // 2 / (sigma * volume); the 2 doubles each retained wave
	coef2   float64 // 1 / (4 alpha^2)
	volume  float64
	workers int
}

// New returns a Summation for the given reciprocal lattice radius,
// splitting parameter alpha, smearing width sigma, real-space cutoff, and
// periodic cycle lengths.
func New(ksize int, alpha, sigma, cutoff float64, cycle geom.Vec) *Summation {
	e := &Summation{
		ksize: ksize, alpha: alpha, sigma: sigma, cutoff: cutoff, cycle: cycle,
	}

	for d := 0; d < 3; d++ {
		e.scale[d] = 2 * math.Pi / cycle[d]
	}
	e.cutoff2 = cutoff * cutoff
	e.prune = math.Sqrt(3) * cutoff
	e.volume = cycle[0] * cycle[1] * cycle[2]
	e.coef = 2 / sigma / e.volume
	e.coef2 = 1 / (4 * alpha * alpha)
	e.workers = runtime.NumCPU()

	return e
}

// RealPart accumulates the short-range Ewald term onto the target bodies.
// cells and jcells are the target and source trees over bodies and
// jbodies, respectively, and may be the same tree. Target leaves are
// processed in parallel; their body ranges are disjoint, so no two
// goroutines write to the same accumulator.
func (e *Summation) RealPart(
	cells, jcells tree.Cells, bodies, jbodies particle.Bodies,
) {
	if len(cells) == 0 || len(jcells) == 0 {
		return
	}

	leaves := cells.Leaves()
	workers := e.span(len(leaves))

	out := make(chan int, workers)
	for id := 0; id < workers-1; id++ {
		go e.chanNeighbors(id, workers, leaves, cells, jcells, bodies, jbodies, out)
	}
	e.chanNeighbors(workers-1, workers, leaves, cells, jcells, bodies, jbodies, out)

	for i := 0; i < workers; i++ {
		<-out
	}
}

func (e *Summation) chanNeighbors(
	id, jump int, leaves []int,
	cells, jcells tree.Cells, bodies, jbodies particle.Bodies,
	out chan<- int,
) {
	for i := id; i < len(leaves); i += jump {
		e.neighbors(leaves[i], 0, cells, jcells, bodies, jbodies)
	}
	out <- id
}

// neighbors recursively matches the target leaf ci against the source
// subtree rooted at cj. The cell-center separation is wrapped to its
// minimum image; a source subtree is pruned when the gap between the two
// bounding spheres reaches sqrt(3) * cutoff.
func (e *Summation) neighbors(
	ci, cj int, cells, jcells tree.Cells, bodies, jbodies particle.Bodies,
) {
	var dx geom.Vec
	dx.Sub(&cells[ci].X, &jcells[cj].X)
	off := dx.Wrap(&e.cycle)

	if dx.Norm()-cells[ci].R-jcells[cj].R >= e.prune {
		return
	}

	if jcells[cj].NChild == 0 {
		e.p2p(&cells[ci], &jcells[cj], bodies, jbodies, &off)
	}
	for cc := jcells[cj].Child; cc < jcells[cj].Child+jcells[cj].NChild; cc++ {
		e.neighbors(ci, cc, cells, jcells, bodies, jbodies)
	}
}

// p2p evaluates the short-range erfc kernel between every body of the
// target leaf ci and every body of the source leaf cj, shifted by the
// periodic image offset off. Self interactions (R = 0) and pairs at or
// beyond the cutoff are skipped.
func (e *Summation) p2p(
	ci, cj *tree.Cell, bodies, jbodies particle.Bodies, off *geom.Vec,
) {
	for i := ci.Body; i < ci.Body+ci.NBody; i++ {
		bi := &bodies[i]
		for j := cj.Body; j < cj.Body+cj.NBody; j++ {
			bj := &jbodies[j]

			var dx geom.Vec
			for d := 0; d < 3; d++ {
				dx[d] = bi.X[d] - bj.X[d] - off[d]
			}
			r2 := dx.Norm2()
			if r2 == 0 || r2 >= e.cutoff2 {
				continue
			}

			r2s := r2 * e.alpha * e.alpha
			rs := math.Sqrt(r2s)
			invRs := 1 / rs
			invR2s := invRs * invRs
			invR3s := invR2s * invRs

			dtmp := bj.Q * (m2SqrtPi*math.Exp(-r2s)*invR2s +
				math.Erfc(rs)*invR3s)
			dtmp *= e.alpha * e.alpha * e.alpha

			bi.Trg[0] += bj.Q * math.Erfc(rs) * invRs * e.alpha
			bi.Trg[1] -= dx[0] * dtmp
			bi.Trg[2] -= dx[1] * dtmp
			bi.Trg[3] -= dx[2] * dtmp
		}
	}
}

// SelfTerm removes the interaction of each smeared charge with itself.
func (e *Summation) SelfTerm(bodies particle.Bodies) {
	for i := range bodies {
		bodies[i].Trg[0] -= m2SqrtPi * bodies[i].Q * e.alpha
	}
}

// span clamps the worker count to the number of independent work items.
func (e *Summation) span(n int) int {
	workers := e.workers
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// GetDipole returns the net dipole moment of bodies about the reference
// origin x0.
func GetDipole(bodies particle.Bodies, x0 geom.Vec) geom.Vec {
	var dipole geom.Vec
	for i := range bodies {
		for d := 0; d < 3; d++ {
			dipole[d] += (bodies[i].X[d] - x0[d]) * bodies[i].Q
		}
	}
	return dipole
}

// DipoleCorrection cancels the artificial field of the periodically
// replicated net dipole under the conducting boundary convention.
func DipoleCorrection(
	bodies particle.Bodies, dipole geom.Vec, numBodies int, cycle geom.Vec,
) {
	coef := 4 * math.Pi / (3 * cycle[0] * cycle[1] * cycle[2])
	norm2 := dipole.Norm2()
	for i := range bodies {
		bodies[i].Trg[0] -= coef * norm2 / float64(numBodies) / bodies[i].Q
		for d := 0; d < 3; d++ {
			bodies[i].Trg[d+1] -= coef * dipole[d]
		}
	}
}

// InitTarget zeroes every accumulator and resets body bookkeeping before
// a summation pass.
func InitTarget(bodies particle.Bodies) {
	for i := range bodies {
		bodies[i].Trg = [4]float64{}
		bodies[i].Index = i
		bodies[i].CellID = 0
		bodies[i].Weight = 1
	}
}
