/*package direct contains brute-force periodic summations used to check
the tree-based Ewald passes. Both routines are O(n^2) and exist for
validation and small reference runs only.
*/
package direct

import (
	"math"

	"github.com/phil-mansfield/ewald/geom"
	"github.com/phil-mansfield/ewald/particle"
)

const m2SqrtPi = 2 / math.SqrtPi

// ShortRange accumulates the short-range erfc kernel over every body
// pair under the minimum-image convention, without a tree. It matches
// the tree walk exactly as long as cutoff is no larger than half the
// shortest cycle length, since then only the nearest image of any pair
// can fall inside the cutoff.
func ShortRange(
	bodies particle.Bodies, alpha, cutoff float64, cycle geom.Vec,
) {
	cutoff2 := cutoff * cutoff
	for i := range bodies {
		bi := &bodies[i]
		for j := range bodies {
			bj := &bodies[j]

			var dx geom.Vec
			dx.Sub(&bi.X, &bj.X)
			dx.Wrap(&cycle)

			r2 := dx.Norm2()
			if r2 == 0 || r2 >= cutoff2 {
				continue
			}

			r2s := r2 * alpha * alpha
			rs := math.Sqrt(r2s)
			invRs := 1 / rs
			invR2s := invRs * invRs
			invR3s := invR2s * invRs

			dtmp := bj.Q * (m2SqrtPi*math.Exp(-r2s)*invR2s +
				math.Erfc(rs)*invR3s)
			dtmp *= alpha * alpha * alpha

			bi.Trg[0] += bj.Q * math.Erfc(rs) * invRs * alpha
			for d := 0; d < 3; d++ {
				bi.Trg[d+1] -= dx[d] * dtmp
			}
		}
	}
}

// Lattice accumulates the bare 1/r potential and force over every body
// pair and every periodic image within the given number of image shells.
// shells = 0 sums the primary cell only. The sum is only conditionally
// convergent in the shell count, so it serves as a coarse reference, not
// as ground truth.
func Lattice(bodies particle.Bodies, cycle geom.Vec, shells int) {
	for sx := -shells; sx <= shells; sx++ {
		for sy := -shells; sy <= shells; sy++ {
			for sz := -shells; sz <= shells; sz++ {
				off := geom.Vec{
					float64(sx) * cycle[0],
					float64(sy) * cycle[1],
					float64(sz) * cycle[2],
				}
				latticeImage(bodies, &off)
			}
		}
	}
}

func latticeImage(bodies particle.Bodies, off *geom.Vec) {
	for i := range bodies {
		bi := &bodies[i]
		for j := range bodies {
			bj := &bodies[j]

			var dx geom.Vec
			for d := 0; d < 3; d++ {
				dx[d] = bi.X[d] - bj.X[d] - off[d]
			}
			r2 := dx.Norm2()
			if r2 == 0 {
				continue
			}

			invR := 1 / math.Sqrt(r2)
			invR3 := invR * invR * invR

			bi.Trg[0] += bj.Q * invR
			for d := 0; d < 3; d++ {
				bi.Trg[d+1] -= dx[d] * bj.Q * invR3
			}
		}
	}
}
