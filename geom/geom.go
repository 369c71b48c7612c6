/*package geom contains the vector routines used by periodic summations:
three-component vectors, dot products, and the minimum-image wrap.
*/
package geom

import (
	"math"
)

// Vec is a three dimensional vector.
type Vec [3]float64

// Dot computes the inner product of v and u.
func (v *Vec) Dot(u *Vec) float64 {
	return v[0]*u[0] + v[1]*u[1] + v[2]*u[2]
}

// Norm2 computes the squared magnitude of v.
func (v *Vec) Norm2() float64 {
	return v.Dot(v)
}

// Norm computes the magnitude of v.
func (v *Vec) Norm() float64 {
	return math.Sqrt(v.Norm2())
}

// Sub sets v to the difference p1 - p2.
func (v *Vec) Sub(p1, p2 *Vec) {
	for d := 0; d < 3; d++ {
		v[d] = p1[d] - p2[d]
	}
}

// Wrap applies the minimum-image convention to the separation vector v,
// shifting every component by the nearest integer multiple of the
// corresponding cycle length. The shift that was subtracted is returned,
// so callers can recover the periodic image offset implied by the wrap.
func (v *Vec) Wrap(cycle *Vec) Vec {
	var off Vec
	for d := 0; d < 3; d++ {
		off[d] = cycle[d] * math.Round(v[d]/cycle[d])
		v[d] -= off[d]
	}
	return off
}
