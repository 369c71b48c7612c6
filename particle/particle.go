/*package particle defines the point-source type shared by the real-space
and wave-space summation passes. The summation core only reads positions
and charges and writes into the target accumulators; it never relocates or
reorders bodies.
*/
package particle

import (
	"math/rand"

	"github.com/phil-mansfield/ewald/geom"
)

// Body is a point source. Trg accumulates the potential in its first
// component and the force in the remaining three.
type Body struct {
	X      geom.Vec
	Q      float64
	Trg    [4]float64
	Index  int
	CellID int
	Weight float64
}

type Bodies []Body

// NetCharge returns the total charge of bs.
func (bs Bodies) NetCharge() float64 {
	q := 0.0
	for i := range bs {
		q += bs[i].Q
	}
	return q
}

// TotalPotential returns the total electrostatic energy of bs,
// (1/2) sum_i q_i phi_i, from the accumulated potentials.
func (bs Bodies) TotalPotential() float64 {
	u := 0.0
	for i := range bs {
		u += bs[i].Q * bs[i].Trg[0]
	}
	return u / 2
}

// RandomNeutral returns n bodies placed uniformly in a box with the given
// cycle lengths, carrying alternating unit charges. The system is charge
// neutral when n is even.
func RandomNeutral(n int, cycle geom.Vec, seed int64) Bodies {
	gen := rand.New(rand.NewSource(seed))
	bodies := make(Bodies, n)
	for i := range bodies {
		for d := 0; d < 3; d++ {
			bodies[i].X[d] = gen.Float64() * cycle[d]
		}
		bodies[i].Q = 1
		if i%2 == 1 {
			bodies[i].Q = -1
		}
		bodies[i].Index = i
		bodies[i].Weight = 1
	}
	return bodies
}
