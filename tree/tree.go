/*package tree builds bounding-sphere trees over contiguous body slices.
Cells are stored in a single index arena: a cell's children occupy a
contiguous cell range and its bodies occupy a contiguous body range, so
the tree can be shared across goroutines without pointer chasing.

The summation core only reads cells; Build exists so callers have a tree
to hand it.
*/
package tree

import (
	"math"

	"github.com/phil-mansfield/ewald/geom"
	"github.com/phil-mansfield/ewald/particle"
)

const maxDepth = 64

// Cell is one node of the tree. X and R give a bounding sphere which
// encloses every body and every subcell the cell transitively owns.
// A cell with NChild == 0 is a leaf.
type Cell struct {
	X      geom.Vec
	R      float64
	Child  int // index of the first child in the arena
	NChild int
	Body   int // index of the first owned body
	NBody  int
}

type Cells []Cell

type buildBox struct {
	center geom.Vec
	half   float64
	depth  int
}

// Build constructs a tree over bodies by recursive octant splitting,
// reordering bodies in place. Leaves hold at most leafSize bodies, except
// where bodies coincide and cannot be split further. Cell spheres are
// centered on the centroid of their bodies, so a single-body leaf is a
// point sphere.
func Build(bodies particle.Bodies, leafSize int) Cells {
	if len(bodies) == 0 {
		return Cells{}
	}
	if leafSize < 1 {
		leafSize = 1
	}

	var lo, hi geom.Vec
	lo, hi = bodies[0].X, bodies[0].X
	for i := range bodies {
		for d := 0; d < 3; d++ {
			if bodies[i].X[d] < lo[d] {
				lo[d] = bodies[i].X[d]
			}
			if bodies[i].X[d] > hi[d] {
				hi[d] = bodies[i].X[d]
			}
		}
	}

	root := buildBox{}
	for d := 0; d < 3; d++ {
		root.center[d] = (lo[d] + hi[d]) / 2
		if w := (hi[d] - lo[d]) / 2; w > root.half {
			root.half = w
		}
	}

	cells := Cells{{Body: 0, NBody: len(bodies)}}
	boxes := []buildBox{root}
	buf := make(particle.Bodies, len(bodies))

	for i := 0; i < len(cells); i++ {
		c := cells[i]
		box := boxes[i]

		c.X = centroid(bodies[c.Body : c.Body+c.NBody])
		c.R = radius(bodies[c.Body:c.Body+c.NBody], &c.X)

		if c.NBody > leafSize && box.half > 0 && box.depth < maxDepth {
			starts, counts := partition(
				bodies[c.Body:c.Body+c.NBody], &box.center, buf,
			)

			c.Child = len(cells)
			for oct := 0; oct < 8; oct++ {
				if counts[oct] == 0 {
					continue
				}
				c.NChild++
				cells = append(cells, Cell{
					Body: c.Body + starts[oct], NBody: counts[oct],
				})
				boxes = append(boxes, childBox(&box, oct))
			}
		}

		cells[i] = c
	}

	// Grow spheres so that they also enclose their child spheres, not
	// just their own bodies. Children follow parents in the arena, so a
	// reverse sweep sees finalized children.
	for i := len(cells) - 1; i >= 0; i-- {
		c := &cells[i]
		for cc := c.Child; cc < c.Child+c.NChild; cc++ {
			var dx geom.Vec
			dx.Sub(&cells[cc].X, &c.X)
			if r := dx.Norm() + cells[cc].R; r > c.R {
				c.R = r
			}
		}
	}

	return cells
}

// Leaves returns the arena indices of all leaf cells.
func (cells Cells) Leaves() []int {
	leaves := []int{}
	for i := range cells {
		if cells[i].NChild == 0 {
			leaves = append(leaves, i)
		}
	}
	return leaves
}

func centroid(bodies particle.Bodies) geom.Vec {
	var x geom.Vec
	for i := range bodies {
		for d := 0; d < 3; d++ {
			x[d] += bodies[i].X[d]
		}
	}
	for d := 0; d < 3; d++ {
		x[d] /= float64(len(bodies))
	}
	return x
}

func radius(bodies particle.Bodies, center *geom.Vec) float64 {
	r2 := 0.0
	for i := range bodies {
		var dx geom.Vec
		dx.Sub(&bodies[i].X, center)
		if n2 := dx.Norm2(); n2 > r2 {
			r2 = n2
		}
	}
	return math.Sqrt(r2)
}

func octant(x, center *geom.Vec) int {
	oct := 0
	for d := 0; d < 3; d++ {
		if x[d] >= center[d] {
			oct |= 1 << uint(d)
		}
	}
	return oct
}

// partition stably reorders bodies into the eight octants around center
// and returns the start offset and count of each octant's range.
func partition(
	bodies particle.Bodies, center *geom.Vec, buf particle.Bodies,
) (starts, counts [8]int) {

	for i := range bodies {
		counts[octant(&bodies[i].X, center)]++
	}
	for oct := 1; oct < 8; oct++ {
		starts[oct] = starts[oct-1] + counts[oct-1]
	}

	next := starts
	buf = buf[0:len(bodies)]
	for i := range bodies {
		oct := octant(&bodies[i].X, center)
		buf[next[oct]] = bodies[i]
		next[oct]++
	}
	copy(bodies, buf)

	return starts, counts
}

func childBox(box *buildBox, oct int) buildBox {
	child := buildBox{center: box.center, half: box.half / 2, depth: box.depth + 1}
	for d := 0; d < 3; d++ {
		if oct&(1<<uint(d)) != 0 {
			child.center[d] += child.half
		} else {
			child.center[d] -= child.half
		}
	}
	return child
}
