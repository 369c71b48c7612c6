package io

import (
	"bufio"
	"fmt"
	"os"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/ewald/geom"
	"github.com/phil-mansfield/ewald/particle"
)

// ReadBodies reads a whitespace-separated table with columns x y z q,
// one body per row.
func ReadBodies(fname string) (particle.Bodies, error) {
	cols, err := table.ReadTable(fname, []int{0, 1, 2, 3}, nil)
	if err != nil {
		return nil, err
	}

	xs, ys, zs, qs := cols[0], cols[1], cols[2], cols[3]
	bodies := make(particle.Bodies, len(xs))
	for i := range bodies {
		bodies[i].X = geom.Vec{xs[i], ys[i], zs[i]}
		bodies[i].Q = qs[i]
		bodies[i].Index = i
		bodies[i].Weight = 1
	}

	return bodies, nil
}

// WriteBodies writes a whitespace-separated table with columns
// x y z q phi fx fy fz, one body per row.
func WriteBodies(fname string, bodies particle.Bodies) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	fmt.Fprintf(w, "# x y z q phi fx fy fz\n")
	for i := range bodies {
		b := &bodies[i]
		_, err := fmt.Fprintf(
			w, "%.10g %.10g %.10g %.10g %.10g %.10g %.10g %.10g\n",
			b.X[0], b.X[1], b.X[2], b.Q,
			b.Trg[0], b.Trg[1], b.Trg[2], b.Trg[3],
		)
		if err != nil {
			return err
		}
	}

	return nil
}
