/*convergence plots the error of the Ewald potential against the lattice
radius of the reciprocal sum, for several splitting parameters. The test
system is the rock-salt unit cell, whose per-ion potential is the
Madelung constant.
*/
package main

import (
	"log"
	"math"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/phil-mansfield/ewald"
	"github.com/phil-mansfield/ewald/geom"
	"github.com/phil-mansfield/ewald/particle"
	"github.com/phil-mansfield/ewald/tree"
)

const madelungNaCl = 1.7475645946331822

var (
	alphas = []float64{3, 4.5, 6}
	colors = []string{"r", "g", "b"}
	ksizes = []int{2, 4, 6, 8, 10, 12, 14, 16}
)

func main() {
	cycle := geom.Vec{2, 2, 2}
	sigma := 0.25 / math.Pi
	cutoff := 1.0

	plt.Reset()
	plt.Figure()

	for i, alpha := range alphas {
		xs := make([]float64, len(ksizes))
		ys := make([]float64, len(ksizes))
		for j, ksize := range ksizes {
			xs[j] = float64(ksize)
			ys[j] = madelungError(ksize, alpha, sigma, cutoff, cycle)
		}
		log.Printf("alpha = %g: error %.3g at ksize = %d",
			alpha, ys[len(ys)-1], ksizes[len(ksizes)-1])
		plt.Plot(xs, ys, colors[i], plt.LW(2))
	}

	plt.Title("Rock-salt Madelung convergence")
	plt.XLabel(`$k_{\rm max}$`, plt.FontSize(16))
	plt.YLabel("relative error", plt.FontSize(16))
	plt.YScale("log")
	plt.SaveFig("ewald_convergence.png")
	plt.Execute()
}

func madelungError(
	ksize int, alpha, sigma, cutoff float64, cycle geom.Vec,
) float64 {

	bodies := rockSalt()
	e := ewald.New(ksize, alpha, sigma, cutoff, cycle)
	ewald.InitTarget(bodies)
	cells := tree.Build(bodies, 8)

	e.RealPart(cells, cells, bodies, bodies)
	e.WavePart(bodies)
	e.SelfTerm(bodies)

	worst := 0.0
	for i := range bodies {
		u := bodies[i].Q * bodies[i].Trg[0]
		err := math.Abs(u+madelungNaCl) / madelungNaCl
		if err > worst {
			worst = err
		}
	}
	return worst
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
