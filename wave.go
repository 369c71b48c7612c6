package ewald

import (
	"math"

	"github.com/phil-mansfield/ewald/geom"
	"github.com/phil-mansfield/ewald/particle"
)

// Wave is a single reciprocal-lattice point together with the real and
// imaginary parts of its amplitude. K holds integer wave numbers; the
// 2 pi / cycle scaling is applied wherever a phase is computed.
type Wave struct {
	K          geom.Vec
	Real, Imag float64
}

type Waves []Wave

// WavePart accumulates the long-range Ewald term onto every body: the
// body charges are projected onto the wave set, each amplitude is damped
// by the reciprocal-space Green's function, and the filtered amplitudes
// are projected back onto the bodies as potential and force.
func (e *Summation) WavePart(bodies particle.Bodies) {
	waves := e.initWaves()
	if len(waves) == 0 || len(bodies) == 0 {
		return
	}
	e.dft(waves, bodies)
	e.filter(waves)
	e.idft(waves, bodies)
}

// initWaves enumerates the integer vectors (l, m, n) with
// l^2 + m^2 + n^2 <= ksize^2, excluding the zero vector and keeping only
// one half of each conjugate pair: l >= 0, with m >= 0 when l = 0 and
// n >= 1 when l = m = 0. The omitted half is accounted for by the
// doubling folded into the filter coefficient.
func (e *Summation) initWaves() Waves {
	waves := Waves{}
	kmax2 := e.ksize * e.ksize

	for l := 0; l <= e.ksize; l++ {
		mmin := -e.ksize
		if l == 0 {
			mmin = 0
		}
		for m := mmin; m <= e.ksize; m++ {
			nmin := -e.ksize
			if l == 0 && m == 0 {
				nmin = 1
			}
			for n := nmin; n <= e.ksize; n++ {
				if l*l+m*m+n*n <= kmax2 {
					waves = append(waves, Wave{
						K: geom.Vec{float64(l), float64(m), float64(n)},
					})
				}
			}
		}
	}

	return waves
}

// dft projects the body charges onto each wave. Waves are strided across
// workers; every worker writes only its own waves' amplitudes and reads
// the shared body slice.
func (e *Summation) dft(waves Waves, bodies particle.Bodies) {
	workers := e.span(len(waves))

	out := make(chan int, workers)
	for id := 0; id < workers-1; id++ {
		go e.chanDFT(id, workers, waves, bodies, out)
	}
	e.chanDFT(workers-1, workers, waves, bodies, out)

	for i := 0; i < workers; i++ {
		<-out
	}
}

func (e *Summation) chanDFT(
	id, jump int, waves Waves, bodies particle.Bodies, out chan<- int,
) {
	for w := id; w < len(waves); w += jump {
		wave := &waves[w]
		wave.Real, wave.Imag = 0, 0
		for b := range bodies {
			th := 0.0
			for d := 0; d < 3; d++ {
				th += wave.K[d] * bodies[b].X[d] * e.scale[d]
			}
			wave.Real += bodies[b].Q * math.Cos(th)
			wave.Imag += bodies[b].Q * math.Sin(th)
		}
	}
	out <- id
}

// filter rescales every amplitude by the reciprocal-space Green's
// function, coef * exp(-K^2 / (4 alpha^2)) / K^2, with K the wave vector
// scaled to physical units. K^2 is nonzero because the zero vector is
// never enumerated.
func (e *Summation) filter(waves Waves) {
	for w := range waves {
		var k geom.Vec
		for d := 0; d < 3; d++ {
			k[d] = waves[w].K[d] * e.scale[d]
		}
		k2 := k.Norm2()
		factor := e.coef * math.Exp(-k2*e.coef2) / k2
		waves[w].Real *= factor
		waves[w].Imag *= factor
	}
}

// idft projects the filtered amplitudes back onto each body. Bodies are
// strided across workers; every worker writes only its own bodies'
// accumulators and reads the shared wave slice.
func (e *Summation) idft(waves Waves, bodies particle.Bodies) {
	workers := e.span(len(bodies))

	out := make(chan int, workers)
	for id := 0; id < workers-1; id++ {
		go e.chanIDFT(id, workers, waves, bodies, out)
	}
	e.chanIDFT(workers-1, workers, waves, bodies, out)

	for i := 0; i < workers; i++ {
		<-out
	}
}

func (e *Summation) chanIDFT(
	id, jump int, waves Waves, bodies particle.Bodies, out chan<- int,
) {
	for b := id; b < len(bodies); b += jump {
		body := &bodies[b]
		var trg [4]float64

		for w := range waves {
			th := 0.0
			for d := 0; d < 3; d++ {
				th += waves[w].K[d] * body.X[d] * e.scale[d]
			}
			dtmp := waves[w].Real*math.Sin(th) - waves[w].Imag*math.Cos(th)
			trg[0] += waves[w].Real*math.Cos(th) + waves[w].Imag*math.Sin(th)
			for d := 0; d < 3; d++ {
				trg[d+1] -= dtmp * waves[w].K[d]
			}
		}

		for d := 0; d < 3; d++ {
			trg[d+1] *= e.scale[d]
		}
		for d := 0; d < 4; d++ {
			body.Trg[d] += trg[d]
		}
	}
	out <- id
}
