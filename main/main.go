package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/ewald"
	"github.com/phil-mansfield/ewald/direct"
	"github.com/phil-mansfield/ewald/geom"
	ewio "github.com/phil-mansfield/ewald/io"
	"github.com/phil-mansfield/ewald/particle"
	"github.com/phil-mansfield/ewald/tree"
)

func main() {
	var ewaldFile, exampleConfig string

	flag.StringVar(
		&ewaldFile, "Ewald", "",
		"Configuration file for [Ewald] mode.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example [Ewald] configuration file to stdout.",
	)

	flag.Parse()

	switch {
	case exampleConfig != "":
		fmt.Println(ewio.ExampleEwaldFile)
	case ewaldFile != "":
		con, err := ewio.ReadEwaldConfig(ewaldFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		validate(con)
		ewaldMain(con)
	default:
		log.Fatal("Must set either the -Ewald or the -ExampleConfig flag.")
	}
}

func validate(con *ewio.EwaldConfig) {
	if !con.ValidKSize() {
		log.Fatal("Invalid 'KSize' value.")
	} else if !con.ValidAlpha() {
		log.Fatal("Invalid/non-existent 'Alpha' value.")
	} else if !con.ValidSigma() {
		log.Fatal("Invalid 'Sigma' value.")
	} else if !con.ValidCutoff() {
		log.Fatal("Invalid/non-existent 'Cutoff' value.")
	} else if !con.ValidCycle() {
		log.Fatal("Invalid/non-existent 'Cycle' value.")
	} else if !con.ValidLeafSize() {
		log.Fatal("Invalid 'LeafSize' value.")
	}
	if !con.ValidInput() && !con.ValidBodies() {
		log.Fatal("Must set either 'Input' or a positive 'Bodies' count.")
	}

	cx, cy, cz := con.CycleVec()
	min := cx
	if cy < min {
		min = cy
	}
	if cz < min {
		min = cz
	}
	if con.Cutoff > min/2 {
		log.Fatal("'Cutoff' exceeds half the shortest box edge.")
	}
}

func ewaldMain(con *ewio.EwaldConfig) {
	if con.ValidLogFile() {
		f, err := os.Create(con.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		defer f.Close()
		log.SetOutput(f)
	}

	cx, cy, cz := con.CycleVec()
	cycle := geom.Vec{cx, cy, cz}

	var bodies particle.Bodies
	if con.ValidInput() {
		var err error
		bodies, err = ewio.ReadBodies(con.Input)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.Printf("Read %d bodies from %s", len(bodies), con.Input)
	} else {
		bodies = particle.RandomNeutral(con.Bodies, cycle, con.Seed)
		log.Printf("Generated %d random bodies with seed %d",
			len(bodies), con.Seed)
	}
	if q := bodies.NetCharge(); q != 0 {
		log.Printf("Warning: net charge is %g, not 0", q)
	}

	e := ewald.New(con.KSize, con.Alpha, con.Sigma, con.Cutoff, cycle)
	ewald.InitTarget(bodies)
	cells := tree.Build(bodies, con.LeafSize)
	log.Printf("Built tree with %d cells", len(cells))

	e.RealPart(cells, cells, bodies, bodies)
	log.Printf("Real part done")
	e.WavePart(bodies)
	log.Printf("Wave part done")

	e.SelfTerm(bodies)
	x0 := geom.Vec{cycle[0] / 2, cycle[1] / 2, cycle[2] / 2}
	dipole := ewald.GetDipole(bodies, x0)
	ewald.DipoleCorrection(bodies, dipole, len(bodies), cycle)

	log.Printf("Dipole moment: (%.6g, %.6g, %.6g)",
		dipole[0], dipole[1], dipole[2])
	log.Printf("Total potential energy: %.10g", bodies.TotalPotential())

	if con.Shells >= 0 {
		compare(bodies, cycle, con.Shells)
	}

	if con.ValidOutput() {
		if err := ewio.WriteBodies(con.Output, bodies); err != nil {
			log.Fatal(err.Error())
		}
		log.Printf("Wrote results to %s", con.Output)
	}
}

// compare reruns the summation by brute force over periodic image shells
// and logs the relative error norms of the Ewald result against it.
func compare(bodies particle.Bodies, cycle geom.Vec, shells int) {
	ref := make(particle.Bodies, len(bodies))
	copy(ref, bodies)
	for i := range ref {
		ref[i].Trg = [4]float64{}
	}
	direct.Lattice(ref, cycle, shells)

	pot := make([]float64, len(bodies))
	refPot := make([]float64, len(bodies))
	force := make([]float64, 3*len(bodies))
	refForce := make([]float64, 3*len(bodies))
	for i := range bodies {
		pot[i], refPot[i] = bodies[i].Trg[0], ref[i].Trg[0]
		for d := 0; d < 3; d++ {
			force[3*i+d] = bodies[i].Trg[d+1]
			refForce[3*i+d] = ref[i].Trg[d+1]
		}
	}

	potErr := floats.Distance(pot, refPot, 2) / floats.Norm(refPot, 2)
	forceErr := floats.Distance(force, refForce, 2) / floats.Norm(refForce, 2)

	log.Printf("Brute-force comparison over %d image shells:", shells)
	log.Printf("  relative potential error: %.6g", potErr)
	log.Printf("  relative force error:     %.6g", forceErr)
}
