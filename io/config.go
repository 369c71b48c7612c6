/*package io reads configuration files and particle tables for the
command line tools. The summation core itself owns no I/O.
*/
package io

import (
	"math"

	"gopkg.in/gcfg.v1"
)

const ExampleEwaldFile = `[Ewald]

#######################
# Required Parameters #
#######################

# Reciprocal lattice radius. Waves with l^2 + m^2 + n^2 <= KSize^2 are
# summed. KSize = 0 omits the reciprocal-space term entirely.
KSize = 11

# Ewald splitting parameter, in inverse length units. Larger values push
# more of the sum into reciprocal space.
Alpha = 5.0

# Real-space cutoff distance. Must be no larger than half the shortest
# box edge.
Cutoff = 1.0

# Periodic box edge length. Use Cycle for a cubic box, or set CycleX,
# CycleY and CycleZ individually.
Cycle = 2.0

#######################
# Optional Parameters #
#######################

# Gaussian smearing width parameter. Defaults to 1/(4 pi), which
# normalizes the reciprocal sum to the standard 4 pi / V convention.
# Sigma = 0.0795775

# Per-axis box edges. Each one overrides Cycle on its axis.
# CycleX = 2.0
# CycleY = 2.0
# CycleZ = 2.0

# Input table of bodies with columns: x y z q. Whitespace separated, one
# body per row. When unset, Bodies and Seed generate a random
# charge-neutral system instead.
# Input = path/to/bodies.txt

# Number of random bodies and the generator seed used when Input is not
# set.
# Bodies = 128
# Seed = 1

# Maximum bodies per tree leaf.
# LeafSize = 8

# Number of periodic image shells for the brute-force comparison run.
# Shells = 0 compares against the primary cell only; negative values skip
# the comparison.
# Shells = 2

# Output table with columns: x y z q phi fx fy fz.
# Output = path/to/results.txt

# LogFile = log.out`

type EwaldConfig struct {
	// Required
	KSize  int
	Alpha  float64
	Cutoff float64
	Cycle  float64

	// Optional
	Sigma                  float64
	CycleX, CycleY, CycleZ float64
	Input                  string
	Bodies                 int
	Seed                   int64
	LeafSize               int
	Shells                 int
	Output                 string
	LogFile                string
}

type EwaldWrapper struct {
	Ewald EwaldConfig
}

func DefaultEwaldWrapper() *EwaldWrapper {
	con := EwaldConfig{}
	con.Sigma = 0.25 / math.Pi
	con.Bodies = 128
	con.Seed = 1
	con.LeafSize = 8
	con.Shells = -1
	return &EwaldWrapper{con}
}

func ReadEwaldConfig(fname string) (*EwaldConfig, error) {
	wrap := DefaultEwaldWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	return &wrap.Ewald, nil
}

func (con *EwaldConfig) ValidKSize() bool {
	return con.KSize >= 0
}
func (con *EwaldConfig) ValidAlpha() bool {
	return con.Alpha > 0
}
func (con *EwaldConfig) ValidSigma() bool {
	return con.Sigma > 0
}
func (con *EwaldConfig) ValidCutoff() bool {
	return con.Cutoff > 0
}
func (con *EwaldConfig) ValidCycle() bool {
	x, y, z := con.CycleVec()
	return x > 0 && y > 0 && z > 0
}
func (con *EwaldConfig) ValidInput() bool {
	return con.Input != ""
}
func (con *EwaldConfig) ValidBodies() bool {
	return con.Bodies > 0
}
func (con *EwaldConfig) ValidLeafSize() bool {
	return con.LeafSize > 0
}
func (con *EwaldConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *EwaldConfig) ValidLogFile() bool {
	return con.LogFile != ""
}

// CycleVec resolves the per-axis box edges, letting CycleX, CycleY and
// CycleZ override the shared Cycle value.
func (con *EwaldConfig) CycleVec() (x, y, z float64) {
	x, y, z = con.Cycle, con.Cycle, con.Cycle
	if con.CycleX > 0 {
		x = con.CycleX
	}
	if con.CycleY > 0 {
		y = con.CycleY
	}
	if con.CycleZ > 0 {
		z = con.CycleZ
	}
	return x, y, z
}
