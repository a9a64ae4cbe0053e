/*
Copyright © 2026 the InMAP authors.
This file is part of Spray.

Spray is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Spray is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Spray.  If not, see <http://www.gnu.org/licenses/>.
*/

package spray

import (
	"math"
	"testing"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

// water has a constant density of 1000 kg/m³.
func water() *PolyLiquid {
	return &PolyLiquid{Coefs: [][]float64{{1000}}}
}

// testJet is a deterministic JetSource.
type testJet struct {
	name        string
	center, vel Vec
	mdot        float64
	dia, avgDia float64
	temp        float64
	y           []float64
	nozzle      float64
	hollow      bool
	owner       int
	inactive    bool

	// reject is the number of initial samples to reject, and dias,
	// if set, gives the diameter of each successive sample.
	reject int
	dias   []float64

	samples int
	radii   []float64
}

func (j *testJet) Name() string                 { return j.name }
func (j *testJet) Active(float64) bool          { return !j.inactive }
func (j *testJet) MassFlowRate(float64) float64 { return j.mdot }
func (j *testJet) Velocity(float64) float64     { return j.vel.Norm() }
func (j *testJet) AvgTemperature() float64      { return j.temp }
func (j *testJet) AvgY() []float64              { return j.y }
func (j *testJet) Diameter() float64            { return j.nozzle }
func (j *testJet) Hollow() bool                 { return j.hollow }
func (j *testJet) Owner() int                   { return j.owner }

func (j *testJet) AvgDiameter() float64 {
	if j.avgDia > 0 {
		return j.avgDia
	}
	return j.dia
}

func (j *testJet) Sample(_, r, phi float64) (Sample, bool) {
	i := j.samples
	j.samples++
	j.radii = append(j.radii, r)
	d := j.dia
	if len(j.dias) > 0 {
		d = j.dias[i%len(j.dias)]
	}
	s := Sample{
		Pos: j.center.Add(Vec{r * math.Cos(phi), r * math.Sin(phi), 0}),
		Vel: j.vel,
		Dia: d,
		T:   j.temp,
		Y:   j.y,
	}
	return s, i >= j.reject
}

// diaForMass returns the diameter of a water droplet with mass m.
func diaForMass(m float64) float64 { return MinDiameter(m, 1000) }

// newTestJet returns a jet in the middle of the unit cube whose droplets
// have mass m.
func newTestJet(m, mdot float64) *testJet {
	return &testJet{
		name:   "test",
		center: Vec{0.5, 0.5, 0.5},
		vel:    Vec{0, 0, 0.01},
		mdot:   mdot,
		dia:    diaForMass(m),
		temp:   300,
		y:      []float64{1},
		nozzle: 0.01,
	}
}

func unitCube() Geometry {
	return Geometry{Hi: Vec{1, 1, 1}}
}

// newTestGroup returns a group of nprocs processes sharing the unit cube,
// which is divided into 2×2×2 boxes of 2×1×1 tiles.
func newTestGroup(t *testing.T, nprocs int) *ProcessGroup {
	grid, err := NewBoxGrid(unitCube(), Extents{2, 2, 2}, Extents{2, 1, 1}, nprocs)
	if err != nil {
		t.Fatal(err)
	}
	return NewProcessGroup(grid)
}
