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

// Package spray injects computational parcels representing a liquid spray
// into a distributed Eulerian domain, and initializes uniform parcel
// lattices across a set of processes.
package spray

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Vec is a vector in the three physical dimensions.
type Vec [3]float64

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }

// Scale returns s*v.
func (v Vec) Scale(s float64) Vec { return Vec{s * v[0], s * v[1], s * v[2]} }

// Norm returns the Euclidean length of v.
func (v Vec) Norm() float64 { return floats.Norm(v[:], 2) }

// yTolerance is the allowed deviation of the sum of parcel mass fractions
// from one.
const yTolerance = 1.e-8

// Parcel is a computational particle representing a population of N
// physical droplets that share the same state.
type Parcel struct {
	Pos Vec     // position [m]
	Vel Vec     // velocity [m/s]
	Dia float64 // droplet diameter [m]
	T   float64 // temperature [K]

	// Y holds the liquid species mass fractions.
	Y []float64

	BM1, BM2   float64 // breakup model scalars
	FilmHeight float64 // wall film height [m]

	N0 float64 // reference number density (droplets per parcel)
	N  float64 // current number density

	ID  int64 // identifier, unique together with CPU
	CPU int   // process that created the parcel
}

// Check returns an error if p does not satisfy the parcel invariants:
// a diameter above minDia, non-negative mass fractions summing to one,
// and positive number densities.
func (p *Parcel) Check(minDia float64) error {
	if !(p.Dia > minDia) {
		return errors.Errorf("spray: parcel %d diameter %g not above minimum %g", p.ID, p.Dia, minDia)
	}
	if len(p.Y) == 0 {
		return errors.Errorf("spray: parcel %d has no mass fractions", p.ID)
	}
	for i, y := range p.Y {
		if y < 0 {
			return errors.Errorf("spray: parcel %d mass fraction %d is negative (%g)", p.ID, i, y)
		}
	}
	if s := floats.Sum(p.Y); math.Abs(s-1) > yTolerance {
		return errors.Errorf("spray: parcel %d mass fractions sum to %g", p.ID, s)
	}
	if !(p.N0 > 0) || !(p.N > 0) {
		return errors.Errorf("spray: parcel %d number densities must be positive (N0=%g, N=%g)", p.ID, p.N0, p.N)
	}
	return nil
}

// Mass returns the mass of a single droplet of p given the liquid
// density rho [kg/m³].
func (p *Parcel) Mass(rho float64) float64 {
	return dropletMass(rho, p.Dia)
}

func dropletMass(rho, dia float64) float64 {
	return math.Pi / 6 * rho * dia * dia * dia
}
