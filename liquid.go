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

	"github.com/ctessum/unit"
	"github.com/pkg/errors"
)

// DefaultMassFloor is the smallest droplet mass [kg] that can be
// represented without floating point problems.
const DefaultMassFloor = 1.e-18

// LiquidModel provides the liquid properties that parcel injection needs.
type LiquidModel interface {
	// Density returns the density [kg/m³] of liquid species i at
	// temperature T [K].
	Density(T float64, i int) float64

	// MassFloor returns the minimum resolvable droplet mass [kg].
	MassFloor() float64

	// NumSpecies returns the number of liquid species.
	NumSpecies() int
}

// PolyLiquid is a LiquidModel where the density of each species is a
// polynomial in temperature: ρ_i(T) = Σ_n Coefs[i][n]·T^n.
type PolyLiquid struct {
	Coefs [][]float64
	Floor float64 // minimum droplet mass [kg]; DefaultMassFloor if zero.
}

// Density implements LiquidModel.
func (l *PolyLiquid) Density(T float64, i int) float64 {
	c := l.Coefs[i]
	var rho float64
	for n := len(c) - 1; n >= 0; n-- {
		rho = rho*T + c[n]
	}
	return rho
}

// MassFloor implements LiquidModel.
func (l *PolyLiquid) MassFloor() float64 {
	if l.Floor <= 0 {
		return DefaultMassFloor
	}
	return l.Floor
}

// NumSpecies implements LiquidModel.
func (l *PolyLiquid) NumSpecies() int { return len(l.Coefs) }

// MixtureDensity returns the liquid density of a mixture with mass
// fractions y at temperature T, calculated as the mass-fraction weighted
// harmonic mean of the species densities. A single species mixture
// uses the density of species 0 directly.
func MixtureDensity(l LiquidModel, T float64, y []float64) float64 {
	if len(y) <= 1 {
		return l.Density(T, 0)
	}
	var inv float64
	for i, yi := range y {
		inv += yi / l.Density(T, i)
	}
	return 1 / inv
}

// MinDiameter returns the diameter [m] of a droplet of density rho
// [kg/m³] that has the given mass [kg].
func MinDiameter(mass, rho float64) float64 {
	return math.Cbrt(6 * mass / (math.Pi * rho))
}

// averageDropletMass returns the mass of a droplet with density rho and
// diameter dia, checking the dimensions of the result.
func averageDropletMass(rho, dia float64) (float64, error) {
	d := unit.New(dia, unit.Meter)
	m := unit.Mul(
		unit.New(math.Pi/6, unit.Dimless),
		unit.New(rho, unit.KilogramPerMeter3),
		d, d, d,
	)
	if err := m.Check(unit.Kilogram); err != nil {
		return 0, errors.Wrap(err, "spray: average droplet mass")
	}
	return m.Value(), nil
}
