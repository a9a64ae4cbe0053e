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

	"github.com/pkg/errors"
)

// ErrSamplingStalled is returned when a ParcelFactory rejects too many
// consecutive samples.
var ErrSamplingStalled = errors.New("spray: parcel sampling stalled")

// DefaultMaxRejections is the default number of consecutive rejected
// samples after which a ParcelFactory gives up.
const DefaultMaxRejections = 1000000

// ParcelFactory samples new parcels from a JetSource.
type ParcelFactory struct {
	Jet    JetSource
	Liquid LiquidModel
	Rand   Sampler

	// MinDia is the diameter [m] a sampled droplet must exceed.
	MinDia float64

	// NumPPP is the number of droplets per parcel.
	NumPPP float64

	// InitialBM2 is the initial value of the second breakup scalar.
	InitialBM2 float64

	// MaxRejections is the number of consecutive rejections allowed
	// before Next fails. DefaultMaxRejections is used if it is zero.
	MaxRejections int
}

// radius returns the radial location of a new droplet on the nozzle
// given a uniform random number u. Locations are uniformly distributed
// in area unless the jet is hollow, in which case all droplets leave
// from the nozzle edge.
func (f *ParcelFactory) radius(u float64) float64 {
	R := f.Jet.Diameter() / 2
	if f.Jet.Hollow() {
		return R
	}
	return math.Sqrt(u) * R
}

// Next samples droplets at time t until one is accepted, and returns a
// parcel holding it along with the mass [kg] of one of its droplets.
// Droplets are rejected unless their diameter exceeds f.MinDia and
// their speed is positive. The parcel has no ID and its position has not
// been advanced into the time step.
func (f *ParcelFactory) Next(t float64) (Parcel, float64, error) {
	maxRej := f.MaxRejections
	if maxRej <= 0 {
		maxRej = DefaultMaxRejections
	}
	for i := 0; i < maxRej; i++ {
		r := f.radius(f.Rand.Float64())
		phi := f.Rand.Float64() * 2 * math.Pi
		s, ok := f.Jet.Sample(t, r, phi)
		if !ok || !(s.Dia > f.MinDia) || !(s.Vel.Norm() > 0) {
			continue
		}
		p := Parcel{
			Pos:        s.Pos,
			Vel:        s.Vel,
			Dia:        s.Dia,
			T:          s.T,
			BM2:        f.InitialBM2,
			N0:         f.NumPPP,
			N:          f.NumPPP,
			FilmHeight: 0,
		}
		if f.Liquid.NumSpecies() > 1 {
			p.Y = append([]float64(nil), s.Y...)
		} else {
			p.Y = []float64{1}
		}
		rho := MixtureDensity(f.Liquid, p.T, p.Y)
		return p, p.Mass(rho), nil
	}
	return Parcel{}, 0, errors.Wrapf(ErrSamplingStalled, "jet %s: %d consecutive rejections", f.Jet.Name(), maxRej)
}
