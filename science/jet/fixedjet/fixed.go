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

// Package fixedjet contains a deterministic spray jet in which every
// droplet leaves the nozzle with the same state.
package fixedjet

import (
	"math"

	"github.com/spatialmodel/spray"
)

// Jet is a spray.JetSource whose droplets all have the same diameter,
// temperature, composition and velocity. Droplet positions follow the
// sampled radius and angle in the plane perpendicular to the z axis.
type Jet struct {
	ID       string
	Center   spray.Vec
	Vel      spray.Vec
	Mdot     float64 // mass flow rate [kg/s]
	Dia      float64 // droplet diameter [m]
	AvgDia   float64 // average droplet diameter [m]; Dia if zero
	Temp     float64 // droplet temperature [K]
	Y        []float64
	Nozzle   float64 // nozzle diameter [m]
	IsHollow bool
	Proc     int

	// Start and End give the active period [s]. End <= Start means the
	// jet never stops.
	Start, End float64
}

// Name implements spray.JetSource.
func (j *Jet) Name() string { return j.ID }

// Active implements spray.JetSource.
func (j *Jet) Active(t float64) bool {
	return t >= j.Start && (j.End <= j.Start || t < j.End)
}

// MassFlowRate implements spray.JetSource.
func (j *Jet) MassFlowRate(float64) float64 { return j.Mdot }

// Velocity implements spray.JetSource.
func (j *Jet) Velocity(float64) float64 { return j.Vel.Norm() }

// AvgDiameter implements spray.JetSource.
func (j *Jet) AvgDiameter() float64 {
	if j.AvgDia > 0 {
		return j.AvgDia
	}
	return j.Dia
}

// AvgTemperature implements spray.JetSource.
func (j *Jet) AvgTemperature() float64 { return j.Temp }

// AvgY implements spray.JetSource.
func (j *Jet) AvgY() []float64 { return j.Y }

// Diameter implements spray.JetSource.
func (j *Jet) Diameter() float64 { return j.Nozzle }

// Hollow implements spray.JetSource.
func (j *Jet) Hollow() bool { return j.IsHollow }

// Owner implements spray.JetSource.
func (j *Jet) Owner() int { return j.Proc }

// Sample implements spray.JetSource.
func (j *Jet) Sample(_, r, phi float64) (spray.Sample, bool) {
	return spray.Sample{
		Pos: j.Center.Add(spray.Vec{r * math.Cos(phi), r * math.Sin(phi), 0}),
		Vel: j.Vel,
		Dia: j.Dia,
		T:   j.Temp,
		Y:   j.Y,
	}, true
}
