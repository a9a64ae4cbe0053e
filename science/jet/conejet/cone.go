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

// Package conejet contains a conical spray jet with randomly distributed
// droplet sizes.
package conejet

import (
	"fmt"
	"math"

	"github.com/spatialmodel/spray"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat/distuv"
)

// Config holds the configuration of a conical jet.
type Config struct {
	Name string

	Center [3]float64 // location of the nozzle center [m]
	Normal [3]float64 // injection direction; need not be normalized

	Diameter    float64 // nozzle diameter [m]
	SpreadAngle float64 // full cone angle [degrees]
	SwirlAngle  float64 // swirl angle [degrees]

	StartTime, EndTime float64 // active period [s]; EndTime <= StartTime means no end

	// MassFlowRate is the constant mass flow rate [kg/s]. If
	// MassFlowTimes is given, the mass flow rate is instead
	// interpolated from MassFlowRates at those times.
	MassFlowRate  float64
	MassFlowTimes []float64
	MassFlowRates []float64

	Velocity float64 // injection speed [m/s]

	// DiameterDist is the droplet size distribution: "fixed",
	// "weibull" (Rosin-Rammler) or "lognormal". DistParam is the
	// Weibull shape parameter or the log-normal standard deviation.
	DiameterDist string
	AvgDiameter  float64 // mean droplet diameter [m]
	DistParam    float64

	Temperature float64   // droplet temperature [K]
	Y           []float64 // liquid species mass fractions

	Hollow bool
	Owner  int // rank of the injecting process
}

// Cone is a spray.JetSource that injects droplets in a cone around the
// nozzle normal.
type Cone struct {
	cfg    Config
	normal spray.Vec
	t1, t2 spray.Vec
	mdot   *interp.PiecewiseLinear
	dia    distuv.Rander
}

// New creates a Cone from c, using src for droplet size sampling.
func New(c Config, src rand.Source) (*Cone, error) {
	if c.Diameter <= 0 {
		return nil, fmt.Errorf("conejet: jet %s: nozzle diameter must be positive", c.Name)
	}
	if c.AvgDiameter <= 0 {
		return nil, fmt.Errorf("conejet: jet %s: average droplet diameter must be positive", c.Name)
	}
	n := spray.Vec(c.Normal)
	l := n.Norm()
	if l == 0 {
		return nil, fmt.Errorf("conejet: jet %s: normal vector is zero", c.Name)
	}
	j := &Cone{cfg: c, normal: n.Scale(1 / l)}
	j.t1, j.t2 = basis(j.normal)

	if len(c.MassFlowTimes) > 0 {
		if len(c.MassFlowTimes) != len(c.MassFlowRates) {
			return nil, fmt.Errorf("conejet: jet %s: %d mass flow times but %d rates",
				c.Name, len(c.MassFlowTimes), len(c.MassFlowRates))
		}
		j.mdot = new(interp.PiecewiseLinear)
		if err := j.mdot.Fit(c.MassFlowTimes, c.MassFlowRates); err != nil {
			return nil, fmt.Errorf("conejet: jet %s: mass flow table: %v", c.Name, err)
		}
	}

	switch c.DiameterDist {
	case "", "fixed":
	case "weibull":
		if c.DistParam <= 0 {
			return nil, fmt.Errorf("conejet: jet %s: Weibull shape must be positive", c.Name)
		}
		// Choose the scale so that the mean is the average diameter.
		j.dia = distuv.Weibull{
			K:      c.DistParam,
			Lambda: c.AvgDiameter / math.Gamma(1+1/c.DistParam),
			Src:    src,
		}
	case "lognormal":
		if c.DistParam <= 0 {
			return nil, fmt.Errorf("conejet: jet %s: log-normal sigma must be positive", c.Name)
		}
		j.dia = distuv.LogNormal{
			Mu:    math.Log(c.AvgDiameter) - c.DistParam*c.DistParam/2,
			Sigma: c.DistParam,
			Src:   src,
		}
	default:
		return nil, fmt.Errorf("conejet: jet %s: invalid diameter distribution %q", c.Name, c.DiameterDist)
	}
	return j, nil
}

// basis returns two unit vectors perpendicular to n and to each other.
func basis(n spray.Vec) (spray.Vec, spray.Vec) {
	a := spray.Vec{1, 0, 0}
	if math.Abs(n[0]) > 0.9 {
		a = spray.Vec{0, 1, 0}
	}
	t1 := a.Add(n.Scale(-floats.Dot(a[:], n[:])))
	t1 = t1.Scale(1 / t1.Norm())
	t2 := spray.Vec{
		n[1]*t1[2] - n[2]*t1[1],
		n[2]*t1[0] - n[0]*t1[2],
		n[0]*t1[1] - n[1]*t1[0],
	}
	return t1, t2
}

// Name implements spray.JetSource.
func (j *Cone) Name() string { return j.cfg.Name }

// Active implements spray.JetSource.
func (j *Cone) Active(t float64) bool {
	if t < j.cfg.StartTime {
		return false
	}
	return j.cfg.EndTime <= j.cfg.StartTime || t < j.cfg.EndTime
}

// MassFlowRate implements spray.JetSource.
func (j *Cone) MassFlowRate(t float64) float64 {
	if j.mdot != nil {
		return j.mdot.Predict(t)
	}
	return j.cfg.MassFlowRate
}

// Velocity implements spray.JetSource.
func (j *Cone) Velocity(float64) float64 { return j.cfg.Velocity }

// AvgDiameter implements spray.JetSource.
func (j *Cone) AvgDiameter() float64 { return j.cfg.AvgDiameter }

// AvgTemperature implements spray.JetSource.
func (j *Cone) AvgTemperature() float64 { return j.cfg.Temperature }

// AvgY implements spray.JetSource.
func (j *Cone) AvgY() []float64 { return j.cfg.Y }

// Diameter implements spray.JetSource.
func (j *Cone) Diameter() float64 { return j.cfg.Diameter }

// Hollow implements spray.JetSource.
func (j *Cone) Hollow() bool { return j.cfg.Hollow }

// Owner implements spray.JetSource.
func (j *Cone) Owner() int { return j.cfg.Owner }

// Sample implements spray.JetSource. The inclination from the nozzle
// normal grows linearly from zero at the center to half the spread angle
// at the nozzle edge, and the swirl angle rotates the velocity about the
// normal.
func (j *Cone) Sample(t, r, phi float64) (spray.Sample, bool) {
	const deg = math.Pi / 180
	R := j.cfg.Diameter / 2
	theta := j.cfg.SpreadAngle / 2 * deg * r / R
	swirl := j.cfg.SwirlAngle * deg

	er := j.t1.Scale(math.Cos(phi)).Add(j.t2.Scale(math.Sin(phi)))
	ephi := j.t1.Scale(-math.Sin(phi)).Add(j.t2.Scale(math.Cos(phi)))
	side := er.Scale(math.Cos(swirl)).Add(ephi.Scale(math.Sin(swirl)))
	dir := j.normal.Scale(math.Cos(theta)).Add(side.Scale(math.Sin(theta)))

	d := j.cfg.AvgDiameter
	if j.dia != nil {
		d = j.dia.Rand()
	}
	s := spray.Sample{
		Pos: spray.Vec(j.cfg.Center).Add(er.Scale(r)),
		Vel: dir.Scale(j.Velocity(t)),
		Dia: d,
		T:   j.cfg.Temperature,
		Y:   j.cfg.Y,
	}
	return s, d > 0
}
