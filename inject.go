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
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrInfeasibleDroplet is returned when a jet's average droplet is too
// small to be represented.
var ErrInfeasibleDroplet = errors.New("spray: average droplet size too small, floating point issues expected")

// overInjectionLimit is the fraction by which the realized mass flow rate
// may exceed the requested rate before the minimum number of parcels per
// step is increased.
const overInjectionLimit = 0.5

// massTolerance is the relative amount by which a mass may fall short of
// a target and still be considered to have reached it.
const massTolerance = 1.e-12

// below reports whether a is less than b by more than massTolerance.
func below(a, b float64) bool { return a < b*(1-massTolerance) }

// Injector adds parcels from jets to the distributed parcel storage.
type Injector struct {
	Liquid LiquidModel

	// Rand is the process-local source of random numbers.
	Rand Sampler

	// InitialBM2 is the initial value of the second breakup scalar
	// of new parcels.
	InitialBM2 float64

	// MaxRejections is passed on to the ParcelFactory.
	MaxRejections int

	Log     logrus.FieldLogger
	Metrics *Metrics
}

// InjectionReport summarizes the result of one call to Inject.
type InjectionReport struct {
	Parcels     int     // number of parcels created
	Mass        float64 // injected mass [kg]
	Target      float64 // mass that should have been injected [kg]
	EffectiveDt float64 // time span [s] the injected mass represents

	// Deferred is true if the mass was carried over to a later step.
	Deferred bool

	// Skipped is true if nothing was done, because the jet was inactive,
	// the time step was empty or the process does not own the jet.
	Skipped bool
}

func (inj *Injector) log() logrus.FieldLogger {
	if inj.Log == nil {
		return logrus.StandardLogger()
	}
	return inj.Log
}

// Inject injects the mass that jet has released between times t and
// t+dt into p's parcel storage, updating the jet's accumulator s.
// Only the process that owns the jet does anything; all other processes
// return immediately without modifying s.
//
// If the mass available is not enough to create s.MinParcels parcels,
// it is stored in s and added to the next step. Errors are only returned
// for conditions that make the simulation invalid.
func (inj *Injector) Inject(p Proc, t, dt float64, jet JetSource, s *JetState) (InjectionReport, error) {
	if !jet.Active(t) || dt <= 0 || jet.Velocity(t) < 0 || p.Rank() != jet.Owner() {
		return InjectionReport{Skipped: true}, nil
	}

	rhoAvg := MixtureDensity(inj.Liquid, jet.AvgTemperature(), jet.AvgY())
	avgDia := jet.AvgDiameter()
	avgMass, err := averageDropletMass(rhoAvg, avgDia)
	if err != nil {
		return InjectionReport{}, err
	}
	massFloor := inj.Liquid.MassFloor()
	minDia := MinDiameter(massFloor, rhoAvg)
	if avgDia < minDia || avgMass < massFloor {
		return InjectionReport{}, errors.Wrapf(ErrInfeasibleDroplet,
			"jet %s: diameter %g (minimum %g), mass %g (minimum %g)",
			jet.Name(), avgDia, minDia, avgMass, massFloor)
	}

	mdot := jet.MassFlowRate(t)
	r := InjectionReport{
		Target:      mdot * dt,
		EffectiveDt: dt,
	}
	if s.DeferredMass > 0 {
		r.Target += s.DeferredMass
		r.EffectiveDt += s.DeferredTime
	}
	if r.Target <= 0 {
		return r, nil
	}
	if s.NumPPP <= 0 {
		s.NumPPP = r.Target / avgMass
	}

	log := inj.log().WithFields(logrus.Fields{
		"jet":  jet.Name(),
		"rank": p.Rank(),
		"time": t,
	})

	if below(r.Target/(s.NumPPP*avgMass), s.MinParcels) {
		s.deferMass(r.Target, r.EffectiveDt)
		r.Deferred = true
		log.WithField("deferred_mass", r.Target).Debug("not enough mass for minimum parcel count; deferring")
		inj.Metrics.observe(jet.Name(), r)
		return r, nil
	}

	f := &ParcelFactory{
		Jet:           jet,
		Liquid:        inj.Liquid,
		Rand:          inj.Rand,
		MinDia:        minDia,
		NumPPP:        s.NumPPP,
		InitialBM2:    inj.InitialBM2,
		MaxRejections: inj.MaxRejections,
	}
	a := NewAssigner(p.Parcels())
	for below(r.Mass, r.Target) {
		par, m, err := f.Next(t)
		if err != nil {
			return r, err
		}
		// Place the parcel as if it had been injected at a random
		// time within the step.
		par.Pos = par.Pos.Add(par.Vel.Scale(inj.Rand.Float64() * r.EffectiveDt))
		par.ID = p.NextID()
		par.CPU = p.Rank()
		if err := a.Add(par); err != nil {
			return r, errors.Wrapf(err, "jet %s", jet.Name())
		}
		r.Mass += s.NumPPP * m
	}

	if r.Mass/r.EffectiveDt-mdot > overInjectionLimit*mdot {
		s.MinParcels++
		log.WithField("min_parcels", s.MinParcels).Debug("over-injecting; increasing minimum parcel count")
	}
	s.TotalMass += r.Mass
	s.TotalTime += r.EffectiveDt
	r.Parcels = a.Flush()
	s.resetDeferred()

	log.WithFields(logrus.Fields{
		"parcels": r.Parcels,
		"mass":    r.Mass,
	}).Debug("injected parcels")
	inj.Metrics.observe(jet.Name(), r)
	return r, nil
}
