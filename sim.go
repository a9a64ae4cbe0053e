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
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sim holds the state of a simulation on one process.
type Sim struct {
	Proc Proc
	Geom Geometry

	Time float64 // current simulation time [s]
	Dt   float64 // time step [s]
	Step int     // number of completed steps

	// Done is set to true to stop the simulation.
	Done bool

	// InitFuncs are run once by Init; RunFuncs are run in order every
	// step until Done is true.
	InitFuncs []Manipulator
	RunFuncs  []Manipulator
}

// Manipulator is a function that operates on the simulation state.
type Manipulator func(ctx context.Context, s *Sim) error

// Init runs the initialization functions.
func (s *Sim) Init(ctx context.Context) error {
	for _, f := range s.InitFuncs {
		if err := f(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Run runs the simulation until it is done.
func (s *Sim) Run(ctx context.Context) error {
	for !s.Done {
		for _, f := range s.RunFuncs {
			if err := f(ctx, s); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetUniformLattice fills the domain with the lattice described by cfg.
func SetUniformLattice(in *Initializer, cfg LatticeConfig) Manipulator {
	return func(ctx context.Context, s *Sim) error {
		return in.UniformInit(ctx, s.Proc, s.Geom, cfg)
	}
}

// InjectJets injects parcels from each of the jets for the current
// time step. states holds the accumulator for each jet and must be the
// same length as jets. If reports is not nil, it is called with the
// result of every injection.
func InjectJets(inj *Injector, jets []JetSource, states []*JetState, reports func(jet int, r InjectionReport)) Manipulator {
	return func(ctx context.Context, s *Sim) error {
		for i, j := range jets {
			r, err := inj.Inject(s.Proc, s.Time, s.Dt, j, states[i])
			if err != nil {
				return err
			}
			if reports != nil && !r.Skipped {
				reports(i, r)
			}
		}
		return nil
	}
}

// RedistributeParcels moves parcels to the processes that own them.
func RedistributeParcels() Manipulator {
	return func(ctx context.Context, s *Sim) error {
		return s.Proc.Parcels().Redistribute(ctx)
	}
}

// AdvanceTime moves the simulation forward by one time step.
func AdvanceTime() Manipulator {
	return func(ctx context.Context, s *Sim) error {
		s.Time += s.Dt
		s.Step++
		return nil
	}
}

// RunSteps stops the simulation after n steps have completed.
func RunSteps(n int) Manipulator {
	return func(ctx context.Context, s *Sim) error {
		if s.Step >= n {
			s.Done = true
		}
		return nil
	}
}

// Log writes simulation status messages to l from the process with
// rank 0.
func Log(l logrus.FieldLogger) Manipulator {
	startTime := time.Now()
	stepTime := time.Now()
	return func(ctx context.Context, s *Sim) error {
		if s.Proc.Rank() != 0 {
			return nil
		}
		l.WithFields(logrus.Fields{
			"step":      s.Step,
			"time":      s.Time,
			"walltime":  time.Since(startTime).String(),
			"Δwalltime": time.Since(stepTime).String(),
		}).Info("completed step")
		stepTime = time.Now()
		return nil
	}
}
