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
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// LatticeConfig specifies a uniform lattice of identical parcels.
type LatticeConfig struct {
	// Extents is the number of parcels along each axis.
	Extents Extents

	Vel    Vec       // parcel velocity [m/s]
	Dia    float64   // droplet diameter [m]
	T      float64   // temperature [K]
	Y      []float64 // liquid species mass fractions
	NumPPP float64   // droplets per parcel

	// InitialBM2 is the initial value of the second breakup scalar.
	InitialBM2 float64

	// Rounds is the number of redistribution rounds. If it is not
	// positive, RoundCount is used.
	Rounds int
}

func (c *LatticeConfig) check() error {
	for i, n := range c.Extents {
		if n < 1 {
			return errors.Errorf("spray: lattice extent %d must be positive, got %d", i, n)
		}
	}
	if !(c.NumPPP > 0) {
		return errors.Errorf("spray: lattice parcels must represent a positive number of droplets, got %g", c.NumPPP)
	}
	if !(c.Dia > 0) {
		return errors.Errorf("spray: lattice droplet diameter must be positive, got %g", c.Dia)
	}
	if len(c.Y) == 0 {
		return errors.New("spray: lattice mass fractions are missing")
	}
	for i, y := range c.Y {
		if y < 0 {
			return errors.Errorf("spray: lattice mass fraction %d is negative (%g)", i, y)
		}
	}
	if sum := floats.Sum(c.Y); math.Abs(sum-1) > yTolerance {
		return errors.Errorf("spray: lattice mass fractions sum to %g", sum)
	}
	return nil
}

// InitPhase is a stage of uniform lattice initialization.
type InitPhase int

// Stages of uniform lattice initialization.
const (
	Seeding InitPhase = iota
	Rebalancing
	Final
	Done
)

func (p InitPhase) String() string {
	switch p {
	case Seeding:
		return "seeding"
	case Rebalancing:
		return "rebalancing"
	case Final:
		return "final"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("InitPhase(%d)", int(p))
	}
}

// Initializer fills the domain with a uniform lattice of parcels.
type Initializer struct {
	Log     logrus.FieldLogger
	Metrics *Metrics
}

func (in *Initializer) log() logrus.FieldLogger {
	if in.Log == nil {
		return logrus.StandardLogger()
	}
	return in.Log
}

// GenerateLocal returns the lattice parcels that process p is
// responsible for creating. The lattice is split into equal contiguous
// blocks of flat indices, one per process, and the last process takes
// any remainder. No communication is needed.
func GenerateLocal(p Proc, g Geometry, cfg LatticeConfig) []Parcel {
	var dx Vec
	for d := 0; d < 3; d++ {
		dx[d] = g.Length(d) / float64(cfg.Extents[d])
	}
	first, n := Partition(cfg.Extents.Len(), p.Size(), p.Rank())
	o := make([]Parcel, n)
	for i := range o {
		c := Unflatten(first+uint64(i), cfg.Extents)
		par := &o[i]
		for d := 0; d < 3; d++ {
			par.Pos[d] = g.Lo[d] + (float64(c[d])+0.5)*dx[d]
		}
		par.Vel = cfg.Vel
		par.Dia = cfg.Dia
		par.T = cfg.T
		par.Y = append([]float64(nil), cfg.Y...)
		par.BM2 = cfg.InitialBM2
		par.N0 = cfg.NumPPP
		par.N = cfg.NumPPP
		par.ID = p.NextID()
		par.CPU = p.Rank()
	}
	return o
}

// UniformInit creates the lattice described by cfg in domain g. It is
// collective: every process in the group must call it.
//
// Each process first creates its share of the lattice locally. To bound
// the number of parcels in transit, the processes are then split into
// contiguous chunks, and in each round only the members of one chunk
// insert their parcels before all processes redistribute. Processes
// beyond the last full chunk insert theirs in a final pass.
func (in *Initializer) UniformInit(ctx context.Context, p Proc, g Geometry, cfg LatticeConfig) error {
	if err := cfg.check(); err != nil {
		return err
	}
	rounds := cfg.Rounds
	if rounds <= 0 {
		rounds = RoundCount(p.Size())
	}
	staged := GenerateLocal(p, g, cfg)
	in.Metrics.observeLattice(len(staged))

	log := in.log().WithField("rank", p.Rank())
	c := p.Parcels()
	insert := func() error {
		a := NewAssigner(c)
		for _, par := range staged {
			if err := a.Add(par); err != nil {
				return errors.Wrap(err, "spray: uniform lattice")
			}
		}
		staged = nil
		a.Flush()
		return nil
	}

	chunks, leftover := RedistributionPlan(p.Size(), rounds)
	for r, chunk := range chunks {
		log.WithFields(logrus.Fields{
			"phase": Seeding,
			"round": r,
			"from":  chunk.Lo,
			"to":    chunk.Hi - 1,
		}).Debug("inserting lattice parcels")
		if chunk.Contains(p.Rank()) {
			if err := insert(); err != nil {
				return err
			}
		}
		log.WithFields(logrus.Fields{"phase": Rebalancing, "round": r}).Debug("redistributing lattice parcels")
		if err := c.Redistribute(ctx); err != nil {
			return err
		}
	}

	log.WithFields(logrus.Fields{
		"phase": Final,
		"round": rounds,
		"from":  leftover.Lo,
		"to":    leftover.Hi - 1,
	}).Debug("inserting remaining lattice parcels")
	if leftover.Contains(p.Rank()) {
		if err := insert(); err != nil {
			return err
		}
	}
	if err := c.Redistribute(ctx); err != nil {
		return err
	}
	log.WithField("phase", Done).Debug("lattice initialization complete")
	return nil
}
