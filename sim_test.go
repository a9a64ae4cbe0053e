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
	"sync"
	"testing"
)

func TestSim(t *testing.T) {
	const (
		nprocs = 2
		steps  = 10
		dt     = 0.01
		mdot   = 1.e-6
	)
	g := newTestGroup(t, nprocs)
	lattice := testLattice(Extents{4, 2, 2})
	lattice.Vel = Vec{}

	var mu sync.Mutex
	var reports []InjectionReport
	states := make([][]*JetState, nprocs)
	jets := make([][]JetSource, nprocs)
	for r := range states {
		j := newTestJet(1.e-9, mdot)
		j.owner = 1
		jets[r] = []JetSource{j}
		states[r] = []*JetState{NewJetState()}
	}

	err := g.Run(context.Background(), func(ctx context.Context, p *Process) error {
		inj := &Injector{Liquid: water(), Rand: NewRandSampler(uint64(p.Rank()))}
		s := &Sim{
			Proc: p,
			Geom: unitCube(),
			Dt:   dt,
			InitFuncs: []Manipulator{
				SetUniformLattice(&Initializer{}, lattice),
			},
			RunFuncs: []Manipulator{
				InjectJets(inj, jets[p.Rank()], states[p.Rank()], func(_ int, r InjectionReport) {
					mu.Lock()
					reports = append(reports, r)
					mu.Unlock()
				}),
				RedistributeParcels(),
				AdvanceTime(),
				RunSteps(steps),
			},
		}
		if err := s.Init(ctx); err != nil {
			return err
		}
		if err := s.Run(ctx); err != nil {
			return err
		}
		if s.Step != steps || different(s.Time, steps*dt, 1.e-12) {
			t.Errorf("rank %d: stopped at step %d, time %g", p.Rank(), s.Step, s.Time)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(reports) != steps {
		t.Errorf("have %d reports, want %d", len(reports), steps)
	}
	injected := 0
	for _, r := range reports {
		injected += r.Parcels
	}
	if n := g.Parcels.Len(); uint64(n) != lattice.Extents.Len()+uint64(injected) {
		t.Errorf("have %d parcels, want %d lattice and %d injected", n, lattice.Extents.Len(), injected)
	}
	if g.Parcels.Lost() != 0 {
		t.Errorf("%d parcels lost", g.Parcels.Lost())
	}

	s := states[1][0]
	if different(s.TotalMass+s.DeferredMass, mdot*steps*dt, 1.e-9) {
		t.Errorf("mass not conserved: %g injected + %g deferred != %g",
			s.TotalMass, s.DeferredMass, mdot*steps*dt)
	}
	if different(s.TotalTime+s.DeferredTime, steps*dt, 1.e-9) {
		t.Errorf("time not conserved: %g + %g", s.TotalTime, s.DeferredTime)
	}
	if *states[0][0] != *NewJetState() {
		t.Errorf("non-owning process changed its jet state: %+v", *states[0][0])
	}
}
