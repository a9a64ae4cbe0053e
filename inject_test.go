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
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestInject_calibration(t *testing.T) {
	const (
		avgMass = 0.2
		mdot    = 1.
		dt      = 1.
	)
	g := newTestGroup(t, 1)
	p := g.Process(0)
	jet := newTestJet(avgMass, mdot)
	inj := &Injector{Liquid: water(), Rand: &FixedSampler{}}
	s := NewJetState()

	r, err := inj.Inject(p, 0, dt, jet, s)
	if err != nil {
		t.Fatal(err)
	}
	target := 5 * avgMass
	if different(r.Target, target, 1e-12) {
		t.Errorf("target: have %g, want %g", r.Target, target)
	}
	if different(s.NumPPP, target/avgMass, 1e-9) {
		t.Errorf("NumPPP: have %g, want %g", s.NumPPP, target/avgMass)
	}
	// Each parcel represents NumPPP droplets, so the first parcel alone
	// carries the whole target mass.
	if r.Parcels != 1 {
		t.Errorf("parcels: have %d, want 1", r.Parcels)
	}
	if different(r.Mass, target, 1e-9) {
		t.Errorf("mass: have %g, want %g", r.Mass, target)
	}
	if different(s.TotalMass, target, 1e-9) || s.TotalTime != dt {
		t.Errorf("totals: have %g kg over %g s", s.TotalMass, s.TotalTime)
	}
	if s.MinParcels != DefaultMinParcels {
		t.Errorf("MinParcels changed to %g", s.MinParcels)
	}

	// The calibration is fixed from then on.
	numPPP := s.NumPPP
	if _, err := inj.Inject(p, 1, 2*dt, jet, s); err != nil {
		t.Fatal(err)
	}
	if s.NumPPP != numPPP {
		t.Errorf("NumPPP changed from %g to %g", numPPP, s.NumPPP)
	}
}

func TestInject_fiveParcels(t *testing.T) {
	const avgMass = 0.2
	g := newTestGroup(t, 1)
	p := g.Process(0)
	jet := newTestJet(avgMass, 1)
	inj := &Injector{Liquid: water(), Rand: &FixedSampler{}}
	s := NewJetState()
	s.NumPPP = 1

	r, err := inj.Inject(p, 0, 1, jet, s)
	if err != nil {
		t.Fatal(err)
	}
	if r.Parcels != 5 {
		t.Errorf("parcels: have %d, want 5", r.Parcels)
	}
	if different(s.TotalMass, 5*avgMass, 1e-9) {
		t.Errorf("mass: have %g, want %g", s.TotalMass, 5*avgMass)
	}
	if n := g.Parcels.Len(); n != 5 {
		t.Errorf("stored parcels: have %d, want 5", n)
	}
	if s.MinParcels != DefaultMinParcels {
		t.Errorf("MinParcels changed to %g", s.MinParcels)
	}
}

func TestInject_overInjection(t *testing.T) {
	const avgMass = 0.2
	for _, test := range []struct {
		name       string
		diaScale   float64
		minParcels float64
	}{
		{name: "over", diaScale: 1.2, minParcels: 2},    // 1.728 × target
		{name: "within", diaScale: 1.1, minParcels: 1}, // 1.331 × target
	} {
		t.Run(test.name, func(t *testing.T) {
			g := newTestGroup(t, 1)
			jet := newTestJet(avgMass, avgMass)
			jet.avgDia = jet.dia
			jet.dia *= test.diaScale
			inj := &Injector{Liquid: water(), Rand: &FixedSampler{}}
			s := NewJetState()
			s.NumPPP = 1

			r, err := inj.Inject(g.Process(0), 0, 1, jet, s)
			if err != nil {
				t.Fatal(err)
			}
			if r.Parcels != 1 {
				t.Errorf("parcels: have %d, want 1", r.Parcels)
			}
			if s.MinParcels != test.minParcels {
				t.Errorf("MinParcels: have %g, want %g", s.MinParcels, test.minParcels)
			}
			m := dropletMass(1000, jet.dia)
			want := JetState{MinParcels: test.minParcels, TotalMass: m, TotalTime: 1, NumPPP: 1}
			if different(s.TotalMass, m, 1e-12) {
				t.Errorf("TotalMass: have %g, want %g", s.TotalMass, m)
			}
			s.TotalMass = m
			if !reflect.DeepEqual(*s, want) {
				t.Errorf("state: have %+v, want %+v", *s, want)
			}
		})
	}
}

func TestInject_deferral(t *testing.T) {
	const avgMass = 0.2
	g := newTestGroup(t, 1)
	p := g.Process(0)
	jet := newTestJet(avgMass, avgMass)
	inj := &Injector{Liquid: water(), Rand: &FixedSampler{}}
	s := NewJetState()
	s.NumPPP = 1
	s.MinParcels = 3

	r, err := inj.Inject(p, 0, 1, jet, s)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Deferred || r.Parcels != 0 {
		t.Fatalf("first step should be deferred: %+v", r)
	}
	if s.DeferredMass != r.Target || s.DeferredTime != r.EffectiveDt {
		t.Errorf("deferred %g kg over %g s; want %g kg over %g s",
			s.DeferredMass, s.DeferredTime, r.Target, r.EffectiveDt)
	}
	if s.DeferredMass != jet.mdot*1 || s.DeferredTime != 1 {
		t.Errorf("deferred %g kg over %g s", s.DeferredMass, s.DeferredTime)
	}
	if g.Parcels.Len() != 0 {
		t.Errorf("parcels were created")
	}

	// An empty step changes nothing.
	before := *s
	for i := 0; i < 3; i++ {
		if _, err := inj.Inject(p, 1, 0, jet, s); err != nil {
			t.Fatal(err)
		}
	}
	if !reflect.DeepEqual(before, *s) {
		t.Errorf("empty step changed state from %+v to %+v", before, *s)
	}

	r, err = inj.Inject(p, 1, 1, jet, s)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Deferred || different(s.DeferredMass, 2*avgMass, 1e-12) || s.DeferredTime != 2 {
		t.Errorf("second step: %+v, state %+v", r, *s)
	}

	r, err = inj.Inject(p, 2, 1, jet, s)
	if err != nil {
		t.Fatal(err)
	}
	if r.Deferred || r.Parcels != 3 {
		t.Fatalf("third step should inject 3 parcels: %+v", r)
	}
	if r.EffectiveDt != 3 {
		t.Errorf("effective dt: have %g, want 3", r.EffectiveDt)
	}
	if s.DeferredMass != 0 || s.DeferredTime != 0 {
		t.Errorf("deferred fields not reset: %+v", *s)
	}
	if different(s.TotalMass, 3*avgMass, 1e-9) || s.TotalTime != 3 {
		t.Errorf("totals: %g kg over %g s", s.TotalMass, s.TotalTime)
	}
	if s.MinParcels != 3 {
		t.Errorf("MinParcels: have %g, want 3", s.MinParcels)
	}
}

func TestInject_ownerIsolation(t *testing.T) {
	g := newTestGroup(t, 2)
	p := g.Process(0)
	inj := &Injector{Liquid: water(), Rand: NewRandSampler(1)}
	for _, dt := range []float64{-1, 0, 0.5, 1, 100} {
		for _, numPPP := range []float64{0, 1, 1000} {
			jet := newTestJet(0.2, 1)
			jet.owner = 1
			s := NewJetState()
			s.NumPPP = numPPP
			s.DeferredMass = 0.1
			s.DeferredTime = 0.3
			before := *s
			r, err := inj.Inject(p, 0, dt, jet, s)
			if err != nil {
				t.Fatal(err)
			}
			if !r.Skipped || r.Parcels != 0 {
				t.Errorf("dt=%g: non-owner injected: %+v", dt, r)
			}
			if !reflect.DeepEqual(before, *s) {
				t.Errorf("dt=%g: non-owner changed state from %+v to %+v", dt, before, *s)
			}
			if jet.samples != 0 {
				t.Errorf("dt=%g: non-owner sampled the jet", dt)
			}
		}
	}
	if g.Parcels.Len() != 0 {
		t.Errorf("parcels were created")
	}
}

// reversedJet is a jet whose characteristic velocity is negative.
type reversedJet struct{ *testJet }

func (reversedJet) Velocity(float64) float64 { return -1 }

func TestInject_skipped(t *testing.T) {
	for _, test := range []struct {
		name string
		jet  func(*testJet) JetSource
		dt   float64
	}{
		{
			name: "inactive",
			jet:  func(j *testJet) JetSource { j.inactive = true; return j },
			dt:   1,
		},
		{
			name: "negative velocity",
			jet:  func(j *testJet) JetSource { return reversedJet{j} },
			dt:   1,
		},
		{
			name: "negative dt",
			jet:  func(j *testJet) JetSource { return j },
			dt:   -1,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			g := newTestGroup(t, 1)
			inj := &Injector{Liquid: water(), Rand: &FixedSampler{}}
			tj := newTestJet(0.2, 1)
			s := NewJetState()
			r, err := inj.Inject(g.Process(0), 0, test.dt, test.jet(tj), s)
			if err != nil {
				t.Fatal(err)
			}
			if !r.Skipped {
				t.Errorf("report not skipped: %+v", r)
			}
			if r.Parcels != 0 {
				t.Errorf("parcels: have %d, want 0", r.Parcels)
			}
			if tj.samples != 0 {
				t.Errorf("jet sampled %d times", tj.samples)
			}
			if n := g.Parcels.Len(); n != 0 {
				t.Errorf("stored parcels: have %d, want 0", n)
			}
			if !reflect.DeepEqual(*s, *NewJetState()) {
				t.Errorf("state changed: %+v", *s)
			}
		})
	}
}

func TestInject_massBound(t *testing.T) {
	g := newTestGroup(t, 1)
	p := g.Process(0)
	const avgMass = 1.e-9
	jet := newTestJet(avgMass, 1.e-6)
	jet.avgDia = jet.dia
	base := jet.dia
	for i := 0; i < 10; i++ {
		jet.dias = append(jet.dias, base*(0.6+0.1*float64(i)))
	}
	// Some samples are too small to accept.
	jet.dias = append(jet.dias, 1.e-12)
	inj := &Injector{Liquid: water(), Rand: NewRandSampler(42)}
	s := NewJetState()
	s.NumPPP = 3

	minDia := MinDiameter(DefaultMassFloor, 1000)
	ids := make(map[int64]bool)
	for step := 0; step < 20; step++ {
		n0 := g.Parcels.Len()
		r, err := inj.Inject(p, float64(step)*1.e-3, 1.e-3, jet, s)
		if err != nil {
			t.Fatal(err)
		}
		if r.Deferred {
			continue
		}
		local := g.Parcels.Local(0)
		if len(local)-n0 != r.Parcels {
			t.Errorf("step %d: %d parcels reported, %d stored", step, r.Parcels, len(local)-n0)
		}
		var sum, maxMass float64
		for _, par := range local {
			if ids[par.ID] {
				continue
			}
			ids[par.ID] = true
			if err := par.Check(minDia); err != nil {
				t.Error(err)
			}
			if par.CPU != 0 {
				t.Errorf("parcel CPU: have %d, want 0", par.CPU)
			}
			m := s.NumPPP * par.Mass(1000)
			sum += m
			if m > maxMass {
				maxMass = m
			}
		}
		if different(sum, r.Mass, 1e-9) {
			t.Errorf("step %d: parcel mass %g != reported mass %g", step, sum, r.Mass)
		}
		if r.Mass < r.Target*(1-1e-12) {
			t.Errorf("step %d: injected %g < target %g", step, r.Mass, r.Target)
		}
		if r.Mass-r.Target >= maxMass {
			t.Errorf("step %d: overshoot %g is at least one parcel (%g)", step, r.Mass-r.Target, maxMass)
		}
	}
	if len(ids) != g.Parcels.Len() {
		t.Errorf("parcel ids are not unique: %d ids for %d parcels", len(ids), g.Parcels.Len())
	}
}

func TestInject_infeasible(t *testing.T) {
	g := newTestGroup(t, 1)
	jet := newTestJet(1.e-25, 1)
	inj := &Injector{Liquid: water(), Rand: &FixedSampler{}}
	s := NewJetState()
	_, err := inj.Inject(g.Process(0), 0, 1, jet, s)
	if errors.Cause(err) != ErrInfeasibleDroplet {
		t.Errorf("have error %v, want %v", err, ErrInfeasibleDroplet)
	}
	if !reflect.DeepEqual(*s, *NewJetState()) {
		t.Errorf("state changed: %+v", *s)
	}
}

func TestInject_outsideDomain(t *testing.T) {
	g := newTestGroup(t, 1)
	jet := newTestJet(0.2, 1)
	jet.center = Vec{2, 0.5, 0.5}
	inj := &Injector{Liquid: water(), Rand: &FixedSampler{}}
	_, err := inj.Inject(g.Process(0), 0, 1, jet, NewJetState())
	if errors.Cause(err) != ErrOutsideDomain {
		t.Errorf("have error %v, want %v", err, ErrOutsideDomain)
	}
	if g.Parcels.Len() != 0 {
		t.Errorf("parcels were stored")
	}
}
