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

package sprayutil

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/spray"
	"github.com/spatialmodel/spray/science/jet/conejet"
	"golang.org/x/exp/rand"
)

// JetSummary describes the injection history of one jet.
type JetSummary struct {
	Name       string
	Owner      int
	Parcels    int
	Mass       float64 // injected mass [kg]
	Deferred   float64 // mass [kg] still waiting to be injected
	MassFlow   float64 // realized mass flow rate [kg/s]
	MinParcels float64
	NumPPP     float64
}

// Summary is the result of a run.
type Summary struct {
	RunID string
	Time  float64 // final simulation time [s]

	// Parcels is the number of parcels stored by each process.
	Parcels []int
	Lost    int

	Jets []JetSummary
}

// Print writes s to w as a table.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "run %s finished at t=%g s\n", s.RunID, s.Time)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "process\tparcels")
	for r, n := range s.Parcels {
		fmt.Fprintf(tw, "%d\t%d\n", r, n)
	}
	tw.Flush()
	if s.Lost > 0 {
		fmt.Fprintf(w, "%d parcels left the domain\n", s.Lost)
	}
	if len(s.Jets) == 0 {
		return
	}
	fmt.Fprintln(tw, "jet\towner\tparcels\tmass [kg]\tdeferred [kg]\tmass flow [kg/s]\tmin parcels\tdroplets/parcel")
	for _, j := range s.Jets {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%g\t%g\t%g\t%g\t%g\n",
			j.Name, j.Owner, j.Parcels, j.Mass, j.Deferred, j.MassFlow, j.MinParcels, j.NumPPP)
	}
	tw.Flush()
}

// Run carries out the simulation described by rc: the lattice, if any,
// is created first, and then rc.NumSteps injection steps are run. Each
// process runs in its own goroutine with its own jets and random number
// generators seeded from rc.Seed.
func Run(ctx context.Context, rc *RunConfig) (*Summary, error) {
	log := rc.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	grid, err := spray.NewBoxGrid(rc.Geom, rc.Boxes, rc.Tiles, rc.NumProcs)
	if err != nil {
		return nil, err
	}
	g := spray.NewProcessGroup(grid)

	reg := prometheus.NewRegistry()
	metrics, err := spray.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	states := make([][]*spray.JetState, rc.NumProcs)
	parcels := make([][]int, rc.NumProcs)
	times := make([]float64, rc.NumProcs)
	in := &spray.Initializer{Log: log, Metrics: metrics}

	err = g.Run(ctx, func(ctx context.Context, p *spray.Process) error {
		jets, err := newJets(rc.Jets, rc.Seed, p.Rank())
		if err != nil {
			return err
		}
		states[p.Rank()] = make([]*spray.JetState, len(jets))
		for i := range jets {
			states[p.Rank()][i] = spray.NewJetState()
		}
		parcels[p.Rank()] = make([]int, len(jets))
		inj := &spray.Injector{
			Liquid:        rc.Liquid,
			Rand:          spray.NewRandSampler(rc.Seed + uint64(p.Rank())),
			InitialBM2:    rc.InitialBM2,
			MaxRejections: rc.MaxRejections,
			Log:           log,
			Metrics:       metrics,
		}

		s := &spray.Sim{
			Proc: p,
			Geom: rc.Geom,
			Dt:   rc.Dt,
		}
		if rc.Lattice != nil {
			s.InitFuncs = append(s.InitFuncs, spray.SetUniformLattice(in, *rc.Lattice))
		}
		s.RunFuncs = []spray.Manipulator{spray.RunSteps(rc.NumSteps)}
		if rc.NumSteps > 0 {
			s.RunFuncs = []spray.Manipulator{
				spray.InjectJets(inj, jets, states[p.Rank()], func(i int, r spray.InjectionReport) {
					parcels[p.Rank()][i] += r.Parcels
				}),
				spray.RedistributeParcels(),
				spray.AdvanceTime(),
				spray.Log(log),
				spray.RunSteps(rc.NumSteps),
			}
		}
		if err := s.Init(ctx); err != nil {
			return err
		}
		if err := s.Run(ctx); err != nil {
			return err
		}
		times[p.Rank()] = s.Time
		return nil
	})
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		RunID:   rc.RunID,
		Time:    times[0],
		Parcels: make([]int, rc.NumProcs),
		Lost:    g.Parcels.Lost(),
	}
	for r := range sum.Parcels {
		sum.Parcels[r] = g.Process(r).View().NumLocal()
	}
	for i, c := range rc.Jets {
		st := states[c.Owner][i]
		sum.Jets = append(sum.Jets, JetSummary{
			Name:       c.Name,
			Owner:      c.Owner,
			Parcels:    parcels[c.Owner][i],
			Mass:       st.TotalMass,
			Deferred:   st.DeferredMass,
			MassFlow:   st.MassFlowRate(),
			MinParcels: st.MinParcels,
			NumPPP:     st.NumPPP,
		})
	}
	log.WithFields(logrus.Fields{
		"parcels": g.Parcels.Len(),
		"lost":    sum.Lost,
	}).Info("run complete")

	if rc.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(rc.MetricsFile, reg); err != nil {
			return sum, fmt.Errorf("spray: writing metrics: %v", err)
		}
	}
	return sum, nil
}

// newJets creates the jets for process rank. Every process has its own
// jets so that droplet size sampling is process-local.
func newJets(cfgs []conejet.Config, seed uint64, rank int) ([]spray.JetSource, error) {
	jets := make([]spray.JetSource, len(cfgs))
	for i, c := range cfgs {
		src := rand.NewSource(seed + uint64(rank)*uint64(len(cfgs)+1) + uint64(i) + 1)
		j, err := conejet.New(c, src)
		if err != nil {
			return nil, err
		}
		jets[i] = j
	}
	return jets, nil
}
