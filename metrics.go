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

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds prometheus collectors for injection and initialization.
// A nil *Metrics records nothing.
type Metrics struct {
	Parcels       *prometheus.CounterVec
	Mass          *prometheus.CounterVec
	DeferredSteps *prometheus.CounterVec
	DeferredMass  *prometheus.GaugeVec
	LatticeParcel prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Parcels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spray",
			Name:      "injected_parcels_total",
			Help:      "Number of parcels injected by each jet.",
		}, []string{"jet"}),
		Mass: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spray",
			Name:      "injected_mass_kg_total",
			Help:      "Liquid mass injected by each jet.",
		}, []string{"jet"}),
		DeferredSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spray",
			Name:      "deferred_steps_total",
			Help:      "Number of steps in which a jet deferred its mass.",
		}, []string{"jet"}),
		DeferredMass: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "spray",
			Name:      "deferred_mass_kg",
			Help:      "Mass currently deferred by each jet.",
		}, []string{"jet"}),
		LatticeParcel: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spray",
			Name:      "lattice_parcels_total",
			Help:      "Number of parcels created by uniform lattice initialization.",
		}),
	}
	for _, c := range []prometheus.Collector{m.Parcels, m.Mass, m.DeferredSteps, m.DeferredMass, m.LatticeParcel} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(jet string, r InjectionReport) {
	if m == nil {
		return
	}
	if r.Deferred {
		m.DeferredSteps.WithLabelValues(jet).Inc()
		m.DeferredMass.WithLabelValues(jet).Set(r.Target)
		return
	}
	m.Parcels.WithLabelValues(jet).Add(float64(r.Parcels))
	m.Mass.WithLabelValues(jet).Add(r.Mass)
	m.DeferredMass.WithLabelValues(jet).Set(0)
}

func (m *Metrics) observeLattice(n int) {
	if m == nil {
		return
	}
	m.LatticeParcel.Add(float64(n))
}
