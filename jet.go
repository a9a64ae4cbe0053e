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

// JetSource describes one injection nozzle. Implementations are expected
// to be immutable during a time step; the mutable accumulator for a jet
// is kept in a JetState.
type JetSource interface {
	// Name identifies the jet in logs and metrics.
	Name() string

	// Active reports whether the jet injects at time t.
	Active(t float64) bool

	// MassFlowRate returns the liquid mass flow rate [kg/s] at time t.
	MassFlowRate(t float64) float64

	// Velocity returns the characteristic injection velocity [m/s] at
	// time t.
	Velocity(t float64) float64

	// AvgDiameter returns the average droplet diameter [m].
	AvgDiameter() float64

	// AvgTemperature returns the average droplet temperature [K].
	AvgTemperature() float64

	// AvgY returns the average liquid species mass fractions.
	AvgY() []float64

	// Diameter returns the nozzle diameter [m].
	Diameter() float64

	// Hollow reports whether droplets are only injected at the
	// nozzle edge.
	Hollow() bool

	// Owner returns the rank of the process that injects for this jet.
	Owner() int

	// Sample returns the state of a new droplet leaving the nozzle at
	// radial location r [m] and azimuthal angle phi [rad] at time t.
	// ok is false if the source rejects the location.
	Sample(t, r, phi float64) (s Sample, ok bool)
}

// Sample is the physical state of a newly sampled droplet.
type Sample struct {
	Pos, Vel Vec
	Dia, T   float64
	Y        []float64
}

// DefaultMinParcels is the initial minimum number of parcels injected in
// a step.
const DefaultMinParcels = 1.

// JetState is the mass accumulator for a single jet. It must only be
// modified by the jet's owning process.
type JetState struct {
	// DeferredMass [kg] and DeferredTime [s] hold mass that has not
	// been injected yet because it was not enough to create
	// MinParcels parcels.
	DeferredMass, DeferredTime float64

	// MinParcels is the minimum number of parcels to inject at once.
	// It is increased when a step injects too much mass.
	MinParcels float64

	// TotalMass [kg] and TotalTime [s] are the cumulative injected
	// mass and injection time.
	TotalMass, TotalTime float64

	// NumPPP is the number of droplets per parcel. It is set on the
	// first injection and never changed afterwards; values <= 0 mean it
	// has not been set yet.
	NumPPP float64
}

// NewJetState returns an empty JetState.
func NewJetState() *JetState {
	return &JetState{MinParcels: DefaultMinParcels}
}

// deferMass stores uninjected mass and time to be added to a later step.
func (s *JetState) deferMass(mass, dt float64) {
	s.DeferredMass = mass
	s.DeferredTime = dt
}

// resetDeferred clears any uninjected mass.
func (s *JetState) resetDeferred() {
	s.DeferredMass = 0
	s.DeferredTime = 0
}

// MassFlowRate returns the mean mass flow rate [kg/s] the jet has
// realized so far.
func (s *JetState) MassFlowRate() float64 {
	if s.TotalTime <= 0 {
		return 0
	}
	return s.TotalMass / s.TotalTime
}
