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

	"github.com/pkg/errors"
)

// ParticleContainer is parcel storage distributed across the processes
// of a group. Each process stores parcels in per-unit tiles and only
// touches its own storage, except during Redistribute.
type ParticleContainer struct {
	Grid *BoxGrid

	bar   *barrier
	local []map[Unit][]Parcel

	mu    []sync.Mutex
	inbox [][]located

	lostMu sync.Mutex
	lost   int
}

type located struct {
	u Unit
	p Parcel
}

// NewParticleContainer returns empty storage for the processes of grid.
func NewParticleContainer(grid *BoxGrid) *ParticleContainer {
	n := grid.NumProcs
	pc := &ParticleContainer{
		Grid:  grid,
		bar:   newBarrier(n),
		local: make([]map[Unit][]Parcel, n),
		mu:    make([]sync.Mutex, n),
		inbox: make([][]located, n),
	}
	for i := range pc.local {
		pc.local[i] = make(map[Unit][]Parcel)
	}
	return pc
}

// View returns the Container for process rank.
func (pc *ParticleContainer) View(rank int) *View {
	return &View{pc: pc, rank: rank}
}

// Local returns a copy of the parcels stored by process rank, ordered by
// unit. It must not be called while the processes are running.
func (pc *ParticleContainer) Local(rank int) []Parcel {
	b := Batch(pc.local[rank])
	var o []Parcel
	for _, u := range b.units() {
		o = append(o, b[u]...)
	}
	return o
}

// Len returns the number of parcels stored across all processes. It
// must not be called while the processes are running.
func (pc *ParticleContainer) Len() int {
	n := 0
	for _, l := range pc.local {
		n += Batch(l).Len()
	}
	return n
}

// Lost returns the number of parcels that have been removed because
// they left the domain.
func (pc *ParticleContainer) Lost() int {
	pc.lostMu.Lock()
	defer pc.lostMu.Unlock()
	return pc.lost
}

// View is the Container of a single process.
type View struct {
	pc   *ParticleContainer
	rank int
}

// Locate implements Container.
func (v *View) Locate(pos Vec) (Unit, bool) { return v.pc.Grid.Locate(pos) }

// BulkAppend implements Container. The destination tile is grown by
// len(parcels) and the parcels are copied into the new space.
func (v *View) BulkAppend(u Unit, parcels []Parcel) {
	dst := v.pc.local[v.rank][u]
	old := len(dst)
	if cap(dst) < old+len(parcels) {
		grown := make([]Parcel, old, old+len(parcels))
		copy(grown, dst)
		dst = grown
	}
	dst = dst[:old+len(parcels)]
	copy(dst[old:], parcels)
	v.pc.local[v.rank][u] = dst
}

// NumParcels implements Container.
func (v *View) NumParcels(u Unit) int { return len(v.pc.local[v.rank][u]) }

// NumLocal returns the number of parcels stored by the process.
func (v *View) NumLocal() int { return Batch(v.pc.local[v.rank]).Len() }

// Redistribute implements Container. Every parcel is relocated from its
// current position and moved to the process owning its unit. Parcels
// that have left the domain are removed.
func (v *View) Redistribute(ctx context.Context) error {
	pc := v.pc
	if err := pc.bar.wait(ctx); err != nil {
		return errors.Wrap(err, "spray: redistribute")
	}
	keep := make(map[Unit][]Parcel)
	lost := 0
	for _, ps := range pc.local[v.rank] {
		for _, p := range ps {
			u, ok := pc.Grid.Locate(p.Pos)
			if !ok {
				lost++
				continue
			}
			owner := pc.Grid.Owner(u.Box)
			if owner == v.rank {
				keep[u] = append(keep[u], p)
				continue
			}
			pc.mu[owner].Lock()
			pc.inbox[owner] = append(pc.inbox[owner], located{u: u, p: p})
			pc.mu[owner].Unlock()
		}
	}
	pc.local[v.rank] = keep
	if lost > 0 {
		pc.lostMu.Lock()
		pc.lost += lost
		pc.lostMu.Unlock()
	}
	if err := pc.bar.wait(ctx); err != nil {
		return errors.Wrap(err, "spray: redistribute")
	}
	pc.mu[v.rank].Lock()
	for _, l := range pc.inbox[v.rank] {
		keep[l.u] = append(keep[l.u], l.p)
	}
	pc.inbox[v.rank] = nil
	pc.mu[v.rank].Unlock()
	return nil
}

// barrier blocks processes until all n of them have arrived.
type barrier struct {
	mu      sync.Mutex
	n, seen int
	release chan struct{}
}

func newBarrier(n int) *barrier {
	return &barrier{n: n, release: make(chan struct{})}
}

// wait blocks until all processes have called wait, or ctx is done.
func (b *barrier) wait(ctx context.Context) error {
	b.mu.Lock()
	ch := b.release
	b.seen++
	if b.seen == b.n {
		b.seen = 0
		b.release = make(chan struct{})
		close(ch)
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
