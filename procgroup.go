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

	"golang.org/x/sync/errgroup"
)

// Process is one member of a ProcessGroup. It implements Proc.
type Process struct {
	rank   int
	size   int
	view   *View
	nextID int64
}

// Rank implements Proc.
func (p *Process) Rank() int { return p.rank }

// Size implements Proc.
func (p *Process) Size() int { return p.size }

// Parcels implements Proc.
func (p *Process) Parcels() Container { return p.view }

// View returns the process's parcel storage.
func (p *Process) View() *View { return p.view }

// NextID implements Proc.
func (p *Process) NextID() int64 {
	p.nextID++
	return p.nextID
}

// ProcessGroup is a set of processes that share distributed parcel
// storage. Each process runs in its own goroutine and only communicates
// with the others through the storage's collective operations.
type ProcessGroup struct {
	Parcels *ParticleContainer
	procs   []*Process
}

// NewProcessGroup creates one process for each process in grid.
func NewProcessGroup(grid *BoxGrid) *ProcessGroup {
	g := &ProcessGroup{
		Parcels: NewParticleContainer(grid),
		procs:   make([]*Process, grid.NumProcs),
	}
	for i := range g.procs {
		g.procs[i] = &Process{rank: i, size: grid.NumProcs, view: g.Parcels.View(i)}
	}
	return g
}

// Size returns the number of processes in the group.
func (g *ProcessGroup) Size() int { return len(g.procs) }

// Process returns the process with the given rank.
func (g *ProcessGroup) Process(rank int) *Process { return g.procs[rank] }

// Run calls f concurrently once for every process and waits for all of
// them to return. If any call returns an error, the context passed to
// the others is canceled so that processes waiting in collective
// operations are released, and the first error is returned. A group
// whose Run has failed must not be used again.
func (g *ProcessGroup) Run(ctx context.Context, f func(ctx context.Context, p *Process) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, p := range g.procs {
		p := p
		eg.Go(func() error { return f(ctx, p) })
	}
	return eg.Wait()
}
