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
	"golang.org/x/exp/slices"
)

// ErrOutsideDomain is returned when a parcel cannot be located within
// the distributed domain.
var ErrOutsideDomain = errors.New("spray: parcel outside of domain")

// Batch holds newly created parcels grouped by destination unit.
type Batch map[Unit][]Parcel

// Len returns the total number of parcels in b.
func (b Batch) Len() int {
	n := 0
	for _, ps := range b {
		n += len(ps)
	}
	return n
}

// units returns the keys of b in ascending order.
func (b Batch) units() []Unit {
	u := make([]Unit, 0, len(b))
	for k := range b {
		u = append(u, k)
	}
	slices.SortFunc(u, Unit.less)
	return u
}

// Assigner resolves the owning unit of new parcels and buffers them
// for bulk insertion into a Container.
type Assigner struct {
	c     Container
	batch Batch
}

// NewAssigner returns an Assigner that inserts parcels into c.
func NewAssigner(c Container) *Assigner {
	return &Assigner{c: c, batch: make(Batch)}
}

// Add buffers p for insertion. It returns ErrOutsideDomain if p is not
// within the domain, which indicates a geometry error.
func (a *Assigner) Add(p Parcel) error {
	u, ok := a.c.Locate(p.Pos)
	if !ok {
		return errors.Wrapf(ErrOutsideDomain, "parcel %d from process %d at %v", p.ID, p.CPU, p.Pos)
	}
	a.batch[u] = append(a.batch[u], p)
	return nil
}

// Len returns the number of buffered parcels.
func (a *Assigner) Len() int { return a.batch.Len() }

// Flush appends each unit's buffered parcels to the container with a
// single bulk operation and empties the buffer. It returns the number
// of parcels inserted.
func (a *Assigner) Flush() int {
	n := 0
	for _, u := range a.batch.units() {
		ps := a.batch[u]
		a.c.BulkAppend(u, ps)
		n += len(ps)
	}
	a.batch = make(Batch)
	return n
}
