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

import "context"

// Unit identifies a tile within a box (subdomain) of the distributed
// parcel storage.
type Unit struct {
	Box, Tile int
}

func (u Unit) less(o Unit) bool {
	if u.Box != o.Box {
		return u.Box < o.Box
	}
	return u.Tile < o.Tile
}

// Container is the view one process has of distributed parcel storage.
type Container interface {
	// Locate returns the unit whose region contains pos, or false if pos
	// is outside of the domain.
	Locate(pos Vec) (Unit, bool)

	// BulkAppend appends parcels to the local storage for unit u.
	BulkAppend(u Unit, parcels []Parcel)

	// Redistribute moves every parcel to the process that owns the unit
	// containing it. It is collective: every process must call it.
	Redistribute(ctx context.Context) error

	// NumParcels returns the number of parcels stored locally for u.
	NumParcels(u Unit) int
}

// Proc is a single process within a group of processes.
type Proc interface {
	// Rank is the index of the process in the group.
	Rank() int

	// Size is the number of processes in the group.
	Size() int

	// Parcels returns the process's view of the parcel storage.
	Parcels() Container

	// NextID returns a new parcel identifier that is unique within
	// the process.
	NextID() int64
}
