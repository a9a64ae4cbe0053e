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
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/pkg/errors"
)

// Geometry is the rectangular physical domain [Lo, Hi).
type Geometry struct {
	Lo, Hi Vec
}

// Length returns the domain length along axis dir.
func (g Geometry) Length(dir int) float64 { return g.Hi[dir] - g.Lo[dir] }

// Contains reports whether p is within the domain.
func (g Geometry) Contains(p Vec) bool {
	for i := 0; i < 3; i++ {
		if p[i] < g.Lo[i] || p[i] >= g.Hi[i] {
			return false
		}
	}
	return true
}

// box is one subdomain of a BoxGrid. The embedded polygon is the
// horizontal footprint of the box.
type box struct {
	geom.Polygon
	id     int
	lo, hi Vec
}

func newBox(id int, lo, hi Vec) *box {
	return &box{
		Polygon: geom.Polygon{{
			{X: lo[0], Y: lo[1]},
			{X: hi[0], Y: lo[1]},
			{X: hi[0], Y: hi[1]},
			{X: lo[0], Y: hi[1]},
		}},
		id: id,
		lo: lo,
		hi: hi,
	}
}

// Bounds returns the horizontal footprint of the box, which is what the
// spatial index is built on.
func (b *box) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: b.lo[0], Y: b.lo[1]},
		Max: geom.Point{X: b.hi[0], Y: b.hi[1]},
	}
}

func (b *box) contains(p Vec) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.lo[i] || p[i] >= b.hi[i] {
			return false
		}
	}
	return true
}

// BoxGrid decomposes a Geometry into boxes, each of which is divided into
// tiles, and assigns the boxes to processes.
type BoxGrid struct {
	Geom     Geometry
	Boxes    Extents // number of boxes along each axis
	Tiles    Extents // number of tiles per box along each axis
	NumProcs int

	boxes []*box
	owner []int
	index *rtree.Rtree
}

// NewBoxGrid creates a decomposition of g into boxes, with each box
// divided into tiles, distributed across nprocs processes. Boxes are
// assigned to processes in contiguous blocks.
func NewBoxGrid(g Geometry, boxes, tiles Extents, nprocs int) (*BoxGrid, error) {
	for i := 0; i < 3; i++ {
		if !(g.Hi[i] > g.Lo[i]) {
			return nil, errors.Errorf("spray: empty domain along axis %d: [%g, %g)", i, g.Lo[i], g.Hi[i])
		}
		if boxes[i] < 1 || tiles[i] < 1 {
			return nil, errors.Errorf("spray: box and tile counts must be positive; got %v and %v", boxes, tiles)
		}
	}
	if nprocs < 1 {
		return nil, errors.Errorf("spray: invalid number of processes %d", nprocs)
	}
	bg := &BoxGrid{
		Geom:     g,
		Boxes:    boxes,
		Tiles:    tiles,
		NumProcs: nprocs,
		boxes:    make([]*box, boxes.Len()),
		owner:    make([]int, boxes.Len()),
		index:    rtree.NewTree(25, 50),
	}
	for i := range bg.boxes {
		c := Unflatten(uint64(i), boxes)
		var lo, hi Vec
		for d := 0; d < 3; d++ {
			lo[d], hi[d] = split(g.Lo[d], g.Hi[d], boxes[d], c[d])
		}
		b := newBox(i, lo, hi)
		bg.boxes[i] = b
		bg.index.Insert(b)
	}
	for r := 0; r < nprocs; r++ {
		first, n := Partition(uint64(len(bg.boxes)), nprocs, r)
		for i := first; i < first+n; i++ {
			bg.owner[i] = r
		}
	}
	return bg, nil
}

// split returns the bounds of segment i when [lo, hi) is divided into n
// equal segments. The last segment ends exactly at hi.
func split(lo, hi float64, n, i int) (float64, float64) {
	d := (hi - lo) / float64(n)
	l := lo + float64(i)*d
	if i == n-1 {
		return l, hi
	}
	return l, lo + float64(i+1)*d
}

// NumBoxes returns the total number of boxes.
func (bg *BoxGrid) NumBoxes() int { return len(bg.boxes) }

// Owner returns the rank of the process that owns box b.
func (bg *BoxGrid) Owner(b int) int { return bg.owner[b] }

// Locate returns the tile containing p.
func (bg *BoxGrid) Locate(p Vec) (Unit, bool) {
	if !bg.Geom.Contains(p) {
		return Unit{}, false
	}
	for _, s := range bg.index.SearchIntersect(geom.Point{X: p[0], Y: p[1]}.Bounds()) {
		b := s.(*box)
		if !b.contains(p) {
			continue
		}
		var t [3]int
		for d := 0; d < 3; d++ {
			f := (p[d] - b.lo[d]) / (b.hi[d] - b.lo[d])
			t[d] = int(math.Min(math.Floor(f*float64(bg.Tiles[d])), float64(bg.Tiles[d]-1)))
		}
		return Unit{Box: b.id, Tile: int(Flatten(t, bg.Tiles))}, true
	}
	return Unit{}, false
}
