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
	"testing"

	"github.com/ctessum/geom"
)

func TestNewBoxGrid_invalid(t *testing.T) {
	for _, test := range []struct {
		name   string
		g      Geometry
		boxes  Extents
		tiles  Extents
		nprocs int
	}{
		{name: "empty domain", g: Geometry{Hi: Vec{1, 0, 1}}, boxes: Extents{1, 1, 1}, tiles: Extents{1, 1, 1}, nprocs: 1},
		{name: "no boxes", g: unitCube(), boxes: Extents{0, 1, 1}, tiles: Extents{1, 1, 1}, nprocs: 1},
		{name: "no tiles", g: unitCube(), boxes: Extents{1, 1, 1}, tiles: Extents{1, 1, 0}, nprocs: 1},
		{name: "no processes", g: unitCube(), boxes: Extents{1, 1, 1}, tiles: Extents{1, 1, 1}, nprocs: 0},
	} {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewBoxGrid(test.g, test.boxes, test.tiles, test.nprocs); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestBoxGrid_Locate(t *testing.T) {
	g, err := NewBoxGrid(Geometry{Lo: Vec{-1, 0, 0}, Hi: Vec{1, 1, 2}}, Extents{2, 1, 2}, Extents{2, 2, 1}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if g.NumBoxes() != 4 {
		t.Fatalf("have %d boxes, want 4", g.NumBoxes())
	}
	for _, test := range []struct {
		p    Vec
		u    Unit
		ok   bool
		name string
	}{
		{name: "origin", p: Vec{-1, 0, 0}, u: Unit{Box: 0, Tile: 0}, ok: true},
		{name: "tile x", p: Vec{-0.25, 0.1, 0.5}, u: Unit{Box: 0, Tile: 1}, ok: true},
		{name: "tile y", p: Vec{-0.75, 0.75, 0.5}, u: Unit{Box: 0, Tile: 2}, ok: true},
		{name: "box boundary", p: Vec{0, 0.75, 0.5}, u: Unit{Box: 1, Tile: 2}, ok: true},
		{name: "upper box", p: Vec{0.9, 0.9, 1.5}, u: Unit{Box: 3, Tile: 3}, ok: true},
		{name: "z boundary", p: Vec{-0.9, 0.1, 1}, u: Unit{Box: 2, Tile: 0}, ok: true},
		{name: "upper face", p: Vec{0, 0.5, 2}, ok: false},
		{name: "below", p: Vec{0, -0.1, 1}, ok: false},
		{name: "beside", p: Vec{1.5, 0.5, 1}, ok: false},
	} {
		t.Run(test.name, func(t *testing.T) {
			u, ok := g.Locate(test.p)
			if ok != test.ok {
				t.Fatalf("ok: have %v, want %v", ok, test.ok)
			}
			if ok && u != test.u {
				t.Errorf("unit: have %+v, want %+v", u, test.u)
			}
		})
	}
	for b, want := range []int{0, 0, 1, 1} {
		if o := g.Owner(b); o != want {
			t.Errorf("box %d owner: have %d, want %d", b, o, want)
		}
	}
}

func TestBoxGrid_moreProcsThanBoxes(t *testing.T) {
	g, err := NewBoxGrid(unitCube(), Extents{1, 1, 1}, Extents{1, 1, 1}, 3)
	if err != nil {
		t.Fatal(err)
	}
	// The only box goes to the last process, which takes the remainder.
	if o := g.Owner(0); o != 2 {
		t.Errorf("owner: have %d, want 2", o)
	}
}

func TestBoxGrid_footprint(t *testing.T) {
	g, err := NewBoxGrid(Geometry{Lo: Vec{0, 0, 0}, Hi: Vec{4, 2, 1}}, Extents{2, 1, 1}, Extents{1, 1, 1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	var b geom.Geom = g.boxes[1]
	if n := b.Len(); n != 4 {
		t.Errorf("footprint points: have %d, want 4", n)
	}
	want := geom.Bounds{Min: geom.Point{X: 2, Y: 0}, Max: geom.Point{X: 4, Y: 2}}
	if have := *b.Bounds(); have != want {
		t.Errorf("bounds: have %+v, want %+v", have, want)
	}
	if have := g.boxes[1].Polygon.Bounds(); *have != want {
		t.Errorf("polygon bounds: have %+v, want %+v", *have, want)
	}
	u, ok := g.Locate(Vec{3, 1, 0.5})
	if !ok || u != (Unit{Box: 1, Tile: 0}) {
		t.Errorf("locate: have %+v %v, want box 1", u, ok)
	}
}
