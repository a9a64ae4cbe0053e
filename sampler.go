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
	"golang.org/x/exp/rand"
)

// Sampler is a source of uniformly distributed numbers in [0, 1).
type Sampler interface {
	Float64() float64
}

// NewRandSampler returns a pseudo-random Sampler seeded with seed. Each
// process should hold its own Sampler.
func NewRandSampler(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// FixedSampler is a deterministic Sampler that cycles through Values.
// If Values is empty it always returns 0.5.
type FixedSampler struct {
	Values []float64
	i      int
}

// Float64 implements Sampler.
func (f *FixedSampler) Float64() float64 {
	if len(f.Values) == 0 {
		return 0.5
	}
	v := f.Values[f.i%len(f.Values)]
	f.i++
	return v
}
