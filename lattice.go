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

// Partition divides the index space [0, total) into n contiguous blocks
// of equal size and returns the first index and length of block i. Any
// remainder is given to the last block.
func Partition(total uint64, n, i int) (first, count uint64) {
	per := total / uint64(n)
	first = uint64(i) * per
	count = per
	if i == n-1 {
		count += total % uint64(n)
	}
	return first, count
}

// Extents is the number of lattice points along each axis.
type Extents [3]int

// Len returns the total number of lattice points.
func (e Extents) Len() uint64 {
	return uint64(e[0]) * uint64(e[1]) * uint64(e[2])
}

// Unflatten returns the lattice coordinates of flat index idx, where x
// varies fastest.
func Unflatten(idx uint64, e Extents) [3]int {
	var c [3]int
	d1 := uint64(e[0])
	d2 := uint64(e[1])
	c[2] = int(idx / (d1 * d2))
	idx -= uint64(c[2]) * d1 * d2
	c[1] = int(idx / d1)
	c[0] = int(idx % d1)
	return c
}

// Flatten is the inverse of Unflatten.
func Flatten(c [3]int, e Extents) uint64 {
	return uint64(c[0]) + uint64(e[0])*(uint64(c[1])+uint64(e[1])*uint64(c[2]))
}

// RoundCount returns the number of rounds in which parcels created on
// nprocs processes are redistributed, so that the memory needed for
// parcels in transit stays bounded.
func RoundCount(nprocs int) int {
	switch {
	case nprocs < 1024:
		return 1
	case nprocs < 2048:
		return 2
	case nprocs < 4096:
		return 4
	default:
		return 8
	}
}

// Span is a half-open range of process ranks.
type Span struct {
	Lo, Hi int
}

// Contains reports whether rank is within s.
func (s Span) Contains(rank int) bool { return rank >= s.Lo && rank < s.Hi }

// Len returns the number of ranks in s.
func (s Span) Len() int { return s.Hi - s.Lo }

// RedistributionPlan returns the ranks that insert their parcels in
// each of the given number of rounds, and the leftover ranks that
// insert theirs in a final pass afterwards.
func RedistributionPlan(nprocs, rounds int) (chunks []Span, leftover Span) {
	chunk := nprocs / rounds
	chunks = make([]Span, rounds)
	for r := range chunks {
		chunks[r] = Span{Lo: r * chunk, Hi: (r + 1) * chunk}
	}
	return chunks, Span{Lo: rounds * chunk, Hi: nprocs}
}
