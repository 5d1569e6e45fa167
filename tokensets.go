// Copyright 2023 The licensedetect Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package licensedetect

import "github.com/openscan/licensedetect/internal/sets"

// buildSetAndMset returns the set of distinct token ids and the multiset
// (id -> occurrence count) for a token sequence.
func buildSetAndMset(tokens []uint16) (*sets.IntSet, map[uint16]int) {
	mset := make(map[uint16]int, len(tokens))
	set := sets.NewIntSet()
	for _, tid := range tokens {
		mset[tid]++
		set.Insert(int(tid))
	}
	return set, mset
}

// highMsetSubset restricts a multiset to high-value ids. The set counterpart
// is IntSet.Below.
func highMsetSubset(mset map[uint16]int, lenLegalese int) map[uint16]int {
	high := make(map[uint16]int)
	for tid, count := range mset {
		if int(tid) < lenLegalese {
			high[tid] = count
		}
	}
	return high
}

// msetLen is the total occurrence count held in a multiset.
func msetLen(mset map[uint16]int) int {
	n := 0
	for _, count := range mset {
		n += count
	}
	return n
}

// msetIntersect keeps, for each id present in both multisets, the smaller of
// the two occurrence counts.
func msetIntersect(a, b map[uint16]int) map[uint16]int {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(map[uint16]int)
	for tid, ca := range a {
		if cb, ok := b[tid]; ok {
			out[tid] = min(ca, cb)
		}
	}
	return out
}
