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

import (
	"testing"

	"github.com/openscan/licensedetect/internal/sets"
)

func TestScoresVectorOrdering(t *testing.T) {
	better := scoresVector{containment: 0.9, resemblance: 0.8, matchedLength: 10, highlyResembles: true}
	worse := scoresVector{containment: 0.8, resemblance: 0.6, matchedLength: 5}
	if !worse.less(better) {
		t.Error("worse vector should order below better")
	}
	if better.less(worse) {
		t.Error("better vector should not order below worse")
	}

	// Containment dominates.
	a := scoresVector{containment: 0.5, resemblance: 0.9, matchedLength: 100}
	b := scoresVector{containment: 0.6, resemblance: 0.1, matchedLength: 1}
	if !a.less(b) {
		t.Error("higher containment must win regardless of other fields")
	}
}

func TestFindLongestMatchAnchorsOnLegalese(t *testing.T) {
	// Query and rule share the block [license permission warranty] where
	// all three are legalese anchors.
	d := newDictionary()
	lic, _ := d.getOrAssign("license")
	perm, _ := d.getOrAssign("permission")
	warr, _ := d.getOrAssign("warranty")
	foo, _ := d.getOrAssign("zfoo")
	bar, _ := d.getOrAssign("zbar")

	queryTokens := []uint16{foo, lic, perm, warr, bar}
	ruleTokens := []uint16{lic, perm, warr}
	postings := map[uint16][]int{lic: {0}, perm: {1}, warr: {2}}
	matchable := sets.NewIntSet(0, 1, 2, 3, 4)

	i, j, k := findLongestMatch(queryTokens, ruleTokens, 0, len(queryTokens), 0, len(ruleTokens),
		postings, d.lenLegalese, matchable)
	if i != 1 || j != 0 || k != 3 {
		t.Errorf("findLongestMatch = (%d, %d, %d), want (1, 0, 3)", i, j, k)
	}
}

func TestFindLongestMatchExtendsIntoLowValue(t *testing.T) {
	// The legalese anchor sits in the middle; extension must pick up the
	// equal low-value tokens around it.
	d := newDictionary()
	lic, _ := d.getOrAssign("license")
	low1, _ := d.getOrAssign("zalpha")
	low2, _ := d.getOrAssign("zbeta")

	queryTokens := []uint16{low1, lic, low2}
	ruleTokens := []uint16{low1, lic, low2}
	postings := map[uint16][]int{lic: {1}}
	matchable := sets.NewIntSet(0, 1, 2)

	i, j, k := findLongestMatch(queryTokens, ruleTokens, 0, 3, 0, 3,
		postings, d.lenLegalese, matchable)
	if i != 0 || j != 0 || k != 3 {
		t.Errorf("findLongestMatch = (%d, %d, %d), want (0, 0, 3)", i, j, k)
	}
}

func TestFindLongestMatchSkipsConsumedPositions(t *testing.T) {
	d := newDictionary()
	lic, _ := d.getOrAssign("license")

	queryTokens := []uint16{lic}
	ruleTokens := []uint16{lic}
	postings := map[uint16][]int{lic: {0}}

	_, _, k := findLongestMatch(queryTokens, ruleTokens, 0, 1, 0, 1,
		postings, d.lenLegalese, sets.NewIntSet())
	if k != 0 {
		t.Errorf("consumed position still matched, k = %d", k)
	}
}

func TestMatchBlocksMergesAdjacent(t *testing.T) {
	// Query equals the rule: the first longest match already extends over
	// every token, so one block covers everything.
	d := newDictionary()
	var queryTokens []uint16
	words := []string{"license", "zaa", "permission", "zbb", "warranty", "zcc"}
	postings := make(map[uint16][]int)
	for pos, w := range words {
		tid, _ := d.getOrAssign(w)
		queryTokens = append(queryTokens, tid)
		if d.isLegalese(tid) {
			postings[tid] = append(postings[tid], pos)
		}
	}
	matchable := sets.NewIntSet(0, 1, 2, 3, 4, 5)

	blocks := matchBlocks(queryTokens, queryTokens, 0, len(queryTokens),
		postings, d.lenLegalese, matchable)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1 merged: %+v", len(blocks), blocks)
	}
	if blocks[0].qpos != 0 || blocks[0].ipos != 0 || blocks[0].size != len(words) {
		t.Errorf("block = %+v, want full-length block at origin", blocks[0])
	}
}

func TestComputeCandidatesFindsTruncatedMIT(t *testing.T) {
	e := testEngine(t)
	q := newQuery(mitTruncated, e.idx, 0)
	cands := computeCandidates(e.idx, q.wholeRun(), false, 50)
	if len(cands) == 0 {
		t.Fatal("no candidates for truncated MIT text")
	}
	if cands[0].rule.Identifier != "mit.LICENSE" {
		t.Errorf("top candidate = %s, want mit.LICENSE", cands[0].rule.Identifier)
	}
}

func TestComputeCandidatesHighResemblanceFiltersPartial(t *testing.T) {
	e := testEngine(t)

	// The full text resembles itself highly.
	full := newQuery(mitText, e.idx, 0)
	if cands := computeCandidates(e.idx, full.wholeRun(), true, 10); len(cands) == 0 {
		t.Error("full MIT text should pass the high-resemblance filter")
	}

	// A short fragment does not.
	frag := newQuery("to use, copy, modify, merge, publish, distribute", e.idx, 0)
	if cands := computeCandidates(e.idx, frag.wholeRun(), true, 10); len(cands) != 0 {
		t.Errorf("short fragment passed high-resemblance filter: %d candidates", len(cands))
	}
}

func TestComputeCandidatesRejectsNoHighIntersection(t *testing.T) {
	e := testEngine(t)
	// Known low-value words only: no legalese intersection, no candidates.
	q := newQuery("software documentation files", e.idx, 0)
	if cands := computeCandidates(e.idx, q.wholeRun(), false, 50); len(cands) != 0 {
		t.Errorf("got %d candidates without high-value overlap, want 0", len(cands))
	}
}

func TestSeqMatchTruncatedMIT(t *testing.T) {
	e := testEngine(t)
	q := newQuery(mitTruncated, e.idx, 0)
	run := q.wholeRun()
	cands := computeCandidates(e.idx, run, false, 50)
	ms := seqMatch(e.idx, run, cands)
	if len(ms) == 0 {
		t.Fatal("no sequence matches for truncated MIT")
	}

	var best *Match
	for _, m := range ms {
		if best == nil || m.MatchedLength > best.MatchedLength {
			best = m
		}
	}
	if best.LicenseExpression != "mit" {
		t.Errorf("best match expression = %q, want mit", best.LicenseExpression)
	}
	if best.Matcher != matcherSeq {
		t.Errorf("matcher = %q, want %q", best.Matcher, matcherSeq)
	}
	if best.MatchCoverage <= 50 || best.MatchCoverage >= 100 {
		t.Errorf("coverage = %v, want in (50, 100)", best.MatchCoverage)
	}
	if best.HiLen == 0 {
		t.Error("hilen should count the matched legalese tokens")
	}
}
