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
	"math"
	"sort"

	"github.com/openscan/licensedetect/internal/sets"
)

const (
	// highResemblanceThreshold qualifies a candidate as a near duplicate of
	// the query.
	highResemblanceThreshold = 0.8

	// defaultCandidatePoolSize caps how many candidate rules proceed to
	// sequence alignment per run.
	defaultCandidatePoolSize = 50

	// nearDupeCandidates caps the candidate pool for the whole-file
	// near-duplicate check.
	nearDupeCandidates = 10
)

// scoresVector ranks a candidate rule against a query run by set similarity.
// Resemblance is stored squared: amplification spreads the top of the
// ranking.
type scoresVector struct {
	containment     float64
	resemblance     float64
	matchedLength   float64
	highlyResembles bool
}

// less orders score vectors ascending by (containment, resemblance,
// matchedLength, highlyResembles).
func (v scoresVector) less(o scoresVector) bool {
	if v.containment != o.containment {
		return v.containment < o.containment
	}
	if v.resemblance != o.resemblance {
		return v.resemblance < o.resemblance
	}
	if v.matchedLength != o.matchedLength {
		return v.matchedLength < o.matchedLength
	}
	return !v.highlyResembles && o.highlyResembles
}

// candidate pairs a rule with its score vector from set-similarity ranking.
type candidate struct {
	rid    int
	rule   *Rule
	scores scoresVector
}

// scoreSets builds a score vector from a query/rule length pair and their
// intersection size. Returns ok=false when nothing matched.
func scoreSets(matchedLength, queryLength, ruleLength int) (scoresVector, bool) {
	if matchedLength == 0 || queryLength == 0 || ruleLength == 0 {
		return scoresVector{}, false
	}
	union := queryLength + ruleLength - matchedLength
	resemblance := float64(matchedLength) / float64(union)
	return scoresVector{
		containment:     float64(matchedLength) / float64(ruleLength),
		resemblance:     resemblance * resemblance,
		matchedLength:   float64(matchedLength),
		highlyResembles: resemblance >= highResemblanceThreshold,
	}, true
}

// computeCandidates ranks every approx-matchable rule against the run by set
// similarity and returns the topN. The first pass scores distinct-token sets
// and enforces each rule's unique-token thresholds; the second pass re-ranks
// the survivors on high-value multisets. With highResemblance set, only
// near-duplicate candidates (resemblance >= 0.8) are returned, which backs
// the whole-file short-circuit.
func computeCandidates(idx *licenseIndex, run *queryRun, highResemblance bool, topN int) []candidate {
	if topN <= 0 {
		topN = defaultCandidatePoolSize
	}
	masked := run.matchableTokens()
	if len(masked) == 0 {
		return nil
	}
	queryTids := make([]uint16, 0, len(masked))
	for _, t := range masked {
		if t >= 0 {
			queryTids = append(queryTids, uint16(t))
		}
	}
	if len(queryTids) == 0 {
		return nil
	}

	querySet, queryMset := buildSetAndMset(queryTids)
	queryHighMset := highMsetSubset(queryMset, idx.lenLegalese)

	var pool []candidate
	for rid := range idx.rulesByRid {
		if !idx.approxMatchableRids[rid] {
			continue
		}
		rule := idx.rulesByRid[rid]
		ruleSet := idx.setsByRid[rid]
		ruleMset := idx.msetsByRid[rid]
		if ruleSet == nil || ruleMset == nil {
			continue
		}

		intersection := querySet.Intersect(ruleSet)
		if intersection.Empty() {
			continue
		}
		highCount := intersection.CountBelow(idx.lenLegalese)
		if highCount == 0 || highCount < rule.minHighMatchedLengthUnique {
			continue
		}
		if intersection.Len() < rule.minMatchedLengthUnique {
			continue
		}

		matchedLength := 0
		for _, tid := range intersection.Elements() {
			matchedLength += min(queryMset[uint16(tid)], ruleMset[uint16(tid)])
		}
		scores, ok := scoreSets(matchedLength, msetLen(queryMset), len(rule.tokens))
		if !ok {
			continue
		}
		if highResemblance && !scores.highlyResembles {
			continue
		}
		pool = append(pool, candidate{rid: rid, rule: rule, scores: scores})
	}
	if len(pool) == 0 {
		return nil
	}

	sortCandidates(pool)
	if len(pool) > topN*10 {
		pool = pool[:topN*10]
	}

	// Second pass: re-rank on high-value multisets so rules sharing rare
	// legalese with the query beat rules matching on bulk filler.
	refined := pool[:0]
	for _, c := range pool {
		ruleHighMset := highMsetSubset(idx.msetsByRid[c.rid], idx.lenLegalese)
		inter := msetIntersect(queryHighMset, ruleHighMset)
		if len(inter) == 0 {
			continue
		}
		scores, ok := scoreSets(msetLen(inter), msetLen(queryHighMset), msetLen(ruleHighMset))
		if !ok {
			continue
		}
		if highResemblance && !scores.highlyResembles {
			continue
		}
		c.scores = scores
		refined = append(refined, c)
	}
	if len(refined) == 0 {
		return nil
	}

	sortCandidates(refined)
	if len(refined) > topN {
		refined = refined[:topN]
	}
	return refined
}

// sortCandidates orders best first, rids breaking ties for determinism.
func sortCandidates(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].scores.less(cands[j].scores) {
			return false
		}
		if cands[j].scores.less(cands[i].scores) {
			return true
		}
		return cands[i].rid < cands[j].rid
	})
}

// findLongestMatch locates the longest block of equal tokens between
// query[alo:ahi] and rule[blo:bhi]. Only high-value, still-matchable query
// tokens seed the dynamic program; once the best seed block is known it is
// extended left and right over any equal tokens, low-value included. This is
// the performance-critical choice: alignment grows outward from legalese
// anchors instead of trying every position.
func findLongestMatch(
	queryTokens, ruleTokens []uint16,
	alo, ahi, blo, bhi int,
	postings map[uint16][]int,
	lenLegalese int,
	matchable *sets.IntSet,
) (bestI, bestJ, bestSize int) {
	bestI, bestJ = alo, blo

	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		cur := queryTokens[i]
		newJ2len := make(map[int]int)
		if int(cur) < lenLegalese && matchable.Contains(i) {
			for _, j := range postings[cur] {
				if j < blo {
					continue
				}
				if j >= bhi {
					break
				}
				k := 1
				if j > 0 {
					k = j2len[j-1] + 1
				}
				newJ2len[j] = k
				if k > bestSize {
					bestI, bestJ, bestSize = i+1-k, j+1-k, k
				}
			}
		}
		j2len = newJ2len
	}

	if bestSize > 0 {
		for bestI > alo && bestJ > blo &&
			queryTokens[bestI-1] == ruleTokens[bestJ-1] &&
			matchable.Contains(bestI-1) {
			bestI--
			bestJ--
			bestSize++
		}
		for bestI+bestSize < ahi && bestJ+bestSize < bhi &&
			queryTokens[bestI+bestSize] == ruleTokens[bestJ+bestSize] &&
			matchable.Contains(bestI+bestSize) {
			bestSize++
		}
	}
	return bestI, bestJ, bestSize
}

// block is one aligned region: query position, rule position, length.
type block struct {
	qpos, ipos, size int
}

// matchBlocks runs divide-and-conquer alignment: find the longest block, then
// recurse into the regions left and right of it, finally merging blocks that
// are adjacent in both sequences.
func matchBlocks(
	queryTokens, ruleTokens []uint16,
	qstart, qend int,
	postings map[uint16][]int,
	lenLegalese int,
	matchable *sets.IntSet,
) []block {
	if len(queryTokens) == 0 || len(ruleTokens) == 0 {
		return nil
	}

	type region struct{ alo, ahi, blo, bhi int }
	queue := []region{{qstart, qend, 0, len(ruleTokens)}}
	var blocks []block

	for len(queue) > 0 {
		reg := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := findLongestMatch(
			queryTokens, ruleTokens, reg.alo, reg.ahi, reg.blo, reg.bhi,
			postings, lenLegalese, matchable)
		if k == 0 {
			continue
		}
		blocks = append(blocks, block{qpos: i, ipos: j, size: k})
		if reg.alo < i && reg.blo < j {
			queue = append(queue, region{reg.alo, i, reg.blo, j})
		}
		if i+k < reg.ahi && j+k < reg.bhi {
			queue = append(queue, region{i + k, reg.ahi, j + k, reg.bhi})
		}
	}

	sort.Slice(blocks, func(a, b int) bool {
		if blocks[a].qpos != blocks[b].qpos {
			return blocks[a].qpos < blocks[b].qpos
		}
		return blocks[a].ipos < blocks[b].ipos
	})

	var merged []block
	var cur block
	for _, b := range blocks {
		if cur.size > 0 && cur.qpos+cur.size == b.qpos && cur.ipos+cur.size == b.ipos {
			cur.size += b.size
			continue
		}
		if cur.size > 0 {
			merged = append(merged, cur)
		}
		cur = b
	}
	if cur.size > 0 {
		merged = append(merged, cur)
	}
	return merged
}

// seqMatch aligns each candidate rule against the run and emits one match per
// surviving block. The outer loop restarts past the last emitted block so a
// rule occurring several times in the run matches each time.
func seqMatch(idx *licenseIndex, run *queryRun, candidates []candidate) []*Match {
	if run.len() == 0 {
		return nil
	}
	var matches []*Match
	queryTokens := run.q.tokens
	lenLegalese := idx.lenLegalese

	for _, cand := range candidates {
		ruleTokens := idx.tidsByRid[cand.rid]
		postings := idx.highPostingsByRid[cand.rid]
		if len(ruleTokens) == 0 || postings == nil {
			continue
		}
		matchable := run.matchables(true)

		qstart := run.start
		for qstart <= run.end {
			blocks := matchBlocks(queryTokens, ruleTokens, qstart, run.end+1, postings, lenLegalese, matchable)
			if len(blocks) == 0 {
				break
			}

			maxQend := qstart
			for _, b := range blocks {
				if b.size < 1 {
					continue
				}
				if b.size == 1 && int(queryTokens[b.qpos]) >= lenLegalese {
					continue
				}
				m := newSeqMatch(idx, run, cand, b)
				if m != nil {
					matches = append(matches, m)
				}
				maxQend = max(maxQend, b.qpos+b.size)
			}
			if maxQend <= qstart {
				break
			}
			qstart = maxQend
		}
	}
	return matches
}

func newSeqMatch(idx *licenseIndex, run *queryRun, cand candidate, b block) *Match {
	rule := cand.rule
	ruleLength := rule.Length()
	if ruleLength == 0 {
		return nil
	}
	coverage := math.Min(float64(b.size)/float64(ruleLength)*100, 100)

	hilen := 0
	for pos := b.qpos; pos < b.qpos+b.size; pos++ {
		if idx.dict.isLegalese(run.q.tokens[pos]) {
			hilen++
		}
	}

	startLine := run.lineForPos(b.qpos)
	endLine := run.lineForPos(b.qpos + b.size - 1)

	return &Match{
		LicenseExpression:     rule.LicenseExpression,
		LicenseExpressionSPDX: spdxExpression(idx, rule.LicenseExpression),
		Matcher:               matcherSeq,
		Score:                 coverage * float64(rule.Relevance) / 10000,
		MatchedLength:         b.size,
		RuleLength:            ruleLength,
		MatchCoverage:         coverage,
		RuleRelevance:         rule.Relevance,
		RuleIdentifier:        rule.Identifier,
		StartLine:             startLine,
		EndLine:               endLine,
		StartToken:            b.qpos,
		EndToken:              b.qpos + b.size,
		MatchedText:           run.q.textForLines(startLine, endLine),
		IsLicenseIntro:        rule.IsLicenseIntro,
		IsLicenseClue:         rule.IsLicenseClue,
		IsLicenseReference:    rule.IsLicenseReference,
		IsLicenseTag:          rule.IsLicenseTag,
		HiLen:                 hilen,
		rid:                   cand.rid,
	}
}
