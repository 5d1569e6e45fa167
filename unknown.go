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

	"github.com/openscan/licensedetect/internal/sets"
)

const (
	// unknownMinNgramHits: fewer automaton hits than this in a region is
	// noise, not license-like text.
	unknownMinNgramHits = 3

	// unknownMinRegionLength: uncovered regions shorter than this are
	// skipped outright.
	unknownMinRegionLength = 5

	// unknownMinMatchedLength: a reported unknown region must span at
	// least this many tokens (four ngram windows).
	unknownMinMatchedLength = unknownNgramLength * 4

	// unknownMinHighTokens: and carry at least this many high-value
	// tokens.
	unknownMinHighTokens = 5

	// unknownRelevance is the fixed relevance of unknown detections.
	unknownRelevance = 50
)

// unknownMatch flags uncovered stretches of the query whose 6-grams resemble
// generic license language without matching any rule. It runs last, over the
// positions no other matcher claimed.
func unknownMatch(idx *licenseIndex, q *query, known []*Match) []*Match {
	if len(q.tokens) == 0 || idx.unknownAutomaton == nil {
		return nil
	}

	covered := sets.NewIntSet()
	for _, m := range known {
		for pos := m.StartToken; pos < m.EndToken; pos++ {
			covered.Insert(pos)
		}
	}

	var matches []*Match
	start := -1
	flush := func(end int) { // end exclusive
		if start < 0 {
			return
		}
		if m := unknownRegionMatch(idx, q, start, end); m != nil {
			matches = append(matches, m)
		}
		start = -1
	}
	for pos := 0; pos < len(q.tokens); pos++ {
		if covered.Contains(pos) {
			flush(pos)
			continue
		}
		if start < 0 {
			start = pos
		}
	}
	flush(len(q.tokens))
	return matches
}

// unknownRegionMatch scores one uncovered [start, end) region and builds the
// synthetic match when it qualifies.
func unknownRegionMatch(idx *licenseIndex, q *query, start, end int) *Match {
	length := end - start
	if length < unknownMinRegionLength {
		return nil
	}

	hits := len(idx.unknownAutomaton.Match(tokensToBytes(q.tokens[start:end])))
	if hits < unknownMinNgramHits {
		return nil
	}

	if length < unknownMinMatchedLength {
		return nil
	}
	hilen := 0
	for pos := start; pos < end; pos++ {
		if idx.dict.isLegalese(q.tokens[pos]) {
			hilen++
		}
	}
	if hilen < unknownMinHighTokens {
		return nil
	}

	startLine := q.lineForPos(start)
	endLine := q.lineForPos(end - 1)

	return &Match{
		LicenseExpression:     "unknown",
		LicenseExpressionSPDX: spdxExpression(idx, "unknown"),
		Matcher:               matcherUnknown,
		Score:                 math.Min(1, float64(hits)/float64(length)),
		MatchedLength:         length,
		RuleLength:            length,
		MatchCoverage:         100,
		RuleRelevance:         unknownRelevance,
		RuleIdentifier:        "unknown-license-detection",
		StartLine:             startLine,
		EndLine:               endLine,
		StartToken:            start,
		EndToken:              end,
		MatchedText:           q.textForLines(startLine, endLine),
		HiLen:                 hilen,
		rid:                   -1,
	}
}
