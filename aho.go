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

import "github.com/sirupsen/logrus"

// ahoMatch finds every occurrence of any rule's full token sequence inside
// the run, overlapping occurrences included. Hits touching positions already
// consumed by earlier matchers are rejected.
func ahoMatch(idx *licenseIndex, run *queryRun, log logrus.FieldLogger) []*Match {
	if run.len() == 0 || idx.rulesAutomaton == nil {
		return nil
	}

	encoded := tokensToBytes(run.tokens())
	matchable := run.matchables(true)

	var matches []*Match
	for _, hit := range idx.rulesAutomaton.Match(encoded) {
		bytePos := int(hit.Pos())
		byteLen := len(hit.Match())
		// Token ids are byte pairs; a hit that straddles a pair boundary
		// is a spurious byte-level coincidence.
		if bytePos%2 != 0 || byteLen%2 != 0 {
			continue
		}
		matchedLength := byteLen / 2
		if matchedLength == 0 {
			continue
		}

		qstart := run.start + bytePos/2
		qend := qstart + matchedLength // exclusive

		ok := true
		for pos := qstart; pos < qend; pos++ {
			if !matchable.Contains(pos) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		patternID := int(hit.Pattern())
		if patternID < 0 || patternID >= len(idx.patternRids) {
			log.WithField("pattern", patternID).Debug("automaton hit with unknown pattern id")
			continue
		}
		rid := idx.patternRids[patternID]
		if rid >= len(idx.rulesByRid) {
			log.WithField("rid", rid).Debug("automaton hit with out of range rule id")
			continue
		}
		rule := idx.rulesByRid[rid]
		ruleLength := rule.Length()
		if ruleLength == 0 {
			continue
		}

		// A single low-value token is never evidence on its own.
		if matchedLength == 1 && !idx.dict.isLegalese(run.q.tokens[qstart]) {
			continue
		}

		hilen := 0
		for pos := qstart; pos < qend; pos++ {
			if idx.dict.isLegalese(run.q.tokens[pos]) {
				hilen++
			}
		}

		coverage := float64(matchedLength) / float64(ruleLength) * 100
		if coverage > 100 {
			coverage = 100
		}
		startLine := run.lineForPos(qstart)
		endLine := run.lineForPos(qend - 1)

		matches = append(matches, &Match{
			LicenseExpression:     rule.LicenseExpression,
			LicenseExpressionSPDX: spdxExpression(idx, rule.LicenseExpression),
			Matcher:               matcherAho,
			Score:                 coverage / 100,
			MatchedLength:         matchedLength,
			RuleLength:            ruleLength,
			MatchCoverage:         coverage,
			RuleRelevance:         rule.Relevance,
			RuleIdentifier:        rule.Identifier,
			StartLine:             startLine,
			EndLine:               endLine,
			StartToken:            qstart,
			EndToken:              qend,
			MatchedText:           run.q.textForLines(startLine, endLine),
			IsLicenseIntro:        rule.IsLicenseIntro,
			IsLicenseClue:         rule.IsLicenseClue,
			IsLicenseReference:    rule.IsLicenseReference,
			IsLicenseTag:          rule.IsLicenseTag,
			HiLen:                 hilen,
			rid:                   rid,
		})
	}
	return matches
}
