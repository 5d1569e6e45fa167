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

// hashMatch matches a whole run exactly: the SHA-1 of the run's token ids is
// looked up in the rule hash table. At most one match is returned, always
// with full coverage.
func hashMatch(idx *licenseIndex, run *queryRun) []*Match {
	if run.len() == 0 {
		return nil
	}
	rid, ok := idx.ridByHash[hashTokens(run.tokens())]
	if !ok {
		return nil
	}
	if rid >= len(idx.rulesByRid) {
		return nil
	}
	rule := idx.rulesByRid[rid]

	hilen := 0
	for _, tid := range run.tokens() {
		if idx.dict.isLegalese(tid) {
			hilen++
		}
	}

	startLine := run.lineForPos(run.start)
	endLine := run.lineForPos(run.end)

	return []*Match{{
		LicenseExpression:     rule.LicenseExpression,
		LicenseExpressionSPDX: spdxExpression(idx, rule.LicenseExpression),
		Matcher:               matcherHash,
		Score:                 1.0,
		MatchedLength:         run.len(),
		RuleLength:            rule.Length(),
		MatchCoverage:         100,
		RuleRelevance:         rule.Relevance,
		RuleIdentifier:        rule.Identifier,
		StartLine:             startLine,
		EndLine:               endLine,
		StartToken:            run.start,
		EndToken:              run.end + 1,
		MatchedText:           run.q.textForLines(startLine, endLine),
		IsLicenseIntro:        rule.IsLicenseIntro,
		IsLicenseClue:         rule.IsLicenseClue,
		IsLicenseReference:    rule.IsLicenseReference,
		IsLicenseTag:          rule.IsLicenseTag,
		HiLen:                 hilen,
		rid:                   rid,
	}}
}
