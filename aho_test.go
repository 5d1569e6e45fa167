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

import "testing"

func TestAhoMatchExactNotice(t *testing.T) {
	e := testEngine(t)
	q := newQuery("Some header\nLicensed under the MIT license\nmore text", e.idx, 0)
	ms := ahoMatch(e.idx, q.wholeRun(), quietLogger())

	var notice *Match
	for _, m := range ms {
		if m.RuleIdentifier == "mit_notice_1.RULE" {
			notice = m
		}
	}
	if notice == nil {
		t.Fatalf("notice rule not matched; got %d matches", len(ms))
	}
	if notice.Matcher != matcherAho {
		t.Errorf("matcher = %q, want %q", notice.Matcher, matcherAho)
	}
	if notice.MatchCoverage != 100 {
		t.Errorf("coverage = %v, want 100", notice.MatchCoverage)
	}
	if notice.StartLine != 2 || notice.EndLine != 2 {
		t.Errorf("lines = %d-%d, want 2-2", notice.StartLine, notice.EndLine)
	}
	if notice.HiLen == 0 {
		t.Error("hilen = 0, want the legalese token count")
	}
	if notice.StartToken < 0 || notice.EndToken > len(q.tokens) || notice.StartToken >= notice.EndToken {
		t.Errorf("token span [%d, %d) out of bounds", notice.StartToken, notice.EndToken)
	}
}

func TestAhoMatchRejectsConsumedPositions(t *testing.T) {
	e := testEngine(t)
	q := newQuery("Licensed under the MIT license", e.idx, 0)
	// Consume everything, as if an earlier matcher claimed the text.
	q.subtract(posSpan{start: 0, end: len(q.tokens) - 1})

	if ms := ahoMatch(e.idx, q.wholeRun(), quietLogger()); len(ms) != 0 {
		t.Errorf("got %d matches on fully consumed run, want 0", len(ms))
	}
}

func TestAhoMatchSingleLowValueTokenRejected(t *testing.T) {
	rules := []*Rule{
		{Identifier: "single_low.RULE", LicenseExpression: "mit", Text: "softwarelike"},
		{Identifier: "anchor.RULE", LicenseExpression: "mit", Text: "license terms apply here"},
	}
	idx := buildIndex(rules, nil, quietLogger())

	q := newQuery("softwarelike", idx, 0)
	if len(q.tokens) != 1 {
		t.Fatalf("got %d tokens, want 1", len(q.tokens))
	}
	if ms := ahoMatch(idx, q.wholeRun(), quietLogger()); len(ms) != 0 {
		t.Errorf("single low-value token matched: %d matches", len(ms))
	}
}

func TestAhoMatchOverlapping(t *testing.T) {
	// Both the reference rule and the notice rule cover "MIT license";
	// overlapping reporting must surface both.
	e := testEngine(t)
	q := newQuery("Licensed under the MIT license", e.idx, 0)
	ms := ahoMatch(e.idx, q.wholeRun(), quietLogger())

	seen := make(map[string]bool)
	for _, m := range ms {
		seen[m.RuleIdentifier] = true
	}
	if !seen["mit_notice_1.RULE"] || !seen["mit_ref_1.RULE"] {
		t.Errorf("overlapping matches missing, saw %v", seen)
	}
}
