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
)

// A license-like paragraph that matches no rule in the test corpus: verbatim
// MIT phrases spliced together with unrelated words, so rule 6-grams appear
// without the full rule text.
const unknownLicenseText = `Permission is hereby granted free of charge to any person obtaining
a frobble and without warranty of any kind express or implied wibble
in no event shall the authors or copyright holders be liable
for any claim damages or other liability whether in an action`

func TestUnknownMatchFlagsLicenseLikeText(t *testing.T) {
	e := testEngine(t)
	q := newQuery(unknownLicenseText, e.idx, 0)
	ms := unknownMatch(e.idx, q, nil)

	if len(ms) != 1 {
		t.Fatalf("got %d unknown matches, want 1", len(ms))
	}
	m := ms[0]
	if m.LicenseExpression != "unknown" {
		t.Errorf("expression = %q, want unknown", m.LicenseExpression)
	}
	if m.Matcher != matcherUnknown {
		t.Errorf("matcher = %q, want %q", m.Matcher, matcherUnknown)
	}
	if m.RuleRelevance != unknownRelevance {
		t.Errorf("relevance = %d, want %d", m.RuleRelevance, unknownRelevance)
	}
	if m.Score <= 0 || m.Score > 1 {
		t.Errorf("score = %v, want in (0, 1]", m.Score)
	}
}

func TestUnknownMatchSkipsCoveredRegions(t *testing.T) {
	e := testEngine(t)
	q := newQuery(unknownLicenseText, e.idx, 0)
	covering := &Match{StartToken: 0, EndToken: len(q.tokens)}

	if ms := unknownMatch(e.idx, q, []*Match{covering}); len(ms) != 0 {
		t.Errorf("got %d matches on fully covered query, want 0", len(ms))
	}
}

func TestUnknownMatchSkipsShortRegions(t *testing.T) {
	e := testEngine(t)
	q := newQuery("granted permission with warranty", e.idx, 0)
	if ms := unknownMatch(e.idx, q, nil); len(ms) != 0 {
		t.Errorf("got %d matches on short region, want 0", len(ms))
	}
}

func TestUnknownMatchSkipsNonLegalText(t *testing.T) {
	e := testEngine(t)
	// Known words in an order no rule uses, repeated: no rule ngram
	// appears in the text.
	text := "software files person charge copy use deal rights sell " +
		"software files person charge copy use deal rights sell " +
		"software files person charge copy use deal rights sell"
	q := newQuery(text, e.idx, 0)
	if ms := unknownMatch(e.idx, q, nil); len(ms) != 0 {
		t.Errorf("got %d matches on non-legal text, want 0", len(ms))
	}
}
