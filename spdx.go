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
	"regexp"
	"strings"
)

// spdxLidRE recognizes SPDX-License-Identifier prefixes, tolerant of the
// common typos seen in the wild (SPDZ, Lisence, Identifer, space-separated).
var spdxLidRE = regexp.MustCompile(`(?i)spd[xz][\-\s]+lin?[cs]en?[sc]es?[\-\s]+identifi?er\s*:? *`)

// nugetLicenseRE recognizes the NuGet license URL convention, which carries a
// bare SPDX expression after the host.
var nugetLicenseRE = regexp.MustCompile(`(?i)https?://licenses\.nuget\.org/?\s*:? *`)

// spdxStripPunct are the punctuation characters stripped from the ends of an
// SPDX expression. Parentheses are handled separately so balanced groups
// survive.
const spdxStripPunct = "!\"#$%&'*,-./:;<=>?@[\\]^_`{|}~ \t\r\n"

// splitSPDXLid splits a line into its SPDX-License-Identifier prefix and the
// trailing expression. The prefix is empty when the line carries no
// identifier.
func splitSPDXLid(line string) (prefix, expression string) {
	if loc := spdxLidRE.FindStringIndex(line); loc != nil {
		return line[:loc[1]], line[loc[1]:]
	}
	if loc := nugetLicenseRE.FindStringIndex(line); loc != nil {
		return line[:loc[1]], line[loc[1]:]
	}
	return "", line
}

// cleanSPDXText normalizes a raw SPDX expression: dangling close tags
// removed, whitespace collapsed, end punctuation stripped and lone
// parentheses dropped. Cleaning is idempotent.
func cleanSPDXText(text string) string {
	for _, tag := range []string{"</a>", "</p>", "</div>", "</licenseUrl>"} {
		text = strings.ReplaceAll(text, tag, "")
	}
	text = strings.Join(strings.Fields(text), " ")

	for len(text) > 0 {
		c := text[0]
		if strings.IndexByte(spdxStripPunct, c) >= 0 || c == ')' {
			text = text[1:]
			continue
		}
		break
	}
	for len(text) > 0 {
		c := text[len(text)-1]
		if strings.IndexByte(spdxStripPunct, c) >= 0 || c == '(' {
			text = text[:len(text)-1]
			continue
		}
		break
	}

	open := strings.Count(text, "(")
	closed := strings.Count(text, ")")
	if open == 1 && closed == 0 {
		text = strings.ReplaceAll(text, "(", " ")
	} else if closed == 1 && open == 0 {
		text = strings.ReplaceAll(text, ")", " ")
	}

	// Markup like `MIT">MIT</a>` leaves the key duplicated around the
	// attribute close; keep the first copy.
	if i := strings.Index(text, `">`); i >= 0 {
		head, tail := text[:i], text[i+2:]
		if strings.Contains(tail, head) {
			text = head
		}
	}

	return strings.Join(strings.Fields(text), " ")
}

// splitExpressionKeys breaks an SPDX expression into its license key tokens,
// discarding operators and parentheses.
func splitExpressionKeys(expression string) []string {
	normalized := strings.NewReplacer("(", " ", ")", " ").Replace(expression)
	var keys []string
	for _, tok := range strings.Fields(normalized) {
		switch strings.ToLower(tok) {
		case "and", "or", "with":
			continue
		}
		keys = append(keys, tok)
	}
	return keys
}

// spdxMatch resolves every SPDX-License-Identifier line collected during
// query construction into matches, one per license key in the expression.
func spdxMatch(idx *licenseIndex, q *query) []*Match {
	var matches []*Match
	for _, sl := range q.spdxLines {
		for _, key := range splitExpressionKeys(sl.text) {
			rid, ok := idx.bestRuleForSPDXKey(key)
			if !ok {
				continue
			}
			rule := idx.rulesByRid[rid]
			matches = append(matches, &Match{
				LicenseExpression:     rule.LicenseExpression,
				LicenseExpressionSPDX: spdxExpression(idx, rule.LicenseExpression),
				Matcher:               matcherSPDXID,
				Score:                 float64(rule.Relevance) / 100,
				// Length of the expression string, not a token count:
				// a bare "GPL-2.0" tag must stay above the short-GPL
				// refinement threshold.
				MatchedLength: len(sl.text),
				RuleLength:            rule.Length(),
				MatchCoverage:         100,
				RuleRelevance:         rule.Relevance,
				RuleIdentifier:        rule.Identifier,
				StartLine:             sl.line,
				EndLine:               sl.line,
				MatchedText:           q.textForLines(sl.line, sl.line),
				IsLicenseIntro:        rule.IsLicenseIntro,
				IsLicenseClue:         rule.IsLicenseClue,
				IsLicenseReference:    rule.IsLicenseReference,
				IsLicenseTag:          rule.IsLicenseTag,
				rid:                   rid,
			})
		}
	}
	return matches
}
