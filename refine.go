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
	"sort"
	"strings"
)

// shortGPLThreshold: matches claiming a GPL expression with at most this many
// matched tokens are dropped; bare "GPL" mentions in comments are
// overwhelmingly false positives.
const shortGPLThreshold = 3

// refineMatches turns the pooled raw matches into the final stable set:
// drop short GPL hits, merge line-adjacent matches of the same rule, remove
// contained matches, subtract false-positive rule hits, and normalize every
// score to coverage x relevance. The operation is idempotent.
func refineMatches(idx *licenseIndex, matches []*Match) []*Match {
	if len(matches) == 0 {
		return nil
	}

	kept := filterShortGPL(matches)
	kept = mergeSameRule(kept)
	kept = filterContained(kept)
	kept = filterFalsePositives(idx, kept)

	for _, m := range kept {
		m.Score = m.MatchCoverage * float64(m.RuleRelevance) / 10000
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		if a.EndLine != b.EndLine {
			return a.EndLine < b.EndLine
		}
		return a.RuleIdentifier < b.RuleIdentifier
	})
	return kept
}

func filterShortGPL(matches []*Match) []*Match {
	var kept []*Match
	for _, m := range matches {
		if m.MatchedLength <= shortGPLThreshold &&
			strings.Contains(strings.ToLower(m.LicenseExpression), "gpl") {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

// mergeSameRule accumulates successive matches of the same rule that overlap
// or sit on adjacent lines into one match covering their union.
func mergeSameRule(matches []*Match) []*Match {
	if len(matches) < 2 {
		return matches
	}

	groups := make(map[string][]*Match)
	var order []string
	for _, m := range matches {
		if _, seen := groups[m.RuleIdentifier]; !seen {
			order = append(order, m.RuleIdentifier)
		}
		groups[m.RuleIdentifier] = append(groups[m.RuleIdentifier], m)
	}
	sort.Strings(order)

	var merged []*Match
	for _, id := range order {
		group := groups[id]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].StartLine != group[j].StartLine {
				return group[i].StartLine < group[j].StartLine
			}
			return group[i].EndLine < group[j].EndLine
		})

		accum := *group[0]
		for _, next := range group[1:] {
			if accum.EndLine+1 >= next.StartLine {
				if next.EndLine > accum.EndLine {
					accum.EndLine = next.EndLine
				}
				if next.EndToken > accum.EndToken {
					accum.EndToken = next.EndToken
				}
				accum.MatchedLength = max(accum.MatchedLength, next.MatchedLength)
				if next.Score > accum.Score {
					accum.Score = next.Score
				}
				if next.MatchCoverage > accum.MatchCoverage {
					accum.MatchCoverage = next.MatchCoverage
				}
				accum.HiLen = max(accum.HiLen, next.HiLen)
				continue
			}
			m := accum
			merged = append(merged, &m)
			accum = *next
		}
		m := accum
		merged = append(merged, &m)
	}
	return merged
}

// filterContained sweeps in (start line, longest first) order, discarding any
// match strictly contained in an already-kept one. Containment crosses rule
// boundaries: a notice inside a full text loses to the full text.
func filterContained(matches []*Match) []*Match {
	if len(matches) < 2 {
		return matches
	}
	sorted := make([]*Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartLine != sorted[j].StartLine {
			return sorted[i].StartLine < sorted[j].StartLine
		}
		if sorted[i].MatchedLength != sorted[j].MatchedLength {
			return sorted[i].MatchedLength > sorted[j].MatchedLength
		}
		return sorted[i].RuleIdentifier < sorted[j].RuleIdentifier
	})

	var kept []*Match
	for _, m := range sorted {
		contained := false
		for _, k := range kept {
			if k == m {
				continue
			}
			// Two identifier matches on one line are alternatives from
			// a single SPDX expression, not redundant evidence.
			if k.Matcher == matcherSPDXID && m.Matcher == matcherSPDXID {
				continue
			}
			if k.lineContains(m) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, m)
		}
	}
	return kept
}

func filterFalsePositives(idx *licenseIndex, matches []*Match) []*Match {
	var kept []*Match
	for _, m := range matches {
		if m.rid >= 0 && m.rid < len(idx.rulesByRid) && idx.falsePositiveRids[m.rid] {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}
